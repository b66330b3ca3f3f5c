package vgfx

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Queue is a device queue work may be submitted to.
type Queue struct {
	Device      *Device
	QueueFamily *QueueFamily
	VKQueue     vk.Queue
}

func (q *Queue) WaitIdle() error {
	return newResultError("queue wait idle", vk.QueueWaitIdle(q.VKQueue))
}

// SubmitWaitIdle submits the command buffers and blocks until the queue has
// drained. Used for one-shot work such as staging copies during setup.
func (q *Queue) SubmitWaitIdle(buffers ...*CommandBuffer) error {
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(buffers)),
		PCommandBuffers:    nativeCommandBuffers(buffers),
	}

	if err := newResultError("queue submit", vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence)); err != nil {
		return err
	}
	return q.WaitIdle()
}

// SubmitWithFence submits the command buffers, signaling the fence on
// completion.
func (q *Queue) SubmitWithFence(fence *Fence, buffers ...*CommandBuffer) error {
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(buffers)),
		PCommandBuffers:    nativeCommandBuffers(buffers),
	}

	return newResultError("queue submit", vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, fence.VKFence))
}

func nativeCommandBuffers(buffers []*CommandBuffer) []vk.CommandBuffer {
	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}
	return b
}

func (q *Queue) String() string {
	return fmt.Sprintf("{ Device: %s QueueFamily: %s }", q.Device, q.QueueFamily)
}
