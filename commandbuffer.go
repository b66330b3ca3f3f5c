package vgfx

import (
	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffer describes a sequence of commands to execute on a device
// queue. Only the commands the rendering path needs are wrapped here; the
// native handle is exposed through VK for everything else.
type CommandBuffer struct {
	VKCommandBuffer vk.CommandBuffer
}

// VK returns the native command buffer handle.
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

// Reset discards any previously recorded contents. Re-recording a frame
// always starts here so old commands are never appended to.
func (c *CommandBuffer) Reset() error {
	return newResultError("reset command buffer", vk.ResetCommandBuffer(c.VKCommandBuffer, 0))
}

// ResetAndRelease additionally returns the buffer's resources to the pool.
func (c *CommandBuffer) ResetAndRelease() error {
	return newResultError("reset command buffer",
		vk.ResetCommandBuffer(c.VKCommandBuffer, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit)))
}

// Begin starts recording.
func (c *CommandBuffer) Begin() error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	return newResultError("begin command buffer", vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo))
}

// BeginOneTime starts recording a buffer that will be submitted once and
// then discarded, such as a staging copy.
func (c *CommandBuffer) BeginOneTime() error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	return newResultError("begin command buffer", vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo))
}

// End finishes recording.
func (c *CommandBuffer) End() error {
	return newResultError("end command buffer", vk.EndCommandBuffer(c.VKCommandBuffer))
}

// CmdBindDescriptorSets binds descriptor sets for the given pipeline layout.
func (c *CommandBuffer) CmdBindDescriptorSets(bindPoint vk.PipelineBindPoint, layout *PipelineLayout, firstSet int, descriptorSets ...*DescriptorSet) {
	sets := make([]vk.DescriptorSet, len(descriptorSets))
	for i := range descriptorSets {
		sets[i] = descriptorSets[i].VKDescriptorSet
	}
	vk.CmdBindDescriptorSets(c.VKCommandBuffer, bindPoint,
		layout.VKPipelineLayout, uint32(firstSet), uint32(len(sets)), sets, 0, nil)
}
