package vgfx

import (
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// Fence is a host-waitable completion flag. The frame scheduler keeps one
// per frame slot as the backpressure bounding outstanding GPU work.
type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

// VKCreateFence creates a native fence, optionally in the signaled state.
// Frame-slot fences start signaled so the first wait on each slot returns
// immediately.
func (d *Device) VKCreateFence(signaled bool) (vk.Fence, error) {
	createInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		createInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	if err := newResultError("create fence", vk.CreateFence(d.VKDevice, &createInfo, nil, &fence)); err != nil {
		return vk.NullFence, err
	}
	return fence, nil
}

func (d *Device) VKDestroyFence(f vk.Fence) {
	vk.DestroyFence(d.VKDevice, f, nil)
}

// VKFenceSignaled reports whether the fence is currently signaled.
func (d *Device) VKFenceSignaled(f vk.Fence) bool {
	return vk.GetFenceStatus(d.VKDevice, f) == vk.Success
}

// CreateFence creates an unsignaled fence wrapper for one-shot submissions.
func (d *Device) CreateFence() (*Fence, error) {
	fence, err := d.VKCreateFence(false)
	if err != nil {
		return nil, err
	}
	return &Fence{Device: d, VKFence: fence}, nil
}

func (f *Fence) Destroy() {
	f.Device.VKDestroyFence(f.VKFence)
}

// WaitForFences blocks until the fences signal or the timeout elapses.
func (d *Device) WaitForFences(waitForAll bool, timeout time.Duration, fences ...*Fence) error {
	native := make([]vk.Fence, len(fences))
	for i := range fences {
		native[i] = fences[i].VKFence
	}

	wait := vk.Bool32(vk.False)
	if waitForAll {
		wait = vk.True
	}

	return newResultError("wait for fences",
		vk.WaitForFences(d.VKDevice, uint32(len(native)), native, wait, uint64(timeout.Nanoseconds())))
}
