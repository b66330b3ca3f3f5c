package vgfx

import (
	vk "github.com/vulkan-go/vulkan"
)

// VKCreateSemaphore creates a binary semaphore used to order GPU work
// within a frame slot: acquire signals it, submit waits on it.
func (d *Device) VKCreateSemaphore() (vk.Semaphore, error) {
	createInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var sema vk.Semaphore
	if err := newResultError("create semaphore", vk.CreateSemaphore(d.VKDevice, &createInfo, nil, &sema)); err != nil {
		return vk.NullSemaphore, err
	}
	return sema, nil
}

func (d *Device) VKDestroySemaphore(s vk.Semaphore) {
	vk.DestroySemaphore(d.VKDevice, s, nil)
}
