package vgfx

import (
	vk "github.com/vulkan-go/vulkan"
)

// Buffer is an unbound chunk of data the pipeline can read from once it is
// bound to device memory: vertex, index or uniform data.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
}

// CreateBufferWithOptions creates an unbound buffer with the given usage.
func (d *Device) CreateBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlagBits, sharing vk.SharingMode) (*Buffer, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: sharing,
	}

	var buffer vk.Buffer
	if err := newResultError("create buffer", vk.CreateBuffer(d.VKDevice, &createInfo, nil, &buffer)); err != nil {
		return nil, err
	}

	return &Buffer{Device: d, VKBuffer: buffer, Size: sizeInBytes}, nil
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
}

// VKMemoryRequirements queries the memory the buffer needs once bound.
func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &memoryRequirements)
	return memoryRequirements
}

// AllocationRequirements resolves the buffer's size, alignment and memory
// type constraints for an allocator.
func (b *Buffer) AllocationRequirements() *AllocationRequirements {
	mr := b.VKMemoryRequirements()
	mr.Deref()
	return &AllocationRequirements{
		Size:           int(mr.Size),
		Alignment:      int(mr.Alignment),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

// Bind attaches the buffer to device memory at the given offset.
func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return newResultError("bind buffer memory",
		vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

// DSInfo describes this buffer to a descriptor write.
func (b *Buffer) DSInfo(offset int) vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Offset: vk.DeviceSize(offset),
		Range:  vk.DeviceSize(b.Size),
	}
}
