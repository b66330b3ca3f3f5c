package vgfx

import (
	vk "github.com/vulkan-go/vulkan"
)

// HostBuffer is a buffer bound to host-visible, host-coherent memory and
// kept persistently mapped. Frame loops use one per frame slot for uniform
// data so updating a frame's constants is a plain copy into Bytes.
type HostBuffer struct {
	Buffer
	Memory *DeviceMemory
}

// CreateUniformHostBuffer creates a persistently mapped uniform buffer.
func (d *Device) CreateUniformHostBuffer(sizeInBytes uint64) (*HostBuffer, error) {
	return d.CreateHostBufferWithOptions(sizeInBytes, vk.BufferUsageUniformBufferBit)
}

// CreateHostBufferWithOptions creates a buffer with the given usage, binds
// it to freshly allocated host-coherent memory and maps it for the lifetime
// of the buffer.
func (d *Device) CreateHostBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlagBits) (*HostBuffer, error) {
	buffer, err := d.CreateBufferWithOptions(sizeInBytes, usage, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	memory, err := d.AllocateForBuffer(buffer, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	if err := buffer.Bind(memory, 0); err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, err
	}

	if _, err := memory.Map(); err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, err
	}

	return &HostBuffer{Buffer: *buffer, Memory: memory}, nil
}

// Bytes returns the mapped host view of the buffer contents.
func (h *HostBuffer) Bytes() []byte {
	if h.Memory.Ptr == nil {
		return nil
	}
	return ToBytes(h.Memory.Ptr, int(h.Buffer.Size))
}

// Destroy unmaps and releases the buffer and its memory.
func (h *HostBuffer) Destroy() {
	if h.Memory != nil {
		if h.Memory.IsMapped() {
			h.Memory.Unmap()
		}
		h.Memory.Destroy()
		h.Memory = nil
	}
	if h.Buffer.VKBuffer != vk.NullBuffer {
		h.Buffer.Destroy()
		h.Buffer.VKBuffer = vk.NullBuffer
	}
}
