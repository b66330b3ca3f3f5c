package vgfx

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// BufferResource is a buffer suballocated from a BufferResourcePool.
// Resources in device-local pools are filled through a staging resource
// allocated from the manager's staging pool.
type BufferResource struct {
	Buffer
	ResourcePool *BufferResourcePool
	Allocation   *Allocation
	Staging      *BufferResource
}

// RequiresStaging reports whether this resource lives in device-local
// memory and must be populated with a transfer.
func (b *BufferResource) RequiresStaging() bool {
	return b.ResourcePool.NeedsStaging
}

// Bytes returns the mapped bytes backing this resource. Only valid for
// resources in host-visible pools.
func (b *BufferResource) Bytes() []byte {
	m := b.ResourcePool.Memory
	if !m.IsMapped() {
		return nil
	}
	ptr := unsafeOffset(m.Ptr, b.Allocation.Offset)
	return ToBytes(ptr, int(b.Allocation.Size))
}

// AllocateStagingResource creates a matching buffer in the staging pool.
func (b *BufferResource) AllocateStagingResource() error {
	staging := b.ResourcePool.ResourceManager.GetStagingPool()
	if staging == nil {
		return errors.New("no staging pool allocated")
	}
	res, err := staging.AllocateBuffer(b.Size, vk.BufferUsageTransferSrcBit)
	if err != nil {
		return err
	}
	b.Staging = res
	return nil
}

// FreeStagingResource releases the staging buffer once the transfer has
// completed.
func (b *BufferResource) FreeStagingResource() {
	if b.Staging != nil {
		b.Staging.Destroy()
		b.Staging = nil
	}
}

// CmdCopyBufferFromStagedResource records a copy from the staging buffer
// into this resource.
func (b *BufferResource) CmdCopyBufferFromStagedResource(cb *CommandBuffer) error {
	if b.Staging == nil {
		return errors.New("resource has no staged data")
	}
	region := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(b.Size),
	}
	vk.CmdCopyBuffer(cb.VK(), b.Staging.VKBuffer, b.VKBuffer, 1, []vk.BufferCopy{region})
	return nil
}

// Destroy releases the buffer and returns its space to the pool.
func (b *BufferResource) Destroy() {
	b.FreeStagingResource()
	if b.Allocation != nil {
		alloc := b.Allocation
		b.Allocation = nil
		b.ResourcePool.Allocator.Free(alloc)
	}
	b.Buffer.Destroy()
}
