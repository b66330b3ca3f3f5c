package vgfx

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ImageResource is an image suballocated from an ImageResourcePool, or
// one carrying a dedicated memory allocation of its own.
type ImageResource struct {
	Image
	ResourcePool *ImageResourcePool
	Allocation   *Allocation
	Staging      *BufferResource

	// dedicated is set when the image owns its memory rather than a
	// slice of a pool.
	dedicated *DeviceMemory
}

// NewImageResourceWithOptions creates an image with a dedicated memory
// allocation, outside any pool. Depth attachments use this since they
// are recreated with the swapchain.
func (r *ResourceManager) NewImageResourceWithOptions(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlagBits, mprops vk.MemoryPropertyFlagBits) (*ImageResource, error) {
	img, err := r.Device.CreateImage(extent, format, tiling, usage)
	if err != nil {
		return nil, err
	}

	mr := img.VKMemoryRequirements()
	mr.Deref()

	mem, err := r.Device.Allocate(int(mr.Size), mr.MemoryTypeBits, mprops)
	if err != nil {
		img.Destroy()
		return nil, err
	}

	if err := newResultError("bind image memory",
		vk.BindImageMemory(r.Device.VKDevice, img.VKImage, mem.VKDeviceMemory, 0)); err != nil {
		mem.Destroy()
		img.Destroy()
		return nil, err
	}

	ret := &ImageResource{Image: *img, dedicated: mem}
	ret.Image.Size = uint64(mr.Size)
	return ret, nil
}

// RequiresStaging reports whether this resource lives in device-local
// memory and must be populated with a transfer.
func (i *ImageResource) RequiresStaging() bool {
	return i.ResourcePool != nil && i.ResourcePool.NeedsStaging
}

// AllocateStagingResource creates a staging buffer sized for the image's
// pixel data.
func (i *ImageResource) AllocateStagingResource(size uint64) error {
	if i.ResourcePool == nil {
		return errors.New("dedicated image resources cannot be staged")
	}
	staging := i.ResourcePool.ResourceManager.GetStagingPool()
	if staging == nil {
		return errors.New("no staging pool allocated")
	}
	res, err := staging.AllocateBuffer(size, vk.BufferUsageTransferSrcBit)
	if err != nil {
		return err
	}
	i.Staging = res
	return nil
}

// FreeStagingResource releases the staging buffer once the transfer has
// completed.
func (i *ImageResource) FreeStagingResource() {
	if i.Staging != nil {
		i.Staging.Destroy()
		i.Staging = nil
	}
}

// CmdCopyImageFromStagedResource records the transition and copy that
// move staged pixels into the image, leaving it shader readable.
func (i *ImageResource) CmdCopyImageFromStagedResource(cb *CommandBuffer) error {
	if i.Staging == nil {
		return errors.New("resource has no staged data")
	}
	cb.CmdTransitionImageLayout(&i.Image, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	cb.CmdCopyBufferToImage(i.Staging.VKBuffer, &i.Image)
	cb.CmdTransitionImageLayout(&i.Image, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	return nil
}

// Destroy releases the image and either returns its space to the pool or
// frees its dedicated memory.
func (i *ImageResource) Destroy() {
	i.FreeStagingResource()
	if i.Allocation != nil {
		alloc := i.Allocation
		i.Allocation = nil
		i.ResourcePool.Allocator.Free(alloc)
	}
	if i.dedicated != nil {
		i.Image.Destroy()
		i.dedicated.Destroy()
		i.dedicated = nil
		return
	}
	i.Image.Destroy()
}
