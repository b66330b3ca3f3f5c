package vgfx

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// StagingPoolName is the pool AllocateStagingResource draws from.
const StagingPoolName = "staging"

var errInsufficientPoolSpace = errors.New("insufficient space in resource pool")

// ResourceManager owns named pools of device memory that buffers and
// images are suballocated from.
type ResourceManager struct {
	Device      *Device
	bufferPools map[string]*BufferResourcePool
	imagePools  map[string]*ImageResourcePool
}

func (d *Device) CreateResourceManager() *ResourceManager {
	return &ResourceManager{
		Device:      d,
		bufferPools: make(map[string]*BufferResourcePool),
		imagePools:  make(map[string]*ImageResourcePool),
	}
}

// BufferResourcePool suballocates buffers from one device memory block.
type BufferResourcePool struct {
	Device           *Device
	Name             string
	Usage            vk.BufferUsageFlagBits
	Sharing          vk.SharingMode
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        IAllocator
	Memory           *DeviceMemory
	NeedsStaging     bool
	ResourceManager  *ResourceManager
}

// ImageResourcePool suballocates images from one device memory block.
type ImageResourcePool struct {
	Device           *Device
	Name             string
	Usage            vk.ImageUsageFlagBits
	Sharing          vk.SharingMode
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        IAllocator
	Memory           *DeviceMemory
	NeedsStaging     bool
	ResourceManager  *ResourceManager
}

// AllocateStagingPool creates the host-visible pool staged uploads copy
// through.
func (r *ResourceManager) AllocateStagingPool(size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(StagingPoolName, size,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
		vk.BufferUsageTransferSrcBit, vk.SharingModeExclusive)
}

// AllocateHostBufferPool creates a host-coherent pool suitable for vertex,
// index and uniform data the CPU writes directly.
func (r *ResourceManager) AllocateHostBufferPool(name string, size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(name, size,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
		vk.BufferUsageVertexBufferBit|vk.BufferUsageIndexBufferBit|vk.BufferUsageUniformBufferBit,
		vk.SharingModeExclusive)
}

// AllocateDeviceTexturePool creates a device-local pool for sampled
// textures, which are populated through the staging pool.
func (r *ResourceManager) AllocateDeviceTexturePool(name string, size uint64) (*ImageResourcePool, error) {
	return r.AllocateImagePoolWithOptions(name, size,
		vk.MemoryPropertyDeviceLocalBit,
		vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit,
		vk.SharingModeExclusive)
}

// AllocateBufferPoolWithOptions creates a named buffer pool backed by one
// device memory allocation. The memory type is probed with a throwaway
// buffer carrying the pool's usage flags.
func (r *ResourceManager) AllocateBufferPoolWithOptions(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.BufferUsageFlagBits, sharing vk.SharingMode) (*BufferResourcePool, error) {
	needsStaging := mprops&vk.MemoryPropertyDeviceLocalBit == vk.MemoryPropertyDeviceLocalBit
	if needsStaging {
		usage |= vk.BufferUsageTransferDstBit
	}

	p := &BufferResourcePool{
		Device:           r.Device,
		Name:             name,
		Usage:            usage,
		Sharing:          sharing,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &PoolAllocator{Size: size},
		NeedsStaging:     needsStaging,
		ResourceManager:  r,
	}

	probe, err := r.Device.CreateBufferWithOptions(size, usage, sharing)
	if err != nil {
		return nil, err
	}
	defer probe.Destroy()

	mr := probe.VKMemoryRequirements()
	mr.Deref()

	p.Memory, err = r.Device.Allocate(int(size), mr.MemoryTypeBits, mprops)
	if err != nil {
		return nil, err
	}

	// Host-visible pools stay mapped for the lifetime of the pool so
	// resources can hand out byte slices directly.
	if !needsStaging {
		if _, err := p.Memory.Map(); err != nil {
			p.Memory.Destroy()
			return nil, err
		}
	}

	r.bufferPools[name] = p
	return p, nil
}

// AllocateImagePoolWithOptions creates a named image pool backed by one
// device memory allocation.
func (r *ResourceManager) AllocateImagePoolWithOptions(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.ImageUsageFlagBits, sharing vk.SharingMode) (*ImageResourcePool, error) {
	needsStaging := mprops&vk.MemoryPropertyDeviceLocalBit == vk.MemoryPropertyDeviceLocalBit
	if needsStaging {
		usage |= vk.ImageUsageTransferDstBit
	}

	p := &ImageResourcePool{
		Device:           r.Device,
		Name:             name,
		Usage:            usage,
		Sharing:          sharing,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &PoolAllocator{Size: size},
		NeedsStaging:     needsStaging,
		ResourceManager:  r,
	}

	probe, err := r.Device.CreateImage(vk.Extent2D{Width: 16, Height: 16}, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal, usage)
	if err != nil {
		return nil, err
	}
	defer probe.Destroy()

	mr := probe.VKMemoryRequirements()
	mr.Deref()

	p.Memory, err = r.Device.Allocate(int(size), mr.MemoryTypeBits, mprops)
	if err != nil {
		return nil, err
	}

	r.imagePools[name] = p
	return p, nil
}

// AllocateBuffer suballocates a buffer of the given size and usage from
// the pool.
func (p *BufferResourcePool) AllocateBuffer(size uint64, usage vk.BufferUsageFlagBits) (*BufferResource, error) {
	buffer, err := p.Device.CreateBufferWithOptions(size, usage, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	ar := buffer.AllocationRequirements()
	allocation := p.Allocator.Allocate(uint64(ar.Size), uint64(ar.Alignment))
	if allocation == nil {
		buffer.Destroy()
		return nil, errors.Wrapf(errInsufficientPoolSpace, "pool %q", p.Name)
	}

	if err := buffer.Bind(p.Memory, allocation.Offset); err != nil {
		p.Allocator.Free(allocation)
		buffer.Destroy()
		return nil, err
	}

	ret := &BufferResource{
		Buffer:       *buffer,
		Allocation:   allocation,
		ResourcePool: p,
	}
	allocation.Object = ret
	return ret, nil
}

// AllocateImage suballocates an image of the given shape from the pool.
func (p *ImageResourcePool) AllocateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlagBits) (*ImageResource, error) {
	img, err := p.Device.CreateImage(extent, format, tiling, usage)
	if err != nil {
		return nil, err
	}

	mr := img.VKMemoryRequirements()
	mr.Deref()

	allocation := p.Allocator.Allocate(uint64(mr.Size), uint64(mr.Alignment))
	if allocation == nil {
		img.Destroy()
		return nil, errors.Wrapf(errInsufficientPoolSpace, "pool %q", p.Name)
	}

	if err := newResultError("bind image memory",
		vk.BindImageMemory(p.Device.VKDevice, img.VKImage, p.Memory.VKDeviceMemory, vk.DeviceSize(allocation.Offset))); err != nil {
		p.Allocator.Free(allocation)
		img.Destroy()
		return nil, err
	}

	ret := &ImageResource{
		Image:        *img,
		Allocation:   allocation,
		ResourcePool: p,
	}
	ret.Image.Size = uint64(mr.Size)
	allocation.Object = ret
	return ret, nil
}

func (p *BufferResourcePool) Destroy() {
	if p.Allocator != nil {
		p.Allocator.DestroyContents()
		p.Allocator = nil
	}
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	delete(p.ResourceManager.bufferPools, p.Name)
}

func (p *ImageResourcePool) Destroy() {
	if p.Allocator != nil {
		p.Allocator.DestroyContents()
		p.Allocator = nil
	}
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	delete(p.ResourceManager.imagePools, p.Name)
}

// GetStagingPool returns the staging pool, or nil if none was allocated.
func (r *ResourceManager) GetStagingPool() *BufferResourcePool {
	return r.bufferPools[StagingPoolName]
}

func (r *ResourceManager) HasStagingPool() bool {
	return r.bufferPools[StagingPoolName] != nil
}

func (r *ResourceManager) BufferPool(name string) *BufferResourcePool {
	return r.bufferPools[name]
}

func (r *ResourceManager) ImagePool(name string) *ImageResourcePool {
	return r.imagePools[name]
}

func (r *ResourceManager) Destroy() {
	for _, p := range r.bufferPools {
		p.Destroy()
	}
	for _, p := range r.imagePools {
		p.Destroy()
	}
}
