package vgfx

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorPool allocates descriptor sets out of fixed per-type budgets.
type DescriptorPool struct {
	Device                *Device
	VKDescriptorPool      vk.DescriptorPool
	VKDescriptorPoolSizes []vk.DescriptorPoolSize
}

func (d *Device) NewDescriptorPool() *DescriptorPool {
	return &DescriptorPool{Device: d}
}

// AddPoolSize declares how many descriptors of a type the pool holds.
func (d *DescriptorPool) AddPoolSize(dtype vk.DescriptorType, count int) {
	d.VKDescriptorPoolSizes = append(d.VKDescriptorPoolSizes, vk.DescriptorPoolSize{
		Type:            dtype,
		DescriptorCount: uint32(count),
	})
}

// CreateDescriptorPool creates the pool with room for maxSets sets. Sets
// are individually freeable.
func (d *Device) CreateDescriptorPool(pool *DescriptorPool, maxSets int) (*DescriptorPool, error) {
	info := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		PoolSizeCount: uint32(len(pool.VKDescriptorPoolSizes)),
		PPoolSizes:    pool.VKDescriptorPoolSizes,
	}

	var dp vk.DescriptorPool
	if err := newResultError("create descriptor pool", vk.CreateDescriptorPool(d.VKDevice, &info, nil, &dp)); err != nil {
		return nil, err
	}

	pool.Device = d
	pool.VKDescriptorPool = dp
	return pool, nil
}

// Allocate allocates one descriptor set per given layout.
func (d *DescriptorPool) Allocate(layouts ...*DescriptorSetLayout) (*DescriptorSet, error) {
	dsl := make([]vk.DescriptorSetLayout, len(layouts))
	for i, l := range layouts {
		dsl[i] = l.VKDescriptorSetLayout
	}

	info := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.VKDescriptorPool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        dsl,
	}

	var ds vk.DescriptorSet
	if err := newResultError("allocate descriptor set", vk.AllocateDescriptorSets(d.Device.VKDevice, &info, &ds)); err != nil {
		return nil, err
	}

	return &DescriptorSet{
		Device:          d.Device,
		DescriptorPool:  d,
		VKDescriptorSet: ds,
	}, nil
}

func (d *DescriptorPool) Reset() error {
	return newResultError("reset descriptor pool", vk.ResetDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, 0))
}

func (d *DescriptorPool) Free(ds *DescriptorSet) error {
	set := ds.VKDescriptorSet
	return newResultError("free descriptor set", vk.FreeDescriptorSets(d.Device.VKDevice, d.VKDescriptorPool, 1, &set))
}

func (d *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, nil)
}
