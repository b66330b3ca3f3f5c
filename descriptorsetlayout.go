package vgfx

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSetLayout describes the shape of a descriptor set.
type DescriptorSetLayout struct {
	Device                        *Device
	VKDescriptorSetLayout         vk.DescriptorSetLayout
	VKDescriptorSetLayoutBindings []vk.DescriptorSetLayoutBinding
}

func (d *Device) NewDescriptorSetLayout() *DescriptorSetLayout {
	return &DescriptorSetLayout{Device: d}
}

// AddBinding appends a binding to the layout. Must be called before
// CreateDescriptorSetLayout.
func (d *DescriptorSetLayout) AddBinding(binding vk.DescriptorSetLayoutBinding) {
	d.VKDescriptorSetLayoutBindings = append(d.VKDescriptorSetLayoutBindings, binding)
}

// AddUniformBufferBinding appends a single uniform buffer binding visible
// to the given shader stages.
func (d *DescriptorSetLayout) AddUniformBufferBinding(binding int, stages vk.ShaderStageFlagBits) {
	d.AddBinding(vk.DescriptorSetLayoutBinding{
		Binding:         uint32(binding),
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(stages),
	})
}

// AddCombinedImageSamplerBinding appends a single combined image sampler
// binding visible to the given shader stages.
func (d *DescriptorSetLayout) AddCombinedImageSamplerBinding(binding int, stages vk.ShaderStageFlagBits) {
	d.AddBinding(vk.DescriptorSetLayoutBinding{
		Binding:         uint32(binding),
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(stages),
	})
}

func (d *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(d.Device.VKDevice, d.VKDescriptorSetLayout, nil)
}

// CreateDescriptorSetLayout finalizes the layout on the device.
func (d *Device) CreateDescriptorSetLayout(layout *DescriptorSetLayout) (*DescriptorSetLayout, error) {
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layout.VKDescriptorSetLayoutBindings)),
		PBindings:    layout.VKDescriptorSetLayoutBindings,
	}

	var dsl vk.DescriptorSetLayout
	if err := newResultError("create descriptor set layout", vk.CreateDescriptorSetLayout(d.VKDevice, &info, nil, &dsl)); err != nil {
		return nil, err
	}

	layout.Device = d
	layout.VKDescriptorSetLayout = dsl
	return layout, nil
}
