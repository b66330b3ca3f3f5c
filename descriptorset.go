package vgfx

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSet is a binding of concrete resources against a
// DescriptorSetLayout. Writes accumulate until Write is called.
type DescriptorSet struct {
	Device                *Device
	DescriptorPool        *DescriptorPool
	VKDescriptorSet       vk.DescriptorSet
	VKWriteDescriptorSets []vk.WriteDescriptorSet
}

// AddBuffer queues a buffer write into the given binding.
func (d *DescriptorSet) AddBuffer(dstBinding int, dtype vk.DescriptorType, b *Buffer, offset int) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Offset: vk.DeviceSize(offset),
		Range:  vk.DeviceSize(b.Size),
	}

	d.VKWriteDescriptorSets = append(d.VKWriteDescriptorSets, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	})
}

// AddCombinedImageSampler queues an image view plus sampler write into
// the given binding.
func (d *DescriptorSet) AddCombinedImageSampler(dstBinding int, layout vk.ImageLayout, imageView vk.ImageView, sampler vk.Sampler) {
	imageInfo := vk.DescriptorImageInfo{
		ImageView:   imageView,
		ImageLayout: layout,
		Sampler:     sampler,
	}

	d.VKWriteDescriptorSets = append(d.VKWriteDescriptorSets, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
	})
}

// Write flushes the queued writes to the device.
func (d *DescriptorSet) Write() {
	for i := range d.VKWriteDescriptorSets {
		d.VKWriteDescriptorSets[i].DstSet = d.VKDescriptorSet
	}
	vk.UpdateDescriptorSets(d.Device.VKDevice, uint32(len(d.VKWriteDescriptorSets)), d.VKWriteDescriptorSets, 0, nil)
	d.VKWriteDescriptorSets = d.VKWriteDescriptorSets[:0]
}
