package vgfx

import (
	vk "github.com/vulkan-go/vulkan"
)

// ImageView describes how an image is accessed by the pipeline.
type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

func (v *ImageView) Destroy() {
	vk.DestroyImageView(v.Device.VKDevice, v.VKImageView, nil)
}

// CreateImageView creates a color view of the image.
func (i *Image) CreateImageView() (*ImageView, error) {
	return i.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectColorBit))
}

// CreateImageViewWithAspectMask creates a view with the given aspect, used
// for depth attachments.
func (i *Image) CreateImageViewWithAspectMask(mask vk.ImageAspectFlags) (*ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.VKImage,
		ViewType: vk.ImageViewType2d,
		Format:   i.VKFormat,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: mask,
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	if err := newResultError("create image view", vk.CreateImageView(i.Device.VKDevice, createInfo, nil, &view)); err != nil {
		return nil, err
	}

	return &ImageView{Device: i.Device, VKImageView: view}, nil
}
