package vgfx

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// StageTextureFromFile decodes an image file and stages it as an RGBA
// texture in the pool. The returned resource holds staged pixel data
// until CmdCopyImageFromStagedResource has been recorded and executed.
func (p *ImageResourcePool) StageTextureFromFile(path string) (*ImageResource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open texture %q", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode texture %q", path)
	}
	return p.StageTextureFromImage(img)
}

// StageTextureFromImage stages an in-memory image as an RGBA texture.
func (p *ImageResourcePool) StageTextureFromImage(src image.Image) (*ImageResource, error) {
	bounds := src.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, src, bounds.Min, draw.Src)

	extent := vk.Extent2D{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}

	res, err := p.AllocateImage(extent, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal,
		vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit)
	if err != nil {
		return nil, err
	}

	if err := res.AllocateStagingResource(uint64(len(rgba.Pix))); err != nil {
		res.Destroy()
		return nil, err
	}
	copy(res.Staging.Bytes(), rgba.Pix)

	return res, nil
}

// Sampler wraps a native sampler handle.
type Sampler struct {
	Device    *Device
	VKSampler vk.Sampler
}

func (s *Sampler) Destroy() {
	vk.DestroySampler(s.Device.VKDevice, s.VKSampler, nil)
}

// CreateSampler creates a linearly filtered, repeating sampler suitable
// for sampled textures.
func (d *Device) CreateSampler() (*Sampler, error) {
	info := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}

	var sampler vk.Sampler
	if err := newResultError("create sampler", vk.CreateSampler(d.VKDevice, &info, nil, &sampler)); err != nil {
		return nil, err
	}
	return &Sampler{Device: d, VKSampler: sampler}, nil
}
