package vgfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestClampImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), clampImageCount(3, 2, 8))
	assert.Equal(t, uint32(2), clampImageCount(1, 2, 8))
	assert.Equal(t, uint32(8), clampImageCount(9, 2, 8))

	// A max of zero means unbounded.
	assert.Equal(t, uint32(12), clampImageCount(12, 2, 0))
}

func TestClampExtent(t *testing.T) {
	min := vk.Extent2D{Width: 100, Height: 100}
	max := vk.Extent2D{Width: 2000, Height: 2000}

	// A concrete current extent always wins.
	current := vk.Extent2D{Width: 800, Height: 600}
	assert.Equal(t, current, clampExtent(current, min, max, vk.Extent2D{Width: 1, Height: 1}))

	// MaxUint32 means the surface defers to the framebuffer size.
	free := vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32}
	assert.Equal(t, vk.Extent2D{Width: 640, Height: 480},
		clampExtent(free, min, max, vk.Extent2D{Width: 640, Height: 480}))
	assert.Equal(t, vk.Extent2D{Width: 100, Height: 100},
		clampExtent(free, min, max, vk.Extent2D{Width: 10, Height: 10}))
	assert.Equal(t, vk.Extent2D{Width: 2000, Height: 2000},
		clampExtent(free, min, max, vk.Extent2D{Width: 4000, Height: 4000}))
}

func TestChooseSurfaceFormat(t *testing.T) {
	_, err := chooseSurfaceFormat(nil)
	require.Error(t, err)

	got, err := chooseSurfaceFormat(SurfaceFormats{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, got.Format)

	// Without the preferred format the first offering wins.
	got, err = chooseSurfaceFormat(SurfaceFormats{
		{Format: vk.FormatR5g6b5UnormPack16, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR5g6b5UnormPack16, got.Format)
}

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, vk.PresentModeMailbox,
		choosePresentMode(PresentModes{vk.PresentModeFifo, vk.PresentModeMailbox}))
	assert.Equal(t, vk.PresentModeFifo,
		choosePresentMode(PresentModes{vk.PresentModeFifo}))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(nil))
}
