package vgfx

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Swapchain is the ordered set of presentable images for a surface. It is
// created wholesale and destroyed wholesale; a surface change always means
// a new swapchain, never an in-place resize.
type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	Device      *Device
	VKSwapchain vk.Swapchain
}

func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
}

// GetImages fetches the images owned by the swapchain. The images belong to
// the swapchain and must not be destroyed individually.
func (s *Swapchain) GetImages() ([]*Image, error) {
	var count uint32
	if err := newResultError("get swapchain images", vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, nil)); err != nil {
		return nil, err
	}

	images := make([]vk.Image, count)
	if err := newResultError("get swapchain images", vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, images)); err != nil {
		return nil, err
	}

	ret := make([]*Image, count)
	for i := range images {
		ret[i] = &Image{
			Device:   s.Device,
			VKImage:  images[i],
			VKFormat: s.Format,
		}
	}
	return ret, nil
}

// CreateSwapchainOptions configures swapchain creation.
type CreateSwapchainOptions struct {
	// OldSwapchain, when set, lets the driver reuse resources from the
	// swapchain being replaced.
	OldSwapchain *Swapchain
	// ActualSize is used when the surface does not dictate an extent
	// (a current extent of MaxUint32 in the capabilities).
	ActualSize vk.Extent2D
	// DesiredImageCount defaults to the surface minimum plus one.
	DesiredImageCount int
}

// DefaultNumSwapchainImages returns the image count used when the caller
// does not request one: the surface minimum plus one, so the renderer is
// not forced to wait on the driver at steady state.
func (d *Device) DefaultNumSwapchainImages(surface vk.Surface) (int, error) {
	caps, err := d.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return 0, err
	}
	caps.Deref()
	return int(clampImageCount(caps.MinImageCount+1, caps.MinImageCount, caps.MaxImageCount)), nil
}

// clampImageCount bounds a desired swapchain image count to the surface
// limits. A max of zero means the surface imposes no upper bound.
func clampImageCount(desired, min, max uint32) uint32 {
	if desired < min {
		desired = min
	}
	if max > 0 && desired > max {
		desired = max
	}
	return desired
}

// clampExtent resolves the swapchain extent from the surface capabilities.
// When the surface reports a fixed current extent that wins; otherwise the
// fallback (typically the framebuffer size) is clamped to the allowed range.
func clampExtent(current, min, max, fallback vk.Extent2D) vk.Extent2D {
	if current.Width != vk.MaxUint32 {
		return current
	}
	e := fallback
	if e.Width < min.Width {
		e.Width = min.Width
	}
	if e.Height < min.Height {
		e.Height = min.Height
	}
	if max.Width > 0 && e.Width > max.Width {
		e.Width = max.Width
	}
	if max.Height > 0 && e.Height > max.Height {
		e.Height = max.Height
	}
	return e
}

// chooseSurfaceFormat prefers 8-bit BGRA with sRGB color space and falls
// back to whatever the surface offers first.
func chooseSurfaceFormat(formats SurfaceFormats) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, errors.New("surface reports no formats")
	}

	preferred := formats.Filter(func(f vk.SurfaceFormat) bool {
		return f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear
	})
	if len(preferred) > 0 {
		return preferred[0], nil
	}

	f := formats[0]
	f.Deref()
	return f, nil
}

// choosePresentMode prefers mailbox (triple-buffer style) and falls back to
// FIFO, which every conformant driver supports.
func choosePresentMode(modes PresentModes) vk.PresentMode {
	if modes.Contains(vk.PresentModeMailbox) {
		return vk.PresentModeMailbox
	}
	return vk.PresentModeFifo
}

// CreateSwapchain negotiates format, present mode, extent and image count
// against the surface capabilities and creates the swapchain. The sharing
// mode is concurrent when graphics and present live on different families.
func (d *Device) CreateSwapchain(surface vk.Surface, graphicsQueue, presentQueue *Queue, options *CreateSwapchainOptions) (*Swapchain, error) {
	modes, err := d.PhysicalDevice.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}

	formats, err := d.PhysicalDevice.GetSurfaceFormats(surface)
	if err != nil {
		return nil, err
	}
	format, err := chooseSurfaceFormat(formats)
	if err != nil {
		return nil, err
	}

	caps, err := d.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var fallback vk.Extent2D
	if options != nil {
		fallback = options.ActualSize
	}
	extent := clampExtent(caps.CurrentExtent, caps.MinImageExtent, caps.MaxImageExtent, fallback)

	desired := uint32(0)
	if options != nil {
		desired = uint32(options.DesiredImageCount)
	}
	if desired == 0 {
		desired = caps.MinImageCount + 1
	}
	imageCount := clampImageCount(desired, caps.MinImageCount, caps.MaxImageCount)

	createInfo := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		PresentMode:      choosePresentMode(modes),
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageArrayLayers: 1,
		Clipped:          vk.True,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		OldSwapchain:     vk.NullSwapchain,
	}

	if options != nil && options.OldSwapchain != nil {
		createInfo.OldSwapchain = options.OldSwapchain.VKSwapchain
	}

	if graphicsQueue.QueueFamily.Index != presentQueue.QueueFamily.Index {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			uint32(graphicsQueue.QueueFamily.Index),
			uint32(presentQueue.QueueFamily.Index),
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	if err := newResultError("create swapchain", vk.CreateSwapchain(d.VKDevice, createInfo, nil, &swapchain)); err != nil {
		return nil, err
	}

	return &Swapchain{
		Device:      d,
		VKSwapchain: swapchain,
		Extent:      extent,
		Format:      format.Format,
	}, nil
}
