package vgfx

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// PhysicalDevice wraps a GPU known to the instance.
type PhysicalDevice struct {
	DeviceName                 string
	VKPhysicalDevice           vk.PhysicalDevice
	VKPhysicalDeviceProperties vk.PhysicalDeviceProperties
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

// IsDiscrete reports whether this is a dedicated GPU rather than an
// integrated or software device.
func (p *PhysicalDevice) IsDiscrete() bool {
	return p.VKPhysicalDeviceProperties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu
}

// PresentModes is a filterable list of surface present modes.
type PresentModes []vk.PresentMode

func (v PresentModes) Contains(m vk.PresentMode) bool {
	for _, s := range v {
		if s == m {
			return true
		}
	}
	return false
}

// SurfaceFormats is a filterable list of surface formats.
type SurfaceFormats []vk.SurfaceFormat

func (v SurfaceFormats) Filter(f func(f vk.SurfaceFormat) bool) SurfaceFormats {
	ret := make(SurfaceFormats, 0)
	for _, s := range v {
		s.Deref()
		if f(s) {
			ret = append(ret, s)
		}
	}
	return ret
}

// GetSurfacePresentModes queries the present modes the device supports for
// the given surface.
func (p *PhysicalDevice) GetSurfacePresentModes(surface vk.Surface) (PresentModes, error) {
	var count uint32
	if err := newResultError("get surface present modes", vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, nil)); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, count)
	if err := newResultError("get surface present modes", vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, modes)); err != nil {
		return nil, err
	}
	return modes, nil
}

// GetSurfaceFormats queries the formats the device supports for the surface.
func (p *PhysicalDevice) GetSurfaceFormats(surface vk.Surface) (SurfaceFormats, error) {
	var count uint32
	if err := newResultError("get surface formats", vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, nil)); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := newResultError("get surface formats", vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, formats)); err != nil {
		return nil, err
	}
	return formats, nil
}

// GetSurfaceCapabilities queries the current surface capabilities, including
// image count bounds and the current extent.
func (p *PhysicalDevice) GetSurfaceCapabilities(surface vk.Surface) (*vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := newResultError("get surface capabilities", vk.GetPhysicalDeviceSurfaceCapabilities(p.VKPhysicalDevice, surface, &caps)); err != nil {
		return nil, err
	}
	return &caps, nil
}

// QueueFamilies lists the device's queue families.
func (p *PhysicalDevice) QueueFamilies() (QueueFamilySlice, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, nil)
	if count == 0 {
		return nil, errors.Newf("device %s reports no queue families", p.DeviceName)
	}

	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, props)

	ret := make(QueueFamilySlice, count)
	for i, prop := range props {
		ret[i] = &QueueFamily{Index: i, PhysicalDevice: p, VKQueueFamilyProperties: prop}
		ret[i].VKQueueFamilyProperties.Deref()
	}
	return ret, nil
}

// CreateDeviceOptions configures logical device creation.
type CreateDeviceOptions struct {
	EnabledExtensions []string
	EnabledLayers     []string
}

// CreateLogicalDeviceWithOptions builds a logical device exposing one queue
// from each of the given families.
func (p *PhysicalDevice) CreateLogicalDeviceWithOptions(qfs QueueFamilySlice, options *CreateDeviceOptions) (*Device, error) {
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(qfs))
	for i, q := range qfs {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(q.Index),
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(qfs)),
		PQueueCreateInfos:    queueCreateInfos,
		PEnabledFeatures:     []vk.PhysicalDeviceFeatures{p.VKPhysicalDeviceFeatures()},
	}

	if options != nil {
		if options.EnabledExtensions != nil {
			deviceCreateInfo.EnabledExtensionCount = uint32(len(options.EnabledExtensions))
			deviceCreateInfo.PpEnabledExtensionNames = safeStrings(options.EnabledExtensions)
		}
		if options.EnabledLayers != nil {
			deviceCreateInfo.EnabledLayerCount = uint32(len(options.EnabledLayers))
			deviceCreateInfo.PpEnabledLayerNames = safeStrings(options.EnabledLayers)
		}
	}

	var ldevice vk.Device
	if err := newResultError("create device", vk.CreateDevice(p.VKPhysicalDevice, &deviceCreateInfo, nil, &ldevice)); err != nil {
		return nil, err
	}

	return &Device{PhysicalDevice: p, VKDevice: ldevice}, nil
}

// CreateLogicalDevice builds a logical device with default options.
func (p *PhysicalDevice) CreateLogicalDevice(qfs QueueFamilySlice) (*Device, error) {
	return p.CreateLogicalDeviceWithOptions(qfs, nil)
}

// VKPhysicalDeviceFeatures queries the full feature set of the device.
func (p *PhysicalDevice) VKPhysicalDeviceFeatures() vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(p.VKPhysicalDevice, &features)
	return features
}

// VKPhysicalDeviceMemoryProperties queries the device's memory heaps and types.
func (p *PhysicalDevice) VKPhysicalDeviceMemoryProperties() vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p.VKPhysicalDevice, &props)
	return props
}

// FindMemoryType locates a memory type compatible with the given type bits
// and carrying all the requested property flags. See the documentation of
// VkPhysicalDeviceMemoryProperties for how this search works.
func (p *PhysicalDevice) FindMemoryType(memoryTypeBits uint32, properties vk.MemoryPropertyFlagBits) (uint32, error) {
	props := p.VKPhysicalDeviceMemoryProperties()
	props.Deref()

	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		mt := props.MemoryTypes[i]
		mt.Deref()
		if memoryTypeBits&(1<<i) != 0 &&
			vk.MemoryPropertyFlagBits(mt.PropertyFlags)&properties == properties {
			return i, nil
		}
	}
	return 0, errors.New("no matching memory type found")
}

// SupportedExtensions lists the device-level extensions the GPU offers.
func (p *PhysicalDevice) SupportedExtensions() ([]string, error) {
	var count uint32
	if err := newResultError("enumerate device extensions", vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := newResultError("enumerate device extensions", vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, props)); err != nil {
		return nil, err
	}

	names := make([]string, 0, count)
	for _, e := range props {
		e.Deref()
		names = append(names, vk.ToString(e.ExtensionName[:]))
	}
	return names, nil
}
