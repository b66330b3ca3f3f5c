package vgfx

import (
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Version identifies a component version in major.minor.patch form.
type Version struct {
	Major int
	Minor int
	Patch int
}

// VKVersion packs the version the way the Vulkan API expects it.
func (v Version) VKVersion() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// App describes the application to the Vulkan runtime and accumulates the
// layers and extensions to enable on the instance.
type App struct {
	Name       string
	EngineName string
	Version    Version
	// APIVersion is the minimum Vulkan API version required, defaults to 1.0.
	APIVersion Version

	EnabledLayers     []string
	EnabledExtensions []string
}

// SupportedLayers lists the instance layers the runtime offers. Vulkan must
// have been initialized before calling this.
func SupportedLayers() ([]string, error) {
	var count uint32
	if err := newResultError("enumerate instance layers", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, count)
	if err := newResultError("enumerate instance layers", vk.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, err
	}

	names := make([]string, 0, count)
	for _, p := range props {
		p.Deref()
		names = append(names, vk.ToString(p.LayerName[:]))
	}
	return names, nil
}

// SupportedExtensions lists the instance extensions the runtime offers.
func SupportedExtensions() ([]string, error) {
	var count uint32
	if err := newResultError("enumerate instance extensions", vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := newResultError("enumerate instance extensions", vk.EnumerateInstanceExtensionProperties("", &count, props)); err != nil {
		return nil, err
	}

	names := make([]string, 0, count)
	for _, p := range props {
		p.Deref()
		names = append(names, vk.ToString(p.ExtensionName[:]))
	}
	return names, nil
}

// EnableLayer adds the named layer if the runtime supports it.
func (a *App) EnableLayer(layer string) error {
	supported, err := SupportedLayers()
	if err != nil {
		return errors.Wrap(err, "enable layer")
	}
	for _, l := range supported {
		if l == layer {
			a.EnabledLayers = append(a.EnabledLayers, layer)
			return nil
		}
	}
	return errors.Newf("layer %q is not supported by this runtime", layer)
}

// EnableExtension adds the named extension unconditionally; instance creation
// fails later if the runtime does not support it.
func (a *App) EnableExtension(extension string) {
	a.EnabledExtensions = append(a.EnabledExtensions, extension)
}

// EnableValidation turns on the Khronos validation layer and the debug
// reporting extensions. Missing layers are logged and skipped so the same
// binary runs on machines without the SDK installed.
func (a *App) EnableValidation() {
	if err := a.EnableLayer("VK_LAYER_KHRONOS_validation"); err != nil {
		slog.Warn("validation layer unavailable", "err", err)
		return
	}
	a.EnableExtension("VK_EXT_debug_report")
	a.EnableExtension("VK_EXT_debug_utils")
}

// debugging reports whether EnableValidation managed to enable the debug
// reporting extension.
func (a *App) debugging() bool {
	for _, ext := range a.EnabledExtensions {
		if ext == "VK_EXT_debug_report" {
			return true
		}
	}
	return false
}

func (a *App) vkApplicationInfo() vk.ApplicationInfo {
	if a.APIVersion.Major < 1 {
		a.APIVersion.Major = 1
	}
	return vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         a.APIVersion.VKVersion(),
		ApplicationVersion: a.Version.VKVersion(),
		PApplicationName:   safeString(a.Name),
		PEngineName:        safeString(a.EngineName),
	}
}

// CreateInstance creates the Vulkan instance with the accumulated layers and
// extensions. Failure here is always fatal to bring-up.
func (a *App) CreateInstance() (*Instance, error) {
	appInfo := a.vkApplicationInfo()

	extensions := safeStrings(a.EnabledExtensions)
	layers := safeStrings(a.EnabledLayers)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	instance := &Instance{}
	if err := newResultError("create instance", vk.CreateInstance(&createInfo, nil, &instance.VKInstance)); err != nil {
		return nil, err
	}
	vk.InitInstance(instance.VKInstance)

	return instance, nil
}

// Instance wraps the native Vulkan instance.
type Instance struct {
	VKInstance vk.Instance
}

func (i *Instance) Destroy() {
	vk.DestroyInstance(i.VKInstance, nil)
}

// PhysicalDevices enumerates the GPUs known to the instance.
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	var count uint32
	if err := newResultError("enumerate physical devices", vk.EnumeratePhysicalDevices(i.VKInstance, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errors.New("no Vulkan-capable devices found")
	}

	devices := make([]vk.PhysicalDevice, count)
	if err := newResultError("enumerate physical devices", vk.EnumeratePhysicalDevices(i.VKInstance, &count, devices)); err != nil {
		return nil, err
	}

	ret := make([]*PhysicalDevice, count)
	for j, device := range devices {
		ret[j] = &PhysicalDevice{VKPhysicalDevice: device}
		vk.GetPhysicalDeviceProperties(device, &ret[j].VKPhysicalDeviceProperties)
		ret[j].VKPhysicalDeviceProperties.Deref()
		ret[j].DeviceName = vk.ToString(ret[j].VKPhysicalDeviceProperties.DeviceName[:])
	}
	return ret, nil
}

// UseDefaultDebugCallback routes validation-layer output through slog.
func (i *Instance) UseDefaultDebugCallback() error {
	return i.SetDebugCallback(defaultDebugCallback)
}

// SetDebugCallback installs a debug-report callback on the instance.
func (i *Instance) SetDebugCallback(callback vk.DebugReportCallbackFunc) error {
	var debugCallback vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(i.VKInstance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
		PfnCallback: callback,
	}, nil, &debugCallback)
	return newResultError("create debug report callback", ret)
}

func defaultDebugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		slog.Error("vulkan validation", "layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		slog.Warn("vulkan validation", "layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	default:
		slog.Debug("vulkan validation", "layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	}
	return vk.Bool32(vk.False)
}
