package vgfx

import (
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// GraphicsApp wires the full rendering stack behind a FrameScheduler: it
// selects a device, owns the swapchain and everything derived from it,
// and implements FrameRenderer so the scheduler can drive it.
//
// See https://vulkan-tutorial.com/ for a walkthrough of the objects this
// sets up.
type GraphicsApp struct {
	App      *App
	Instance *Instance

	Window    *glfw.Window
	VKSurface vk.Surface

	PhysicalDevice *PhysicalDevice
	Device         *Device

	GraphicsQueue *Queue
	PresentQueue  *Queue

	ResourceManager     *ResourceManager
	GraphicsCommandPool *CommandPool
	PipelineCache       *PipelineCache

	GraphicsPipelineConfigs map[string]*GraphicsPipelineConfig
	GraphicsPipelines       map[string]*GraphicsPipeline

	VKRenderPass vk.RenderPass

	// ConfigureRenderPass can be set to adjust the render pass before it
	// is created.
	ConfigureRenderPass func(info *vk.RenderPassCreateInfo)

	// MakeCommandBuffer records one frame's draw commands. It is called
	// every frame with the slot whose uniform buffers are safe to touch
	// and the swapchain image the frame will render into.
	MakeCommandBuffer func(cb *CommandBuffer, slot, imageIndex int) error

	Log *slog.Logger

	Swapchain           *Swapchain
	SwapchainImages     []*Image
	SwapchainImageViews []*ImageView
	DepthImage          *ImageResource
	DepthImageView      *ImageView
	Framebuffers        []vk.Framebuffer

	frameCommandBuffers []*CommandBuffer
	imageAvailable      []vk.Semaphore
	renderFinished      []vk.Semaphore
	inFlight            []vk.Fence

	scheduler *FrameScheduler
	surface   *windowSurface
}

// NewGraphicsApp creates an app shell. SetWindow and Init must be called
// before PrepareToDraw.
func NewGraphicsApp(name string, version Version) *GraphicsApp {
	return &GraphicsApp{
		App: &App{Name: name, Version: version},
		Log: slog.Default(),
	}
}

// EnableValidation turns on the validation layer and debug reporting for
// the instance. Must be called before Init.
func (p *GraphicsApp) EnableValidation() {
	p.App.EnableValidation()
}

// SetWindow attaches the GLFW window the app renders into and enables
// the instance extensions the window system requires. Must be called
// before Init.
func (p *GraphicsApp) SetWindow(window *glfw.Window) error {
	if p.Instance != nil {
		return errors.New("window must be set before Init")
	}
	p.Window = window

	for _, ext := range window.GetRequiredInstanceExtensions() {
		p.App.EnableExtension(ext)
	}

	p.surface = newWindowSurface(window)
	return nil
}

// Init creates the instance, surface and logical device and picks the
// graphics and present queues. Discrete GPUs are preferred when the host
// has more than one device.
func (p *GraphicsApp) Init() error {
	if p.Window == nil {
		return errors.New("no window set")
	}

	var err error
	p.Instance, err = p.App.CreateInstance()
	if err != nil {
		return err
	}

	if p.App.debugging() {
		if err := p.Instance.UseDefaultDebugCallback(); err != nil {
			p.Log.Warn("debug callback unavailable", "err", err)
		}
	}

	surface, err := p.Window.CreateWindowSurface(p.Instance.VKInstance, nil)
	if err != nil {
		return errors.Wrap(err, "create window surface")
	}
	p.VKSurface = vk.SurfaceFromPointer(surface)

	physicalDevices, err := p.Instance.PhysicalDevices()
	if err != nil {
		return err
	}

	pdevice := pickPhysicalDevice(physicalDevices)
	p.Log.Info("selected physical device", "name", pdevice.DeviceName, "discrete", pdevice.IsDiscrete())

	queues, err := pdevice.QueueFamilies()
	if err != nil {
		return err
	}

	gqueues := queues.FilterGraphicsAndPresent(p.VKSurface)
	if len(gqueues) == 0 {
		// Fall back to one graphics family plus one present family.
		gq := queues.FilterGraphics()
		pq := queues.FilterPresent(p.VKSurface)
		if len(gq) == 0 || len(pq) == 0 {
			return errors.Newf("device %s has no usable graphics and present queues", pdevice.DeviceName)
		}
		gqueues = QueueFamilySlice{gq[0], pq[0]}
	}

	device, err := pdevice.CreateLogicalDeviceWithOptions(gqueues, &CreateDeviceOptions{
		EnabledExtensions: []string{"VK_KHR_swapchain"},
	})
	if err != nil {
		return err
	}
	p.PhysicalDevice = pdevice
	p.Device = device

	if len(gqueues) == 1 {
		queue := device.GetQueue(gqueues[0])
		p.GraphicsQueue = queue
		p.PresentQueue = queue
	} else {
		p.GraphicsQueue = device.GetQueue(gqueues.FilterGraphics()[0])
		p.PresentQueue = device.GetQueue(gqueues.FilterPresent(p.VKSurface)[0])
	}

	p.GraphicsCommandPool, err = device.CreateCommandPool(p.GraphicsQueue.QueueFamily)
	if err != nil {
		return err
	}

	p.ResourceManager = device.CreateResourceManager()
	return nil
}

// pickPhysicalDevice prefers a discrete GPU, falling back to the first
// enumerated device.
func pickPhysicalDevice(devices []*PhysicalDevice) *PhysicalDevice {
	for _, d := range devices {
		if d.IsDiscrete() {
			return d
		}
	}
	return devices[0]
}

// CreateGraphicsPipelineConfig returns a pipeline config bound to the
// app's device.
func (p *GraphicsApp) CreateGraphicsPipelineConfig() *GraphicsPipelineConfig {
	return p.Device.CreateGraphicsPipelineConfig()
}

// AddGraphicsPipelineConfig registers a named pipeline config. Pipelines
// are built from the configs in PrepareToDraw and again on every
// swapchain rebuild.
func (p *GraphicsApp) AddGraphicsPipelineConfig(name string, config *GraphicsPipelineConfig) {
	if p.GraphicsPipelineConfigs == nil {
		p.GraphicsPipelineConfigs = make(map[string]*GraphicsPipelineConfig)
	}
	p.GraphicsPipelineConfigs[name] = config
}

// NumSwapchainImages returns the number of images in the current
// swapchain. Only valid after PrepareToDraw.
func (p *GraphicsApp) NumSwapchainImages() int {
	return len(p.SwapchainImages)
}

// FramesInFlight returns the number of frame slots the scheduler rotates
// through.
func (p *GraphicsApp) FramesInFlight() int {
	if p.scheduler != nil {
		return p.scheduler.FramesInFlight()
	}
	return DefaultFramesInFlight
}

// GetScreenExtent returns the current drawable size.
func (p *GraphicsApp) GetScreenExtent() vk.Extent2D {
	return p.surface.Extent()
}

// PrepareToDraw builds everything between the device and the frame loop:
// swapchain, render pass, pipelines, depth buffer, framebuffers, per-slot
// command buffers and sync objects. MakeCommandBuffer must be set first.
func (p *GraphicsApp) PrepareToDraw() error {
	if p.MakeCommandBuffer == nil {
		return errors.New("MakeCommandBuffer has not been set")
	}

	if err := p.createSwapchainAndImages(p.surface.Extent()); err != nil {
		return err
	}
	if err := p.createRenderPass(); err != nil {
		return err
	}

	var err error
	p.PipelineCache, err = p.Device.CreatePipelineCache()
	if err != nil {
		return err
	}
	if err := p.createGraphicsPipelines(); err != nil {
		return err
	}
	if err := p.createDepthImage(); err != nil {
		return err
	}
	if err := p.createFramebuffers(); err != nil {
		return err
	}
	if err := p.createFrameResources(); err != nil {
		return err
	}

	p.scheduler = NewFrameScheduler(p, p.surface)
	p.scheduler.Log = p.Log
	return nil
}

// DrawFrame runs one frame through the scheduler. Call it from the main
// loop after polling window events.
func (p *GraphicsApp) DrawFrame() error {
	return p.scheduler.DrawFrame()
}

// WaitFrame blocks until the slot's in-flight fence signals, bounding
// the number of frames the CPU can run ahead.
func (p *GraphicsApp) WaitFrame(slot int) error {
	return newResultError("wait for frame fence",
		vk.WaitForFences(p.Device.VKDevice, 1, []vk.Fence{p.inFlight[slot]}, vk.True, vk.MaxUint64))
}

// AcquireImage asks the swapchain for the next presentable image,
// signaling the slot's image-available semaphore.
func (p *GraphicsApp) AcquireImage(slot int) (int, error) {
	var imageIndex uint32
	res := vk.AcquireNextImage(p.Device.VKDevice, p.Swapchain.VKSwapchain, vk.MaxUint64,
		p.imageAvailable[slot], vk.NullFence, &imageIndex)
	return int(imageIndex), newResultError("acquire swapchain image", res)
}

// RecordFrame re-records the slot's command buffer for the acquired
// image.
func (p *GraphicsApp) RecordFrame(slot, imageIndex int) error {
	cb := p.frameCommandBuffers[slot]
	if err := cb.Reset(); err != nil {
		return err
	}
	return p.MakeCommandBuffer(cb, slot, imageIndex)
}

// SubmitFrame submits the slot's command buffer. The in-flight fence is
// reset here, after acquisition has succeeded, so an abandoned frame
// never leaves its fence unsignaled.
func (p *GraphicsApp) SubmitFrame(slot, imageIndex int) error {
	if err := newResultError("reset frame fence",
		vk.ResetFences(p.Device.VKDevice, 1, []vk.Fence{p.inFlight[slot]})); err != nil {
		return err
	}

	submit := []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{p.imageAvailable[slot]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{p.frameCommandBuffers[slot].VK()},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{p.renderFinished[slot]},
	}}

	return newResultError("submit frame",
		vk.QueueSubmit(p.GraphicsQueue.VKQueue, 1, submit, p.inFlight[slot]))
}

// PresentImage queues the rendered image for presentation once the
// slot's render-finished semaphore signals.
func (p *GraphicsApp) PresentImage(slot, imageIndex int) error {
	info := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{p.renderFinished[slot]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{p.Swapchain.VKSwapchain},
		PImageIndices:      []uint32{uint32(imageIndex)},
	}
	return newResultError("present image", vk.QueuePresent(p.PresentQueue.VKQueue, &info))
}

// RebuildSwapchain quiesces the device, tears down everything derived
// from the swapchain in dependency order and recreates it at the new
// extent. The render pass survives since the surface format does not
// change; pipelines are rebuilt because their viewport state is baked in
// at the old extent.
func (p *GraphicsApp) RebuildSwapchain(extent vk.Extent2D) error {
	if err := p.Device.WaitIdle(); err != nil {
		return err
	}

	p.destroyFramebuffers()
	p.destroyDepthImage()
	p.destroyGraphicsPipelines()
	p.destroySwapchainAndImages()

	if err := p.createSwapchainAndImages(extent); err != nil {
		return err
	}
	if err := p.createGraphicsPipelines(); err != nil {
		return err
	}
	if err := p.createDepthImage(); err != nil {
		return err
	}
	return p.createFramebuffers()
}

// Destroy tears the whole stack down. Safe to call once after the frame
// loop has exited.
func (p *GraphicsApp) Destroy() {
	if p.Device != nil {
		p.Device.WaitIdle()
	}

	var stack CleanupStack
	stack.PushFunc(func() { p.Instance.Destroy() })
	stack.PushFunc(func() {
		vk.DestroySurface(p.Instance.VKInstance, p.VKSurface, nil)
	})
	stack.Push(p.Device)
	stack.Push(p.GraphicsCommandPool)
	stack.PushFunc(func() { p.ResourceManager.Destroy() })
	for _, cfg := range p.GraphicsPipelineConfigs {
		stack.Push(cfg)
	}
	if p.PipelineCache != nil {
		stack.Push(p.PipelineCache)
	}
	stack.PushFunc(p.destroyFrameResources)
	stack.PushFunc(p.destroyGraphicsPipelines)
	stack.PushFunc(func() {
		vk.DestroyRenderPass(p.Device.VKDevice, p.VKRenderPass, nil)
	})
	stack.PushFunc(func() { p.destroyDepthImage() })
	stack.PushFunc(p.destroyFramebuffers)
	stack.PushFunc(p.destroySwapchainAndImages)
	stack.Destroy()
}

// VKRenderPassCreateInfo builds the default render pass: one color
// attachment in the swapchain format and one D32 depth attachment.
// ConfigureRenderPass can adjust the result before creation.
func (p *GraphicsApp) VKRenderPassCreateInfo() vk.RenderPassCreateInfo {
	attachments := []vk.AttachmentDescription{
		{
			Format:         p.Swapchain.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         vk.FormatD32Sfloat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	colorRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	depthRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       colorRef,
		PDepthStencilAttachment: &depthRef,
	}}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      subpasses,
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
}

func (p *GraphicsApp) createRenderPass() error {
	info := p.VKRenderPassCreateInfo()
	if p.ConfigureRenderPass != nil {
		p.ConfigureRenderPass(&info)
	}

	var renderPass vk.RenderPass
	if err := newResultError("create render pass",
		vk.CreateRenderPass(p.Device.VKDevice, &info, nil, &renderPass)); err != nil {
		return err
	}
	p.VKRenderPass = renderPass
	return nil
}

func (p *GraphicsApp) createSwapchainAndImages(extent vk.Extent2D) error {
	swapchain, err := p.Device.CreateSwapchain(p.VKSurface, p.GraphicsQueue, p.PresentQueue, &CreateSwapchainOptions{
		ActualSize: extent,
	})
	if err != nil {
		return err
	}
	p.Swapchain = swapchain

	p.SwapchainImages, err = swapchain.GetImages()
	if err != nil {
		return err
	}

	p.SwapchainImageViews = make([]*ImageView, len(p.SwapchainImages))
	for i, image := range p.SwapchainImages {
		view, err := image.CreateImageView()
		if err != nil {
			return err
		}
		p.SwapchainImageViews[i] = view
	}
	return nil
}

func (p *GraphicsApp) destroySwapchainAndImages() {
	for _, view := range p.SwapchainImageViews {
		view.Destroy()
	}
	p.SwapchainImageViews = nil
	p.SwapchainImages = nil
	p.Swapchain.Destroy()
}

func (p *GraphicsApp) createGraphicsPipelines() error {
	if len(p.GraphicsPipelineConfigs) == 0 {
		return nil
	}

	names := make([]string, 0, len(p.GraphicsPipelineConfigs))
	configs := make([]*GraphicsPipelineConfig, 0, len(p.GraphicsPipelineConfigs))
	for name, cfg := range p.GraphicsPipelineConfigs {
		names = append(names, name)
		configs = append(configs, cfg)
	}

	pipelines, err := p.Device.CreateGraphicsPipelines(p.PipelineCache, p.VKRenderPass, p.Swapchain.Extent, configs...)
	if err != nil {
		return err
	}

	p.GraphicsPipelines = make(map[string]*GraphicsPipeline, len(pipelines))
	for i, name := range names {
		p.GraphicsPipelines[name] = pipelines[i]
	}
	return nil
}

func (p *GraphicsApp) destroyGraphicsPipelines() {
	for _, pipeline := range p.GraphicsPipelines {
		pipeline.Destroy()
	}
	p.GraphicsPipelines = nil
}

func (p *GraphicsApp) createDepthImage() error {
	var err error
	p.DepthImage, err = p.ResourceManager.NewImageResourceWithOptions(p.Swapchain.Extent,
		vk.FormatD32Sfloat, vk.ImageTilingOptimal, vk.ImageUsageDepthStencilAttachmentBit,
		vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return err
	}

	p.DepthImageView, err = p.DepthImage.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	return err
}

func (p *GraphicsApp) destroyDepthImage() {
	if p.DepthImageView != nil {
		p.DepthImageView.Destroy()
		p.DepthImageView = nil
	}
	if p.DepthImage != nil {
		p.DepthImage.Destroy()
		p.DepthImage = nil
	}
}

func (p *GraphicsApp) createFramebuffers() error {
	p.Framebuffers = make([]vk.Framebuffer, len(p.SwapchainImageViews))
	for i, view := range p.SwapchainImageViews {
		attachments := []vk.ImageView{
			view.VKImageView,
			p.DepthImageView.VKImageView,
		}
		info := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      p.VKRenderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           p.Swapchain.Extent.Width,
			Height:          p.Swapchain.Extent.Height,
			Layers:          1,
		}
		if err := newResultError("create framebuffer",
			vk.CreateFramebuffer(p.Device.VKDevice, &info, nil, &p.Framebuffers[i])); err != nil {
			return err
		}
	}
	return nil
}

func (p *GraphicsApp) destroyFramebuffers() {
	for _, fb := range p.Framebuffers {
		vk.DestroyFramebuffer(p.Device.VKDevice, fb, nil)
	}
	p.Framebuffers = nil
}

// createFrameResources allocates one command buffer, two semaphores and
// one fence per frame slot. Fences start signaled so the first WaitFrame
// on each slot returns immediately.
func (p *GraphicsApp) createFrameResources() error {
	n := DefaultFramesInFlight

	var err error
	p.frameCommandBuffers, err = p.GraphicsCommandPool.AllocateBuffers(n)
	if err != nil {
		return err
	}

	p.imageAvailable = make([]vk.Semaphore, n)
	p.renderFinished = make([]vk.Semaphore, n)
	p.inFlight = make([]vk.Fence, n)
	for i := 0; i < n; i++ {
		if p.imageAvailable[i], err = p.Device.VKCreateSemaphore(); err != nil {
			return err
		}
		if p.renderFinished[i], err = p.Device.VKCreateSemaphore(); err != nil {
			return err
		}
		if p.inFlight[i], err = p.Device.VKCreateFence(true); err != nil {
			return err
		}
	}
	return nil
}

func (p *GraphicsApp) destroyFrameResources() {
	for _, s := range p.imageAvailable {
		p.Device.VKDestroySemaphore(s)
	}
	for _, s := range p.renderFinished {
		p.Device.VKDestroySemaphore(s)
	}
	for _, f := range p.inFlight {
		p.Device.VKDestroyFence(f)
	}
	p.imageAvailable = nil
	p.renderFinished = nil
	p.inFlight = nil
	p.GraphicsCommandPool.FreeBuffers(p.frameCommandBuffers)
	p.frameCommandBuffers = nil
}

// windowSurface adapts a GLFW window to the scheduler's Surface
// interface. The resize flag is set from the framebuffer size callback,
// which GLFW runs on the main thread during event polling.
type windowSurface struct {
	window *glfw.Window

	mu      sync.Mutex
	resized bool
}

func newWindowSurface(window *glfw.Window) *windowSurface {
	s := &windowSurface{window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		s.mu.Lock()
		s.resized = true
		s.mu.Unlock()
	})
	return s
}

func (s *windowSurface) Extent() vk.Extent2D {
	width, height := s.window.GetFramebufferSize()
	return vk.Extent2D{Width: uint32(width), Height: uint32(height)}
}

func (s *windowSurface) ConsumeResize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	resized := s.resized
	s.resized = false
	return resized
}

func (s *windowSurface) WaitEvents() {
	glfw.WaitEvents()
}
