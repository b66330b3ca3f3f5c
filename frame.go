package vgfx

import (
	"log/slog"

	vk "github.com/vulkan-go/vulkan"
)

// DefaultFramesInFlight is the number of frame slots the scheduler rotates
// through. Two slots let the CPU record the next frame while the GPU works
// on the previous one without letting either run unboundedly ahead.
const DefaultFramesInFlight = 2

// Surface is the scheduler's view of the window system. Extent reports the
// current drawable size in pixels, ConsumeResize returns true at most once
// per resize notification, and WaitEvents blocks the calling goroutine until
// the surface state may have changed (used while the window is minimized).
type Surface interface {
	Extent() vk.Extent2D
	ConsumeResize() bool
	WaitEvents()
}

// FrameRenderer is the device-facing half of the frame scheduler. Each method
// maps to one stage of a frame; all of them are keyed by the frame slot so an
// implementation can rotate per-slot command buffers and sync primitives.
//
// AcquireImage and PresentImage may fail with ErrSwapchainStale or
// ErrSwapchainSuboptimal, which the scheduler treats as recoverable. Any
// other error from any stage aborts the frame loop.
type FrameRenderer interface {
	// WaitFrame blocks until the slot's previously submitted work has
	// completed on the device. This is the backpressure bounding the number
	// of outstanding frames to the slot count.
	WaitFrame(slot int) error

	// AcquireImage requests the next presentable image, signaling the slot's
	// image-available semaphore once the image is ready for rendering.
	AcquireImage(slot int) (imageIndex int, err error)

	// RecordFrame resets the slot's command buffer and re-records the full
	// draw sequence against the acquired image's framebuffer.
	RecordFrame(slot, imageIndex int) error

	// SubmitFrame enqueues the slot's command buffer on the graphics queue,
	// waiting on image-available and signaling render-finished plus the
	// slot's in-flight fence.
	SubmitFrame(slot, imageIndex int) error

	// PresentImage queues the image for presentation, gated on the slot's
	// render-finished semaphore.
	PresentImage(slot, imageIndex int) error

	// RebuildSwapchain quiesces the device and replaces the swapchain and
	// everything derived from it using the given surface extent.
	RebuildSwapchain(extent vk.Extent2D) error
}

// FrameScheduler drives the per-frame render-and-present loop. It owns the
// rotating frame index and the swapchain lifecycle; the actual device work
// is delegated to a FrameRenderer so the sequencing logic stays independent
// of any particular backend.
type FrameScheduler struct {
	Renderer FrameRenderer
	Surface  Surface

	// Log receives recreation and frame-skip events at debug level.
	Log *slog.Logger

	framesInFlight int
	frameIndex     int
}

// NewFrameScheduler creates a scheduler with DefaultFramesInFlight slots.
func NewFrameScheduler(r FrameRenderer, s Surface) *FrameScheduler {
	return &FrameScheduler{
		Renderer:       r,
		Surface:        s,
		Log:            slog.Default(),
		framesInFlight: DefaultFramesInFlight,
	}
}

// FramesInFlight returns the number of frame slots.
func (f *FrameScheduler) FramesInFlight() int {
	return f.framesInFlight
}

// FrameIndex returns the slot the next DrawFrame call will use.
func (f *FrameScheduler) FrameIndex() int {
	return f.frameIndex
}

// DrawFrame runs one iteration of the frame state machine:
//
//	WAIT -> ACQUIRE -> RECORD -> SUBMIT -> PRESENT
//
// A stale acquire abandons the iteration (nothing is submitted or presented)
// and rebuilds the swapchain. A suboptimal acquire finishes the frame first
// and rebuilds afterwards, as does a stale or suboptimal present or a resize
// notification from the surface. Every other error is returned as-is and the
// caller is expected to terminate the loop.
//
// The frame index advances on every call, including abandoned iterations.
func (f *FrameScheduler) DrawFrame() error {
	slot := f.frameIndex
	defer func() {
		f.frameIndex = (f.frameIndex + 1) % f.framesInFlight
	}()

	if err := f.Renderer.WaitFrame(slot); err != nil {
		return err
	}

	imageIndex, err := f.Renderer.AcquireImage(slot)
	if IsStale(err) {
		f.Log.Debug("stale swapchain on acquire, skipping frame", "slot", slot)
		return f.recreate()
	}
	rebuildAfterPresent := IsSuboptimal(err)
	if err != nil && !rebuildAfterPresent {
		return err
	}

	if err := f.Renderer.RecordFrame(slot, imageIndex); err != nil {
		return err
	}

	if err := f.Renderer.SubmitFrame(slot, imageIndex); err != nil {
		return err
	}

	err = f.Renderer.PresentImage(slot, imageIndex)
	switch {
	case IsStale(err) || IsSuboptimal(err):
		return f.recreate()
	case err != nil:
		return err
	}

	if rebuildAfterPresent || f.Surface.ConsumeResize() {
		return f.recreate()
	}

	return nil
}

// recreate runs the swapchain recreation protocol. While the surface has
// zero area (minimized window) it blocks on the surface event source rather
// than spinning; this is the only indefinite block outside WaitFrame.
func (f *FrameScheduler) recreate() error {
	extent := f.Surface.Extent()
	for extent.Width == 0 || extent.Height == 0 {
		f.Surface.WaitEvents()
		extent = f.Surface.Extent()
	}

	f.Log.Debug("rebuilding swapchain", "width", extent.Width, "height", extent.Height)
	if err := f.Renderer.RebuildSwapchain(extent); err != nil {
		return err
	}

	// A resize notification that arrived before the rebuild is already
	// satisfied by it; drain the flag so it does not trigger a second one.
	f.Surface.ConsumeResize()
	return nil
}
