package vgfx

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

type fakeSurface struct {
	extent  vk.Extent2D
	resized bool

	// extentAfterWait replaces extent on each WaitEvents call, simulating
	// the window being restored while minimized.
	extentAfterWait []vk.Extent2D
	waitCalls       int
}

func (s *fakeSurface) Extent() vk.Extent2D { return s.extent }

func (s *fakeSurface) ConsumeResize() bool {
	r := s.resized
	s.resized = false
	return r
}

func (s *fakeSurface) WaitEvents() {
	s.waitCalls++
	if len(s.extentAfterWait) > 0 {
		s.extent = s.extentAfterWait[0]
		s.extentAfterWait = s.extentAfterWait[1:]
	}
}

// fakeRenderer records the stage sequence and fails scripted stages once.
type fakeRenderer struct {
	calls []string

	acquireErr error
	recordErr  error
	submitErr  error
	presentErr error
	rebuildErr error

	nextImage      int
	rebuildExtents []vk.Extent2D
}

func (r *fakeRenderer) record(call string) { r.calls = append(r.calls, call) }

func (r *fakeRenderer) WaitFrame(slot int) error {
	r.record("wait")
	return nil
}

func (r *fakeRenderer) AcquireImage(slot int) (int, error) {
	r.record("acquire")
	if err := r.acquireErr; err != nil {
		r.acquireErr = nil
		return 0, err
	}
	return r.nextImage, nil
}

func (r *fakeRenderer) RecordFrame(slot, imageIndex int) error {
	r.record("record")
	return r.recordErr
}

func (r *fakeRenderer) SubmitFrame(slot, imageIndex int) error {
	r.record("submit")
	return r.submitErr
}

func (r *fakeRenderer) PresentImage(slot, imageIndex int) error {
	r.record("present")
	if err := r.presentErr; err != nil {
		r.presentErr = nil
		return err
	}
	return nil
}

func (r *fakeRenderer) RebuildSwapchain(extent vk.Extent2D) error {
	r.record("rebuild")
	r.rebuildExtents = append(r.rebuildExtents, extent)
	return r.rebuildErr
}

func newTestScheduler() (*FrameScheduler, *fakeRenderer, *fakeSurface) {
	renderer := &fakeRenderer{}
	surface := &fakeSurface{extent: vk.Extent2D{Width: 800, Height: 600}}
	return NewFrameScheduler(renderer, surface), renderer, surface
}

func TestDrawFrameSteadyState(t *testing.T) {
	s, r, _ := newTestScheduler()

	require.NoError(t, s.DrawFrame())
	assert.Equal(t, []string{"wait", "acquire", "record", "submit", "present"}, r.calls)
}

func TestFrameIndexRotates(t *testing.T) {
	s, _, _ := newTestScheduler()

	require.Equal(t, 2, s.FramesInFlight())
	for i := 0; i < 5; i++ {
		assert.Equal(t, i%2, s.FrameIndex())
		require.NoError(t, s.DrawFrame())
	}
}

func TestStaleAcquireSkipsFrame(t *testing.T) {
	s, r, _ := newTestScheduler()
	r.acquireErr = errors.Wrap(ErrSwapchainStale, "acquire swapchain image")

	require.NoError(t, s.DrawFrame())

	// Nothing may be submitted or presented against the dead swapchain.
	assert.Equal(t, []string{"wait", "acquire", "rebuild"}, r.calls)

	// The slot still advances so the next frame uses fresh sync objects.
	assert.Equal(t, 1, s.FrameIndex())
}

func TestSuboptimalAcquireFinishesFrameThenRebuilds(t *testing.T) {
	s, r, _ := newTestScheduler()
	r.acquireErr = errors.Wrap(ErrSwapchainSuboptimal, "acquire swapchain image")

	require.NoError(t, s.DrawFrame())
	assert.Equal(t, []string{"wait", "acquire", "record", "submit", "present", "rebuild"}, r.calls)
}

func TestStalePresentRebuilds(t *testing.T) {
	s, r, _ := newTestScheduler()
	r.presentErr = errors.Wrap(ErrSwapchainStale, "present image")

	require.NoError(t, s.DrawFrame())
	assert.Equal(t, []string{"wait", "acquire", "record", "submit", "present", "rebuild"}, r.calls)
}

func TestSuboptimalPresentRebuilds(t *testing.T) {
	s, r, _ := newTestScheduler()
	r.presentErr = errors.Wrap(ErrSwapchainSuboptimal, "present image")

	require.NoError(t, s.DrawFrame())
	assert.Equal(t, []string{"wait", "acquire", "record", "submit", "present", "rebuild"}, r.calls)
}

func TestResizeNotificationRebuildsOnce(t *testing.T) {
	s, r, surface := newTestScheduler()
	surface.resized = true

	require.NoError(t, s.DrawFrame())
	assert.Equal(t, []string{"wait", "acquire", "record", "submit", "present", "rebuild"}, r.calls)

	// The notification is consumed; the next frame runs clean.
	r.calls = nil
	require.NoError(t, s.DrawFrame())
	assert.Equal(t, []string{"wait", "acquire", "record", "submit", "present"}, r.calls)
}

func TestStalePlusResizeRebuildsOnce(t *testing.T) {
	s, r, surface := newTestScheduler()
	r.presentErr = errors.Wrap(ErrSwapchainStale, "present image")
	surface.resized = true

	require.NoError(t, s.DrawFrame())
	assert.Equal(t, 1, len(r.rebuildExtents))

	r.calls = nil
	require.NoError(t, s.DrawFrame())
	assert.Equal(t, []string{"wait", "acquire", "record", "submit", "present"}, r.calls)
}

func TestRecreateBlocksWhileMinimized(t *testing.T) {
	s, r, surface := newTestScheduler()
	r.presentErr = errors.Wrap(ErrSwapchainStale, "present image")
	surface.extent = vk.Extent2D{}
	surface.extentAfterWait = []vk.Extent2D{
		{},
		{},
		{Width: 1024, Height: 768},
	}

	require.NoError(t, s.DrawFrame())
	assert.Equal(t, 3, surface.waitCalls)
	require.Equal(t, 1, len(r.rebuildExtents))
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, r.rebuildExtents[0])
}

func TestFatalErrorsPropagate(t *testing.T) {
	fatal := errors.New("device lost")

	t.Run("acquire", func(t *testing.T) {
		s, r, _ := newTestScheduler()
		r.acquireErr = fatal
		require.ErrorIs(t, s.DrawFrame(), fatal)
		assert.NotContains(t, r.calls, "rebuild")
		assert.NotContains(t, r.calls, "submit")
	})

	t.Run("submit", func(t *testing.T) {
		s, r, _ := newTestScheduler()
		r.submitErr = fatal
		require.ErrorIs(t, s.DrawFrame(), fatal)
		assert.NotContains(t, r.calls, "present")
	})

	t.Run("present", func(t *testing.T) {
		s, r, _ := newTestScheduler()
		r.presentErr = fatal
		require.ErrorIs(t, s.DrawFrame(), fatal)
		assert.NotContains(t, r.calls, "rebuild")
	})
}

func TestRebuildFailurePropagates(t *testing.T) {
	s, r, _ := newTestScheduler()
	broken := errors.New("surface gone")
	r.acquireErr = errors.Wrap(ErrSwapchainStale, "acquire swapchain image")
	r.rebuildErr = broken

	require.ErrorIs(t, s.DrawFrame(), broken)
}
