package vgfx

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ErrSwapchainStale indicates the swapchain no longer matches the surface
// and must be rebuilt before any further acquire or present can succeed.
var ErrSwapchainStale = errors.New("swapchain is stale")

// ErrSwapchainSuboptimal indicates the swapchain still works against the
// surface but no longer matches it exactly. The acquired image remains
// usable; the swapchain should be rebuilt after the frame is presented.
var ErrSwapchainSuboptimal = errors.New("swapchain is suboptimal")

// newResultError converts a native result code into an error, tagging the
// failing operation. Success yields nil. Staleness and suboptimality map to
// the two recoverable sentinels; every other code is fatal to the frame loop.
func newResultError(op string, res vk.Result) error {
	switch res {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate:
		return errors.Wrap(ErrSwapchainStale, op)
	case vk.Suboptimal:
		return errors.Wrap(ErrSwapchainSuboptimal, op)
	}
	return errors.Wrapf(vk.Error(res), "%s (%d)", op, res)
}

// IsStale reports whether err requires a full swapchain rebuild.
func IsStale(err error) bool {
	return errors.Is(err, ErrSwapchainStale)
}

// IsSuboptimal reports whether err permits finishing the current frame
// before rebuilding the swapchain.
func IsSuboptimal(err error) bool {
	return errors.Is(err, ErrSwapchainSuboptimal)
}
