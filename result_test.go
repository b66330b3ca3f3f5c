package vgfx

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewResultError(t *testing.T) {
	assert.NoError(t, newResultError("op", vk.Success))

	stale := newResultError("acquire", vk.ErrorOutOfDate)
	assert.True(t, IsStale(stale))
	assert.False(t, IsSuboptimal(stale))

	sub := newResultError("present", vk.Suboptimal)
	assert.True(t, IsSuboptimal(sub))
	assert.False(t, IsStale(sub))

	fatal := newResultError("submit", vk.ErrorDeviceLost)
	assert.Error(t, fatal)
	assert.False(t, IsStale(fatal))
	assert.False(t, IsSuboptimal(fatal))
}

func TestResultErrorWrapping(t *testing.T) {
	err := errors.Wrap(newResultError("acquire", vk.ErrorOutOfDate), "frame 12")
	assert.True(t, IsStale(err), "classification must survive wrapping")
}

func TestIsStaleNil(t *testing.T) {
	assert.False(t, IsStale(nil))
	assert.False(t, IsSuboptimal(nil))
}
