package vgfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanupStackReverseOrder(t *testing.T) {
	var stack CleanupStack
	var order []int

	for i := 0; i < 3; i++ {
		i := i
		stack.PushFunc(func() { order = append(order, i) })
	}
	assert.Equal(t, 3, stack.Len())

	stack.Destroy()
	assert.Equal(t, []int{2, 1, 0}, order)
	assert.Equal(t, 0, stack.Len())
}

func TestCleanupStackDestroyTwice(t *testing.T) {
	var stack CleanupStack
	calls := 0
	stack.PushFunc(func() { calls++ })

	stack.Destroy()
	stack.Destroy()
	assert.Equal(t, 1, calls)
}
