package vgfx

// IDestructable is anything owning a native handle that must be released.
type IDestructable interface {
	Destroy()
}

// CleanupStack collects owned resources in acquisition order and destroys
// them in reverse, preserving the dependency ordering Vulkan requires
// (framebuffers before image views, image views before the swapchain, and
// so on). Push as each resource is created; one Destroy call tears the
// whole set down.
type CleanupStack struct {
	items []IDestructable
}

// Push records a resource for later destruction.
func (c *CleanupStack) Push(d IDestructable) {
	c.items = append(c.items, d)
}

// PushFunc records a bare teardown function.
func (c *CleanupStack) PushFunc(fn func()) {
	c.Push(destroyFunc(fn))
}

// Len returns the number of pending teardown entries.
func (c *CleanupStack) Len() int {
	return len(c.items)
}

// Destroy releases every recorded resource in reverse acquisition order
// and empties the stack. Safe to call on an empty stack.
func (c *CleanupStack) Destroy() {
	for i := len(c.items) - 1; i >= 0; i-- {
		c.items[i].Destroy()
	}
	c.items = nil
}

type destroyFunc func()

func (f destroyFunc) Destroy() { f() }
