package vgfx

import (
	"fmt"
)

// Allocation is a suballocation within a memory pool.
type Allocation struct {
	Offset uint64
	Size   uint64
	// Object is the resource living in this allocation, destroyed with
	// the pool.
	Object IDestructable
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

// IAllocator hands out suballocations from a fixed-size region. Vulkan
// limits the number of native memory allocations, so buffers and images
// are packed into larger pools.
type IAllocator interface {
	Allocate(size, align uint64) *Allocation
	Free(a *Allocation)
	DestroyContents()
}

// PoolAllocator is a first-fit allocator over a fixed-size region. Align
// is the minimum alignment applied when a caller does not request one.
type PoolAllocator struct {
	Size   uint64
	Align  uint64
	allocs []*Allocation
}

func alignUp(a, align uint64) uint64 {
	if align == 0 {
		return a
	}
	if m := a % align; m != 0 {
		return a - m + align
	}
	return a
}

// Allocate returns a suballocation of the given size and alignment, or nil
// when no hole is large enough.
func (p *PoolAllocator) Allocate(size, align uint64) *Allocation {
	if align == 0 {
		align = p.Align
	}

	// First fit: walk the holes between existing allocations in offset
	// order, falling through to the tail of the pool.
	offset := uint64(0)
	insertAt := len(p.allocs)
	for i, a := range p.allocs {
		if a.Offset >= offset && a.Offset-offset >= size {
			insertAt = i
			break
		}
		offset = alignUp(a.Offset+a.Size, align)
	}

	if offset > p.Size || p.Size-offset < size {
		return nil
	}

	na := &Allocation{Offset: offset, Size: size}
	p.allocs = append(p.allocs, nil)
	copy(p.allocs[insertAt+1:], p.allocs[insertAt:])
	p.allocs[insertAt] = na
	return na
}

// Free returns the allocation's space to the pool.
func (p *PoolAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

// DestroyContents destroys every resource still living in the pool and
// empties it.
func (p *PoolAllocator) DestroyContents() {
	// Destroy mutates allocs through Free, so walk a copy.
	pending := append([]*Allocation(nil), p.allocs...)
	for _, a := range pending {
		if a.Object != nil {
			a.Object.Destroy()
		}
	}
	p.allocs = nil
}

func (p *PoolAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}
