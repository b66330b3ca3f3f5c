package vgfx

import (
	"testing"
)

func TestAlignUp(t *testing.T) {
	if alignUp(12, 4) != 12 {
		t.Fail()
	}
	if alignUp(10, 4) != 12 {
		t.Fail()
	}
	if alignUp(10, 0) != 10 {
		t.Fail()
	}
}

func TestPoolAllocator(t *testing.T) {
	a := PoolAllocator{Size: 1024}

	if a.Allocate(2048, 1) != nil {
		t.Error("oversized allocation must fail")
	}

	first := a.Allocate(512, 1)
	if first == nil {
		t.Error("first allocation failed")
	}

	if a.Allocate(768, 1) != nil {
		t.Error("allocation past pool end must fail")
	}

	second := a.Allocate(500, 1)
	if second == nil {
		t.Error("second allocation failed")
	}

	if a.Allocate(50, 1) != nil {
		t.Error("pool nearly full, 50 must fail")
	}
	if a.Allocate(5, 1) == nil {
		t.Error("5 bytes should still fit at the tail")
	}

	a.Free(second)
	if a.Allocate(500, 1) == nil {
		t.Error("freed space must be reusable")
	}

	a.Free(first)
	if a.Allocate(20, 1) == nil {
		t.Error("hole at pool start must be reusable")
	}
	if a.Allocate(400, 1) == nil {
		t.Error("remainder of the first hole must be reusable")
	}
}

func TestPoolAllocatorAlignment(t *testing.T) {
	a := PoolAllocator{Size: 1024}

	x := a.Allocate(10, 1)
	if x == nil || x.Offset != 0 {
		t.Fatalf("expected offset 0, got %v", x)
	}

	y := a.Allocate(10, 256)
	if y == nil {
		t.Fatal("aligned allocation failed")
	}
	if y.Offset%256 != 0 {
		t.Errorf("offset %d not aligned to 256", y.Offset)
	}
}

func TestPoolAllocatorDestroyContents(t *testing.T) {
	a := PoolAllocator{Size: 1024}

	destroyed := 0
	for i := 0; i < 3; i++ {
		alloc := a.Allocate(64, 1)
		if alloc == nil {
			t.Fatal("allocation failed")
		}
		alloc.Object = destroyFunc(func() { destroyed++ })
	}

	a.DestroyContents()
	if destroyed != 3 {
		t.Errorf("expected 3 destroyed objects, got %d", destroyed)
	}
	if a.Allocate(1024, 1) == nil {
		t.Error("pool must be empty after DestroyContents")
	}
}
