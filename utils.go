package vgfx

import (
	"unsafe"
)

var end = "\x00"
var endChar byte = '\x00'

// ToBytes reinterprets lenInBytes bytes at ptr as a byte slice.
func ToBytes(ptr unsafe.Pointer, lenInBytes int) []byte {
	const m = 0x7fffffff
	return (*[m]byte)(ptr)[:lenInBytes]
}

func unsafeOffset(ptr unsafe.Pointer, offset uint64) unsafe.Pointer {
	return unsafe.Pointer(uintptr(ptr) + uintptr(offset))
}

// safeString null-terminates a string for handoff to native calls.
func safeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}
