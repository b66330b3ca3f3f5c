package vgfx

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// BufferObject is anything that can hand its contents over as raw bytes
// for upload into a buffer.
type BufferObject interface {
	Bytes() []byte
}

// IndexSource provides index data plus the index width the draw call
// must use.
type IndexSource interface {
	BufferObject
	IndexType() vk.IndexType
}

// VertexDescriptor describes how vertex data is laid out in memory.
type VertexDescriptor interface {
	GetBindingDescription() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}

// VertexSource provides vertex data together with its layout.
type VertexSource interface {
	BufferObject
	VertexDescriptor
}

type IndexSliceUint16 []uint16

func (i IndexSliceUint16) Bytes() []byte {
	size := len(i) * int(unsafe.Sizeof(uint16(0)))
	return ToBytes(unsafe.Pointer(&i[0]), size)
}

func (i IndexSliceUint16) IndexType() vk.IndexType {
	return vk.IndexTypeUint16
}

type IndexSliceUint32 []uint32

func (i IndexSliceUint32) Bytes() []byte {
	size := len(i) * int(unsafe.Sizeof(uint32(0)))
	return ToBytes(unsafe.Pointer(&i[0]), size)
}

func (i IndexSliceUint32) IndexType() vk.IndexType {
	return vk.IndexTypeUint32
}
