package vgfx

import (
	"sync/atomic"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory is an allocation of host- or device-local memory that
// buffers and images bind into.
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
	mapCount       int32
	// Ptr holds the host address while the memory is mapped.
	Ptr unsafe.Pointer
}

// IsMapped reports whether the memory is currently mapped into the host
// address space.
func (d *DeviceMemory) IsMapped() bool {
	return atomic.LoadInt32(&d.mapCount) > 0
}

func (d *DeviceMemory) Destroy() {
	vk.FreeMemory(d.Device.VKDevice, d.VKDeviceMemory, nil)
}

// Map maps the entire allocation and remembers the host pointer.
func (d *DeviceMemory) Map() (unsafe.Pointer, error) {
	var res unsafe.Pointer
	if err := newResultError("map memory", vk.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, 0, vk.DeviceSize(d.Size), 0, &res)); err != nil {
		return nil, err
	}
	atomic.AddInt32(&d.mapCount, 1)
	d.Ptr = res
	return res, nil
}

// MapWithOffset maps size bytes starting at offset.
func (d *DeviceMemory) MapWithOffset(size, offset uint64) (unsafe.Pointer, error) {
	var res unsafe.Pointer
	if err := newResultError("map memory", vk.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &res)); err != nil {
		return nil, err
	}
	atomic.AddInt32(&d.mapCount, 1)
	return res, nil
}

// Unmap releases the host mapping.
func (d *DeviceMemory) Unmap() {
	d.Ptr = nil
	vk.UnmapMemory(d.Device.VKDevice, d.VKDeviceMemory)
	atomic.AddInt32(&d.mapCount, -1)
}

// MapCopyUnmap maps the memory, copies data into it and unmaps. Suitable
// for one-shot uploads into host-coherent memory.
func (d *DeviceMemory) MapCopyUnmap(data []byte) error {
	pm, err := d.MapWithOffset(uint64(len(data)), 0)
	if err != nil {
		return err
	}
	copy(ToBytes(pm, len(data)), data)
	d.Unmap()
	return nil
}
