/*
Package vgfx builds a small rendering toolkit on top of the Vulkan
graphics API for Go, organized around an explicit per-frame scheduler.

The package splits into three layers. The bottom layer wraps individual
Vulkan objects (Instance, Device, Swapchain, Buffer, Image and friends)
with creation helpers and Destroy methods, keeping the native handles
exported so callers can always drop down to raw Vulkan calls. The middle
layer is the ResourceManager, which carves buffers and images out of
pooled device memory allocations and handles staged uploads into
device-local memory. The top layer is the FrameScheduler together with
GraphicsApp: the scheduler owns the frame state machine

	WAIT -> ACQUIRE -> RECORD -> SUBMIT -> PRESENT

and the swapchain recreation protocol, while GraphicsApp implements the
device-facing side of it and assembles the swapchain, render pass,
pipelines and per-frame sync objects.

The scheduler is written against two small interfaces, Surface and
FrameRenderer, so the sequencing rules it enforces (bounded frames in
flight, fence reset ordering, rebuild-before-reuse after a stale
swapchain) can be tested without a GPU.

The examples directory contains two runnable programs: a spinning
colored triangle and a textured quad that exercises the staging upload
path.
*/
package vgfx
