// Package vk is a narrow cgo binding to libvulkan covering exactly the
// operations the renderer's swapchain lifecycle needs (spec.md §5's
// Vulkan backend): instance/device selection, swapchain
// creation/recreation, and per-frame acquire/present.
//
// Handle types and VkResult classification live in this file, compiled
// on every platform, so swapchain-recreation policy (internal/render/
// vulkan) can be unit tested without linking libvulkan. The actual
// C-calling functions live in vk_cgo.go/vk_nocgo.go.
package vk

import "fmt"

// Result mirrors the subset of VkResult this package's callers branch on.
type Result int32

const (
	Success            Result = 0
	SuboptimalKHR      Result = 1000001003
	ErrorOutOfDateKHR  Result = -1000001004
	ErrorDeviceLost    Result = -4
	ErrorSurfaceLostKHR Result = -1000000000
)

// Error wraps a failed Vulkan call with the operation name and result
// code, per app/vulkan.go's "vk.Error with .IsDeviceLost()" usage.
type Error struct {
	Op     string
	Result Result
}

func (e *Error) Error() string {
	return fmt.Sprintf("vk: %s failed: result %d", e.Op, e.Result)
}

func (e *Error) IsDeviceLost() bool  { return e.Result == ErrorDeviceLost }
func (e *Error) IsOutOfDate() bool   { return e.Result == ErrorOutOfDateKHR }
func (e *Error) IsSuboptimal() bool  { return e.Result == SuboptimalKHR }
func (e *Error) IsSurfaceLost() bool { return e.Result == ErrorSurfaceLostKHR }

// Handle types are opaque integer handles so non-cgo code (tests, the
// swapchain-recreation policy) can reference them without linking
// libvulkan; the cgo build converts real VkXxx pointers to/from these via
// unsafe.Pointer.
type (
	Instance       uintptr
	PhysicalDevice uintptr
	Device         uintptr
	Queue          uintptr
	Surface        uintptr
	Swapchain      uintptr
	Semaphore      uintptr
	Fence          uintptr
	RenderPass     uintptr
	ImageView      uintptr
	Framebuffer    uintptr
	Image          uintptr
)

// SwapchainExtent is a swapchain's pixel dimensions.
type SwapchainExtent struct{ Width, Height uint32 }
