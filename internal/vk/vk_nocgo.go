//go:build !(linux && cgo)

package vk

import "errors"

// ErrUnsupported is returned by every function in this file: Vulkan
// requires cgo and libvulkan, unavailable on this build.
var ErrUnsupported = errors.New("vk: built without cgo, Vulkan is unavailable")

func ChoosePhysicalDevice(Instance, Surface) (PhysicalDevice, uint32, error) { return 0, 0, ErrUnsupported }
func CreateDeviceAndQueue(PhysicalDevice, uint32) (Device, Queue, error)     { return 0, 0, ErrUnsupported }
func GetDeviceQueue(Device, uint32, uint32) Queue                            { return 0 }
func CreateSemaphore(Device) (Semaphore, error)                              { return 0, ErrUnsupported }
func DestroySemaphore(Device, Semaphore)                                     {}
func CreateSwapchain(Device, Surface, SwapchainExtent, uint32, Swapchain) (Swapchain, error) {
	return 0, ErrUnsupported
}
func DestroySwapchain(Device, Swapchain)                       {}
func AcquireNextImage(Device, Swapchain, Semaphore) (uint32, error) { return 0, ErrUnsupported }
func PresentQueue(Queue, Swapchain, uint32, Semaphore) error        { return ErrUnsupported }
func CreateRenderPass(Device, uint32) (RenderPass, error)           { return 0, ErrUnsupported }
func DestroyRenderPass(Device, RenderPass)                          {}
func CreateImageView(Device, Image, uint32) (ImageView, error)      { return 0, ErrUnsupported }
func DestroyImageView(Device, ImageView)                            {}
func CreateFramebuffer(Device, RenderPass, ImageView, SwapchainExtent) (Framebuffer, error) {
	return 0, ErrUnsupported
}
func DestroyFramebuffer(Device, Framebuffer) {}
func DestroyDevice(Device)                   {}
func DestroySurface(Instance, Surface)       {}
