package vulkan

import "github.com/kestrelwm/kestrel/internal/vk"

// vkDevice adapts internal/vk's free functions to the Device interface
// Swapchain drives, so production code and swapchain_test.go's fakeDevice
// satisfy the same contract.
type vkDevice struct {
	dev  vk.Device
	surf vk.Surface
}

func NewDevice(dev vk.Device, surf vk.Surface) Device { return &vkDevice{dev: dev, surf: surf} }

func (d *vkDevice) CreateSwapchain(extent vk.SwapchainExtent, imageCount uint32, old vk.Swapchain) (vk.Swapchain, error) {
	return vk.CreateSwapchain(d.dev, d.surf, extent, imageCount, old)
}

func (d *vkDevice) AcquireNextImage(sc vk.Swapchain, signal vk.Semaphore) (uint32, error) {
	return vk.AcquireNextImage(d.dev, sc, signal)
}

func (d *vkDevice) PresentQueue(queue vk.Queue, sc vk.Swapchain, imageIndex uint32, wait vk.Semaphore) error {
	return vk.PresentQueue(queue, sc, imageIndex, wait)
}
