//go:build linux && cgo

package vk

/*
#cgo LDFLAGS: -lvulkan
#include <stdlib.h>
#include <vulkan/vulkan.h>
*/
import "C"

import "unsafe"

// ChoosePhysicalDevice selects the first physical device exposing a
// graphics+present queue family on surf, returning that device and queue
// family index.
func ChoosePhysicalDevice(inst Instance, surf Surface) (PhysicalDevice, uint32, error) {
	cInst := C.VkInstance(unsafe.Pointer(uintptr(inst)))
	var count C.uint32_t
	if rc := C.vkEnumeratePhysicalDevices(cInst, &count, nil); rc != C.VK_SUCCESS {
		return 0, 0, &Error{Op: "vkEnumeratePhysicalDevices", Result: Result(rc)}
	}
	if count == 0 {
		return 0, 0, &Error{Op: "vkEnumeratePhysicalDevices", Result: Result(-1)}
	}
	devices := make([]C.VkPhysicalDevice, count)
	if rc := C.vkEnumeratePhysicalDevices(cInst, &count, &devices[0]); rc != C.VK_SUCCESS {
		return 0, 0, &Error{Op: "vkEnumeratePhysicalDevices", Result: Result(rc)}
	}

	cSurf := C.VkSurfaceKHR(unsafe.Pointer(uintptr(surf)))
	for _, dev := range devices {
		var qcount C.uint32_t
		C.vkGetPhysicalDeviceQueueFamilyProperties(dev, &qcount, nil)
		for i := C.uint32_t(0); i < qcount; i++ {
			var supported C.VkBool32
			C.vkGetPhysicalDeviceSurfaceSupportKHR(dev, i, cSurf, &supported)
			if supported != 0 {
				return PhysicalDevice(uintptr(unsafe.Pointer(dev))), uint32(i), nil
			}
		}
	}
	return 0, 0, &Error{Op: "ChoosePhysicalDevice", Result: Result(-1)}
}

// CreateDeviceAndQueue creates a logical device with a single graphics
// queue from queueFamily.
func CreateDeviceAndQueue(phys PhysicalDevice, queueFamily uint32) (Device, Queue, error) {
	priority := C.float(1.0)
	queueInfo := C.VkDeviceQueueCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_DEVICE_QUEUE_CREATE_INFO,
		queueFamilyIndex: C.uint32_t(queueFamily),
		queueCount:       1,
		pQueuePriorities: &priority,
	}
	swapchainExt := C.CString("VK_KHR_swapchain")
	defer C.free(unsafe.Pointer(swapchainExt))
	extNames := []*C.char{swapchainExt}

	devInfo := C.VkDeviceCreateInfo{
		sType:                 C.VK_STRUCTURE_TYPE_DEVICE_CREATE_INFO,
		queueCreateInfoCount:  1,
		pQueueCreateInfos:     &queueInfo,
		enabledExtensionCount: 1,
		ppEnabledExtensionNames: &extNames[0],
	}

	cPhys := C.VkPhysicalDevice(unsafe.Pointer(uintptr(phys)))
	var dev C.VkDevice
	if rc := C.vkCreateDevice(cPhys, &devInfo, nil, &dev); rc != C.VK_SUCCESS {
		return 0, 0, &Error{Op: "vkCreateDevice", Result: Result(rc)}
	}
	var queue C.VkQueue
	C.vkGetDeviceQueue(dev, C.uint32_t(queueFamily), 0, &queue)
	return Device(uintptr(unsafe.Pointer(dev))), Queue(uintptr(unsafe.Pointer(queue))), nil
}

func GetDeviceQueue(dev Device, queueFamily uint32, index uint32) Queue {
	cDev := C.VkDevice(unsafe.Pointer(uintptr(dev)))
	var queue C.VkQueue
	C.vkGetDeviceQueue(cDev, C.uint32_t(queueFamily), C.uint32_t(index), &queue)
	return Queue(uintptr(unsafe.Pointer(queue)))
}

func CreateSemaphore(dev Device) (Semaphore, error) {
	cDev := C.VkDevice(unsafe.Pointer(uintptr(dev)))
	info := C.VkSemaphoreCreateInfo{sType: C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO}
	var sem C.VkSemaphore
	if rc := C.vkCreateSemaphore(cDev, &info, nil, &sem); rc != C.VK_SUCCESS {
		return 0, &Error{Op: "vkCreateSemaphore", Result: Result(rc)}
	}
	return Semaphore(uintptr(unsafe.Pointer(sem))), nil
}

func DestroySemaphore(dev Device, sem Semaphore) {
	C.vkDestroySemaphore(C.VkDevice(unsafe.Pointer(uintptr(dev))), C.VkSemaphore(unsafe.Pointer(uintptr(sem))), nil)
}

// CreateSwapchain (re)creates a swapchain for surf at extent, optionally
// recycling oldSwapchain's resources per VkSwapchainCreateInfoKHR's
// oldSwapchain field — the mechanism behind lossless swapchain
// recreation on resize or VK_ERROR_OUT_OF_DATE_KHR (spec.md §5 Scenario
// E).
func CreateSwapchain(dev Device, surf Surface, extent SwapchainExtent, imageCount uint32, old Swapchain) (Swapchain, error) {
	info := C.VkSwapchainCreateInfoKHR{
		sType:           C.VK_STRUCTURE_TYPE_SWAPCHAIN_CREATE_INFO_KHR,
		surface:         C.VkSurfaceKHR(unsafe.Pointer(uintptr(surf))),
		minImageCount:   C.uint32_t(imageCount),
		imageFormat:     C.VK_FORMAT_B8G8R8A8_UNORM,
		imageColorSpace: C.VK_COLOR_SPACE_SRGB_NONLINEAR_KHR,
		imageExtent:     C.VkExtent2D{width: C.uint32_t(extent.Width), height: C.uint32_t(extent.Height)},
		imageArrayLayers: 1,
		imageUsage:      C.VK_IMAGE_USAGE_COLOR_ATTACHMENT_BIT,
		presentMode:     C.VK_PRESENT_MODE_FIFO_KHR,
		clipped:         C.VK_TRUE,
		oldSwapchain:    C.VkSwapchainKHR(unsafe.Pointer(uintptr(old))),
	}
	cDev := C.VkDevice(unsafe.Pointer(uintptr(dev)))
	var sc C.VkSwapchainKHR
	if rc := C.vkCreateSwapchainKHR(cDev, &info, nil, &sc); rc != C.VK_SUCCESS {
		return 0, &Error{Op: "vkCreateSwapchainKHR", Result: Result(rc)}
	}
	if old != 0 {
		C.vkDestroySwapchainKHR(cDev, C.VkSwapchainKHR(unsafe.Pointer(uintptr(old))), nil)
	}
	return Swapchain(uintptr(unsafe.Pointer(sc))), nil
}

func DestroySwapchain(dev Device, sc Swapchain) {
	C.vkDestroySwapchainKHR(C.VkDevice(unsafe.Pointer(uintptr(dev))), C.VkSwapchainKHR(unsafe.Pointer(uintptr(sc))), nil)
}

// AcquireNextImage returns the index of the swapchain image to render
// into next. A VK_ERROR_OUT_OF_DATE_KHR or VK_SUBOPTIMAL_KHR result is
// returned as an *Error for the caller to classify (spec.md §5 Scenario
// E: the renderer must recreate the swapchain and retry, not treat the
// frame as failed).
func AcquireNextImage(dev Device, sc Swapchain, signal Semaphore) (uint32, error) {
	cDev := C.VkDevice(unsafe.Pointer(uintptr(dev)))
	var idx C.uint32_t
	rc := C.vkAcquireNextImageKHR(cDev, C.VkSwapchainKHR(unsafe.Pointer(uintptr(sc))), C.UINT64_MAX,
		C.VkSemaphore(unsafe.Pointer(uintptr(signal))), nil, &idx)
	if rc != C.VK_SUCCESS && rc != C.VK_SUBOPTIMAL_KHR {
		return 0, &Error{Op: "vkAcquireNextImageKHR", Result: Result(rc)}
	}
	if rc == C.VK_SUBOPTIMAL_KHR {
		return uint32(idx), &Error{Op: "vkAcquireNextImageKHR", Result: SuboptimalKHR}
	}
	return uint32(idx), nil
}

// PresentQueue submits imageIndex for presentation, waiting on wait.
func PresentQueue(queue Queue, sc Swapchain, imageIndex uint32, wait Semaphore) error {
	cSc := C.VkSwapchainKHR(unsafe.Pointer(uintptr(sc)))
	cWait := C.VkSemaphore(unsafe.Pointer(uintptr(wait)))
	idx := C.uint32_t(imageIndex)
	info := C.VkPresentInfoKHR{
		sType:              C.VK_STRUCTURE_TYPE_PRESENT_INFO_KHR,
		waitSemaphoreCount: 1,
		pWaitSemaphores:    &cWait,
		swapchainCount:     1,
		pSwapchains:        &cSc,
		pImageIndices:      &idx,
	}
	rc := C.vkQueuePresentKHR(C.VkQueue(unsafe.Pointer(uintptr(queue))), &info)
	if rc != C.VK_SUCCESS {
		return &Error{Op: "vkQueuePresentKHR", Result: Result(rc)}
	}
	return nil
}

func CreateRenderPass(dev Device, format uint32) (RenderPass, error) {
	attachment := C.VkAttachmentDescription{
		format:        C.VkFormat(format),
		samples:       C.VK_SAMPLE_COUNT_1_BIT,
		loadOp:        C.VK_ATTACHMENT_LOAD_OP_CLEAR,
		storeOp:       C.VK_ATTACHMENT_STORE_OP_STORE,
		stencilLoadOp: C.VK_ATTACHMENT_LOAD_OP_DONT_CARE,
		finalLayout:   C.VK_IMAGE_LAYOUT_PRESENT_SRC_KHR,
	}
	ref := C.VkAttachmentReference{attachment: 0, layout: C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL}
	subpass := C.VkSubpassDescription{
		pipelineBindPoint:    C.VK_PIPELINE_BIND_POINT_GRAPHICS,
		colorAttachmentCount: 1,
		pColorAttachments:    &ref,
	}
	info := C.VkRenderPassCreateInfo{
		sType:           C.VK_STRUCTURE_TYPE_RENDER_PASS_CREATE_INFO,
		attachmentCount: 1,
		pAttachments:    &attachment,
		subpassCount:    1,
		pSubpasses:      &subpass,
	}
	cDev := C.VkDevice(unsafe.Pointer(uintptr(dev)))
	var rp C.VkRenderPass
	if rc := C.vkCreateRenderPass(cDev, &info, nil, &rp); rc != C.VK_SUCCESS {
		return 0, &Error{Op: "vkCreateRenderPass", Result: Result(rc)}
	}
	return RenderPass(uintptr(unsafe.Pointer(rp))), nil
}

func DestroyRenderPass(dev Device, rp RenderPass) {
	C.vkDestroyRenderPass(C.VkDevice(unsafe.Pointer(uintptr(dev))), C.VkRenderPass(unsafe.Pointer(uintptr(rp))), nil)
}

func CreateImageView(dev Device, img Image, format uint32) (ImageView, error) {
	info := C.VkImageViewCreateInfo{
		sType:    C.VK_STRUCTURE_TYPE_IMAGE_VIEW_CREATE_INFO,
		image:    C.VkImage(unsafe.Pointer(uintptr(img))),
		viewType: C.VK_IMAGE_VIEW_TYPE_2D,
		format:   C.VkFormat(format),
		subresourceRange: C.VkImageSubresourceRange{
			aspectMask: C.VK_IMAGE_ASPECT_COLOR_BIT,
			levelCount: 1,
			layerCount: 1,
		},
	}
	cDev := C.VkDevice(unsafe.Pointer(uintptr(dev)))
	var view C.VkImageView
	if rc := C.vkCreateImageView(cDev, &info, nil, &view); rc != C.VK_SUCCESS {
		return 0, &Error{Op: "vkCreateImageView", Result: Result(rc)}
	}
	return ImageView(uintptr(unsafe.Pointer(view))), nil
}

func DestroyImageView(dev Device, v ImageView) {
	C.vkDestroyImageView(C.VkDevice(unsafe.Pointer(uintptr(dev))), C.VkImageView(unsafe.Pointer(uintptr(v))), nil)
}

func CreateFramebuffer(dev Device, rp RenderPass, view ImageView, extent SwapchainExtent) (Framebuffer, error) {
	cView := C.VkImageView(unsafe.Pointer(uintptr(view)))
	info := C.VkFramebufferCreateInfo{
		sType:           C.VK_STRUCTURE_TYPE_FRAMEBUFFER_CREATE_INFO,
		renderPass:      C.VkRenderPass(unsafe.Pointer(uintptr(rp))),
		attachmentCount: 1,
		pAttachments:    &cView,
		width:           C.uint32_t(extent.Width),
		height:          C.uint32_t(extent.Height),
		layers:          1,
	}
	cDev := C.VkDevice(unsafe.Pointer(uintptr(dev)))
	var fb C.VkFramebuffer
	if rc := C.vkCreateFramebuffer(cDev, &info, nil, &fb); rc != C.VK_SUCCESS {
		return 0, &Error{Op: "vkCreateFramebuffer", Result: Result(rc)}
	}
	return Framebuffer(uintptr(unsafe.Pointer(fb))), nil
}

func DestroyFramebuffer(dev Device, fb Framebuffer) {
	C.vkDestroyFramebuffer(C.VkDevice(unsafe.Pointer(uintptr(dev))), C.VkFramebuffer(unsafe.Pointer(uintptr(fb))), nil)
}

func DestroyDevice(dev Device) {
	C.vkDestroyDevice(C.VkDevice(unsafe.Pointer(uintptr(dev))), nil)
}

func DestroySurface(inst Instance, surf Surface) {
	C.vkDestroySurfaceKHR(C.VkInstance(unsafe.Pointer(uintptr(inst))), C.VkSurfaceKHR(unsafe.Pointer(uintptr(surf))), nil)
}
