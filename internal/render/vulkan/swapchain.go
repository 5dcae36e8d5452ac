// Package vulkan implements internal/render.FrameRenderer on top of the
// Vulkan objects internal/vk exposes (spec.md §5), adapted from gio's
// app/vulkan.go swapchain/present loop — which this pack's retrieval
// didn't include a matching internal/vk package for, so the binding
// itself was reconstructed here from that file's call-site shapes (see
// DESIGN.md).
package vulkan

import (
	"errors"
	"fmt"

	"github.com/kestrelwm/kestrel/internal/vk"
)

// MinFramesInFlight is the smallest number of in-flight frames that
// avoids the CPU stalling on the GPU every frame (spec.md §5 property:
// "the renderer maintains at least two frames in flight").
const MinFramesInFlight = 2

// Device is the subset of internal/vk's swapchain-lifecycle calls this
// package drives, narrowed to an interface so the recreate-on-
// OUT_OF_DATE policy below is testable without linking libvulkan.
type Device interface {
	CreateSwapchain(extent vk.SwapchainExtent, imageCount uint32, old vk.Swapchain) (vk.Swapchain, error)
	AcquireNextImage(sc vk.Swapchain, signal vk.Semaphore) (uint32, error)
	PresentQueue(queue vk.Queue, sc vk.Swapchain, imageIndex uint32, wait vk.Semaphore) error
}

// Swapchain owns one Vulkan swapchain and its per-frame-in-flight
// semaphores, recreating itself when the presentation engine reports the
// surface changed (spec.md §5 Scenario E).
type Swapchain struct {
	dev    Device
	queue  vk.Queue
	handle vk.Swapchain
	extent vk.SwapchainExtent

	semaphores []vk.Semaphore
	frameIndex int
}

// NewSwapchain creates a swapchain with one semaphore per frame in
// flight (at least MinFramesInFlight).
func NewSwapchain(dev Device, queue vk.Queue, extent vk.SwapchainExtent, semaphores []vk.Semaphore) (*Swapchain, error) {
	if len(semaphores) < MinFramesInFlight {
		return nil, fmt.Errorf("vulkan: need at least %d frames in flight, got %d", MinFramesInFlight, len(semaphores))
	}
	handle, err := dev.CreateSwapchain(extent, uint32(len(semaphores)), 0)
	if err != nil {
		return nil, fmt.Errorf("vulkan: create swapchain: %w", err)
	}
	return &Swapchain{dev: dev, queue: queue, handle: handle, extent: extent, semaphores: semaphores}, nil
}

// Frame runs one acquire/draw/present cycle. If the presentation engine
// reports the swapchain is out of date or suboptimal — most commonly
// after an output resize — Frame transparently recreates the swapchain
// at currentExtent and retries once before giving up (spec.md §5
// Scenario E: "a resized output must not drop frames indefinitely").
func (s *Swapchain) Frame(currentExtent vk.SwapchainExtent, draw func(imageIndex uint32) error) error {
	sem := s.semaphores[s.frameIndex%len(s.semaphores)]

	idx, err := s.dev.AcquireNextImage(s.handle, sem)
	if needsRecreate(err) {
		if rerr := s.recreate(currentExtent); rerr != nil {
			return rerr
		}
		idx, err = s.dev.AcquireNextImage(s.handle, sem)
	}
	if err != nil {
		return fmt.Errorf("vulkan: acquire next image: %w", err)
	}

	if err := draw(idx); err != nil {
		return err
	}

	presentErr := s.dev.PresentQueue(s.queue, s.handle, idx, sem)
	if needsRecreate(presentErr) {
		return s.recreate(currentExtent)
	}
	if presentErr != nil {
		return fmt.Errorf("vulkan: present: %w", presentErr)
	}
	s.frameIndex++
	return nil
}

func (s *Swapchain) recreate(extent vk.SwapchainExtent) error {
	handle, err := s.dev.CreateSwapchain(extent, uint32(len(s.semaphores)), s.handle)
	if err != nil {
		return fmt.Errorf("vulkan: recreate swapchain: %w", err)
	}
	s.handle = handle
	s.extent = extent
	return nil
}

func needsRecreate(err error) bool {
	if err == nil {
		return false
	}
	var verr *vk.Error
	if errors.As(err, &verr) {
		return verr.IsOutOfDate() || verr.IsSuboptimal()
	}
	return false
}

// Extent reports the swapchain's current dimensions.
func (s *Swapchain) Extent() vk.SwapchainExtent { return s.extent }
