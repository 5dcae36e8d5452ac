package vulkan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/kestrel/internal/vk"
)

type fakeDevice struct {
	createCount       int
	acquireOutOfDate  bool
	presentSuboptimal bool
	handle            vk.Swapchain
}

func (f *fakeDevice) CreateSwapchain(extent vk.SwapchainExtent, imageCount uint32, old vk.Swapchain) (vk.Swapchain, error) {
	f.createCount++
	f.handle = vk.Swapchain(f.createCount)
	return f.handle, nil
}

func (f *fakeDevice) AcquireNextImage(sc vk.Swapchain, signal vk.Semaphore) (uint32, error) {
	if f.acquireOutOfDate {
		f.acquireOutOfDate = false // only fail once
		return 0, &vk.Error{Op: "vkAcquireNextImageKHR", Result: vk.ErrorOutOfDateKHR}
	}
	return 0, nil
}

func (f *fakeDevice) PresentQueue(queue vk.Queue, sc vk.Swapchain, imageIndex uint32, wait vk.Semaphore) error {
	if f.presentSuboptimal {
		f.presentSuboptimal = false
		return &vk.Error{Op: "vkQueuePresentKHR", Result: vk.SuboptimalKHR}
	}
	return nil
}

func newTestSwapchain(t *testing.T, dev Device) *Swapchain {
	t.Helper()
	sc, err := NewSwapchain(dev, vk.Queue(1), vk.SwapchainExtent{Width: 1920, Height: 1080}, []vk.Semaphore{1, 2})
	require.NoError(t, err)
	return sc
}

func TestNewSwapchainRequiresMinFramesInFlight(t *testing.T) {
	dev := &fakeDevice{}
	_, err := NewSwapchain(dev, vk.Queue(1), vk.SwapchainExtent{Width: 100, Height: 100}, []vk.Semaphore{1})
	require.Error(t, err)
}

// TestSwapchainRecreatesOnAcquireOutOfDate covers Scenario E: an
// OUT_OF_DATE_KHR from acquire transparently recreates the swapchain and
// the frame still completes.
func TestSwapchainRecreatesOnAcquireOutOfDate(t *testing.T) {
	dev := &fakeDevice{acquireOutOfDate: true}
	sc := newTestSwapchain(t, dev)
	initialCreateCount := dev.createCount

	drawn := false
	err := sc.Frame(vk.SwapchainExtent{Width: 1280, Height: 720}, func(idx uint32) error {
		drawn = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, drawn)
	require.Equal(t, initialCreateCount+1, dev.createCount, "out-of-date acquire must trigger exactly one recreate")
	require.Equal(t, vk.SwapchainExtent{Width: 1280, Height: 720}, sc.Extent())
}

func TestSwapchainRecreatesOnPresentSuboptimal(t *testing.T) {
	dev := &fakeDevice{presentSuboptimal: true}
	sc := newTestSwapchain(t, dev)
	initialCreateCount := dev.createCount

	err := sc.Frame(vk.SwapchainExtent{Width: 1920, Height: 1080}, func(idx uint32) error { return nil })
	require.NoError(t, err)
	require.Equal(t, initialCreateCount+1, dev.createCount)
}

func TestSwapchainAdvancesFrameIndexOnSuccess(t *testing.T) {
	dev := &fakeDevice{}
	sc := newTestSwapchain(t, dev)
	require.Equal(t, 0, sc.frameIndex)
	err := sc.Frame(sc.Extent(), func(idx uint32) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, sc.frameIndex)
}
