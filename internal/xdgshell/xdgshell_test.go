package xdgshell

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/surface"
)

func newTestXdgSurface() *XdgSurface {
	surf := surface.New(ids.NewWindowId(), 1)
	return New(surf, &SerialAllocator{})
}

// TestConfigureSerialsAreMonotonic covers property 4.
func TestConfigureSerialsAreMonotonic(t *testing.T) {
	xdg := newTestXdgSurface()
	s1 := xdg.SendConfigure()
	s2 := xdg.SendConfigure()
	require.Less(t, s1, s2)
}

func TestAckConfigureRejectsUnknownSerial(t *testing.T) {
	xdg := newTestXdgSurface()
	xdg.SendConfigure()
	err := xdg.AckConfigure(99999)
	require.Error(t, err)
}

func TestAckConfigureAcceptsSentSerial(t *testing.T) {
	xdg := newTestXdgSurface()
	s := xdg.SendConfigure()
	require.NoError(t, xdg.AckConfigure(s))
}

func TestCommitBeforeInitialAckIsRejected(t *testing.T) {
	xdg := newTestXdgSurface()
	buf := surface.NewAttachedBuffer(&fakeBuf{}, nil)
	xdg.Surface.Attach(buf, 0, 0)

	_, err := xdg.Commit()
	require.Error(t, err)
}

func TestCommitAfterAckSucceeds(t *testing.T) {
	xdg := newTestXdgSurface()
	s := xdg.SendConfigure()
	require.NoError(t, xdg.AckConfigure(s))

	buf := surface.NewAttachedBuffer(&fakeBuf{}, nil)
	xdg.Surface.Attach(buf, 0, 0)
	_, err := xdg.Commit()
	require.NoError(t, err)
	require.True(t, xdg.Surface.IsMapped())
}

func TestToplevelClampSize(t *testing.T) {
	xdg := newTestXdgSurface()
	top, err := GetToplevel(xdg)
	require.NoError(t, err)
	top.SetMinSize(100, 100)
	top.SetMaxSize(800, 600)

	w, h := top.ClampSize(50, 900)
	require.Equal(t, 100, w)
	require.Equal(t, 600, h)
}

func TestPopupPositionerSlidesOnScreen(t *testing.T) {
	parent := newTestXdgSurface()
	child := newTestXdgSurface()

	pos := Positioner{
		Size:       image.Pt(50, 50),
		AnchorRect: image.Rect(990, 10, 1000, 20),
		Anchor:     AnchorRight,
		Gravity:    GravityBottomRight,
		Adjustment: ConstraintAdjustSlideX,
	}
	output := image.Rect(0, 0, 1024, 768)
	popup, err := GetPopup(child, parent, pos, output)
	require.NoError(t, err)
	require.LessOrEqual(t, popup.Geometry.Max.X, output.Max.X)
}

type fakeBuf struct{ busy bool }

func (f *fakeBuf) IsBusy() bool { return f.busy }
func (f *fakeBuf) MarkBusy()    { f.busy = true }
func (f *fakeBuf) MarkIdle()    { f.busy = false }
