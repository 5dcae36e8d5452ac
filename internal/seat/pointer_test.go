package seat

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/kestrel/internal/ids"
)

type rectHitTester struct {
	id     ids.WindowId
	bounds image.Rectangle
}

func (r *rectHitTester) HitTest(p image.Point) (ids.WindowId, image.Point, bool) {
	if p.In(r.bounds) {
		return r.id, p.Sub(r.bounds.Min), true
	}
	return ids.WindowId{}, image.Point{}, false
}

// TestPointerEnterLeaveOnMotion covers property 6 and Scenario C: moving
// across a surface boundary emits leave then enter, grouped into frames.
func TestPointerEnterLeaveOnMotion(t *testing.T) {
	winId := ids.NewWindowId()
	hit := &rectHitTester{id: winId, bounds: image.Rect(0, 0, 100, 100)}
	p := NewPointer(hit)

	p.WarpTo(image.Pt(50, 50))
	events := p.Frame()
	require.Len(t, events, 1)
	require.Equal(t, EventEnter, events[0].Kind)
	require.True(t, p.HasFocus)
	require.Equal(t, winId, p.Focus)

	p.WarpTo(image.Pt(500, 500))
	events = p.Frame()
	require.Len(t, events, 1)
	require.Equal(t, EventLeave, events[0].Kind)
	require.False(t, p.HasFocus)
}

func TestPointerMotionWithinSurfaceEmitsMotionOnly(t *testing.T) {
	hit := &rectHitTester{id: ids.NewWindowId(), bounds: image.Rect(0, 0, 100, 100)}
	p := NewPointer(hit)
	p.WarpTo(image.Pt(10, 10))
	p.Frame()

	p.WarpTo(image.Pt(20, 20))
	events := p.Frame()
	require.Len(t, events, 1)
	require.Equal(t, EventMotion, events[0].Kind)
}

func TestPointerButtonQueuesEvent(t *testing.T) {
	hit := &rectHitTester{id: ids.NewWindowId(), bounds: image.Rect(0, 0, 100, 100)}
	p := NewPointer(hit)
	p.Button(ButtonLeft, true)
	events := p.Frame()
	require.Len(t, events, 1)
	require.Equal(t, EventButton, events[0].Kind)
	require.True(t, p.Buttons[ButtonLeft])
}

func TestAccelerateFlatIsLinear(t *testing.T) {
	dx, dy := Accelerate(10, 0, 1.0, AccelFlat)
	require.Equal(t, 20.0, dx)
	require.Equal(t, 0.0, dy)
}

func TestTouchDownMotionUp(t *testing.T) {
	winId := ids.NewWindowId()
	hit := &rectHitTester{id: winId, bounds: image.Rect(0, 0, 100, 100)}
	touch := NewTouch(hit)

	ev, ok := touch.Down(1, image.Pt(10, 10))
	require.True(t, ok)
	require.Equal(t, TouchDown, ev.Kind)
	require.Equal(t, 1, touch.ActivePoints())

	ev, ok = touch.Motion(1, image.Pt(20, 20))
	require.True(t, ok)
	require.Equal(t, TouchMotion, ev.Kind)

	ev, ok = touch.Up(1)
	require.True(t, ok)
	require.Equal(t, TouchUp, ev.Kind)
	require.Equal(t, 0, touch.ActivePoints())
}

func TestTouchCancelClearsAllPoints(t *testing.T) {
	hit := &rectHitTester{id: ids.NewWindowId(), bounds: image.Rect(0, 0, 100, 100)}
	touch := NewTouch(hit)
	touch.Down(1, image.Pt(5, 5))
	touch.Down(2, image.Pt(6, 6))
	touch.Cancel()
	require.Equal(t, 0, touch.ActivePoints())
}
