package seat

import (
	"image"

	"github.com/kestrelwm/kestrel/internal/ids"
)

// HitTester resolves a global pointer position to the topmost surface
// under it plus that surface's local coordinates, per spec.md §4.7's
// focus-follows-hit-test model. The compositor supplies the
// implementation (wired against internal/wm's stacking order and
// internal/surface's input regions) so this package stays free of
// either dependency.
type HitTester interface {
	HitTest(global image.Point) (surface ids.WindowId, local image.Point, ok bool)
}

// BoundsProvider supplies the pointer's valid-motion rectangle — the
// union of every output's geometry, per spec.md §4.7 ("global pointer
// position clamped to union of output geometries"). internal/output's
// Layout already satisfies this; taking it as an interface here keeps
// this package free of a dependency on internal/output.
type BoundsProvider interface {
	Bounds() image.Rectangle
}

// AccelProfile selects a pointer acceleration curve, mirroring
// libinput's flat vs. adaptive profiles.
type AccelProfile int

const (
	AccelFlat AccelProfile = iota
	AccelAdaptive
)

// Accelerate applies profile to a raw relative motion, returning the
// accelerated delta. Flat acceleration is a constant multiplier; adaptive
// acceleration grows with speed, modeling libinput's default curve
// closely enough for pointer feel without porting its exact tables.
func Accelerate(dx, dy float64, speed float64, profile AccelProfile) (float64, float64) {
	switch profile {
	case AccelFlat:
		factor := 1 + speed
		return dx * factor, dy * factor
	default:
		mag := dx*dx + dy*dy
		factor := 1.0
		switch {
		case mag > 100:
			factor = 1.6 + speed
		case mag > 25:
			factor = 1.25 + speed*0.5
		default:
			factor = 1.0 + speed*0.25
		}
		return dx * factor, dy * factor
	}
}

// Button mirrors the Linux evdev button codes wl_pointer.button sends.
type Button uint32

const (
	ButtonLeft   Button = 0x110
	ButtonRight  Button = 0x111
	ButtonMiddle Button = 0x112
)

// Axis mirrors wl_pointer.axis's scroll axis enum.
type Axis int

const (
	AxisVerticalScroll Axis = iota
	AxisHorizontalScroll
)

// Pointer implements wl_pointer's enter/leave/motion/button/axis/frame
// event model (spec.md §4.7 property 6).
type Pointer struct {
	Hit    HitTester
	Bounds BoundsProvider

	Position image.Point
	Focus    ids.WindowId
	HasFocus bool
	Buttons  map[Button]bool

	AccelSpeed   float64
	AccelProfile AccelProfile

	// pendingFrame buffers events emitted since the last Frame() so a
	// caller can serialize one wl_pointer.frame group per call.
	pendingFrame []PointerEvent
}

// PointerEvent is one queued event awaiting the next Frame().
type PointerEvent struct {
	Kind  PointerEventKind
	Local image.Point
	Button Button
	Pressed bool
	Axis  Axis
	Value float64
}

type PointerEventKind int

const (
	EventEnter PointerEventKind = iota
	EventLeave
	EventMotion
	EventButton
	EventAxis
)

func NewPointer(hit HitTester) *Pointer {
	return &Pointer{Hit: hit, Buttons: make(map[Button]bool), AccelSpeed: 0}
}

// Motion processes a relative pointer delta: accelerates it, re-runs hit
// testing, and queues enter/leave/motion events as focus changes.
func (p *Pointer) Motion(dx, dy float64) {
	adx, ady := Accelerate(dx, dy, p.AccelSpeed, p.AccelProfile)
	p.Position = p.Position.Add(image.Pt(int(adx), int(ady)))
	p.clamp()
	p.retarget()
}

// WarpTo sets the pointer to an absolute global position (used for touch
// synthesis and initial placement), re-running hit-testing.
func (p *Pointer) WarpTo(pos image.Point) {
	p.Position = pos
	p.clamp()
	p.retarget()
}

// clamp pins Position inside the bounds Bounds advertises. A nil or
// empty BoundsProvider (no outputs configured yet) leaves Position
// untouched.
func (p *Pointer) clamp() {
	if p.Bounds == nil {
		return
	}
	b := p.Bounds.Bounds()
	if b.Empty() {
		return
	}
	switch {
	case p.Position.X < b.Min.X:
		p.Position.X = b.Min.X
	case p.Position.X >= b.Max.X:
		p.Position.X = b.Max.X - 1
	}
	switch {
	case p.Position.Y < b.Min.Y:
		p.Position.Y = b.Min.Y
	case p.Position.Y >= b.Max.Y:
		p.Position.Y = b.Max.Y - 1
	}
}

func (p *Pointer) retarget() {
	surf, local, ok := p.Hit.HitTest(p.Position)
	switch {
	case !ok && p.HasFocus:
		p.pendingFrame = append(p.pendingFrame, PointerEvent{Kind: EventLeave})
		p.HasFocus = false
	case ok && (!p.HasFocus || surf != p.Focus):
		if p.HasFocus {
			p.pendingFrame = append(p.pendingFrame, PointerEvent{Kind: EventLeave})
		}
		p.Focus = surf
		p.HasFocus = true
		p.pendingFrame = append(p.pendingFrame, PointerEvent{Kind: EventEnter, Local: local})
	case ok:
		p.pendingFrame = append(p.pendingFrame, PointerEvent{Kind: EventMotion, Local: local})
	}
}

// Button processes a button press/release.
func (p *Pointer) Button(btn Button, pressed bool) {
	p.Buttons[btn] = pressed
	p.pendingFrame = append(p.pendingFrame, PointerEvent{Kind: EventButton, Button: btn, Pressed: pressed})
}

// ScrollAxis queues a wl_pointer.axis event.
func (p *Pointer) ScrollAxis(axis Axis, value float64) {
	p.pendingFrame = append(p.pendingFrame, PointerEvent{Kind: EventAxis, Axis: axis, Value: value})
}

// Frame drains and returns the events queued since the last call, for the
// caller to serialize as one wl_pointer.frame group (spec.md §4.7:
// "pointer events are grouped into frames terminated by wl_pointer.frame").
func (p *Pointer) Frame() []PointerEvent {
	events := p.pendingFrame
	p.pendingFrame = nil
	return events
}
