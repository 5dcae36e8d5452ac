package seat

import (
	"image"

	"github.com/kestrelwm/kestrel/internal/ids"
)

// TouchPointId identifies one active contact within a touch sequence, per
// wl_touch.down's id parameter.
type TouchPointId int32

type touchPoint struct {
	Surface ids.WindowId
	Pos     image.Point
	// Origin is the surface's global origin at touch-down (pos - local),
	// used to translate later motion into surface-local coordinates.
	Origin image.Point
}

// Touch implements wl_touch's per-point down/motion/up/cancel tracking
// (spec.md §4.7).
type Touch struct {
	Hit    HitTester
	points map[TouchPointId]*touchPoint
}

func NewTouch(hit HitTester) *Touch {
	return &Touch{Hit: hit, points: make(map[TouchPointId]*touchPoint)}
}

// TouchEvent mirrors one queued wl_touch event.
type TouchEvent struct {
	Kind    TouchEventKind
	Id      TouchPointId
	Surface ids.WindowId
	Local   image.Point
}

type TouchEventKind int

const (
	TouchDown TouchEventKind = iota
	TouchUp
	TouchMotion
)

// Down starts tracking a new contact point at global position pos,
// hit-testing it against the surface tree exactly once at touch-down
// (subsequent motion stays pinned to that surface, matching wl_touch's
// semantics — a touch point doesn't change focus mid-gesture).
func (t *Touch) Down(id TouchPointId, pos image.Point) (TouchEvent, bool) {
	surf, local, ok := t.Hit.HitTest(pos)
	if !ok {
		return TouchEvent{}, false
	}
	t.points[id] = &touchPoint{Surface: surf, Pos: pos, Origin: pos.Sub(local)}
	return TouchEvent{Kind: TouchDown, Id: id, Surface: surf, Local: local}, true
}

// Motion updates an existing contact point's position, reporting its
// location in the coordinate space of the surface it went down on.
func (t *Touch) Motion(id TouchPointId, pos image.Point) (TouchEvent, bool) {
	pt, ok := t.points[id]
	if !ok {
		return TouchEvent{}, false
	}
	pt.Pos = pos
	return TouchEvent{Kind: TouchMotion, Id: id, Surface: pt.Surface, Local: pos.Sub(pt.Origin)}, true
}

// Up ends a contact point.
func (t *Touch) Up(id TouchPointId) (TouchEvent, bool) {
	pt, ok := t.points[id]
	if !ok {
		return TouchEvent{}, false
	}
	delete(t.points, id)
	return TouchEvent{Kind: TouchUp, Id: id, Surface: pt.Surface}, true
}

// Cancel discards every in-flight contact point without emitting up
// events, per wl_touch.cancel (used when the compositor takes over the
// gesture, e.g. for a window-manager swipe).
func (t *Touch) Cancel() {
	t.points = make(map[TouchPointId]*touchPoint)
}

// ActivePoints reports how many contacts are currently down.
func (t *Touch) ActivePoints() int { return len(t.points) }
