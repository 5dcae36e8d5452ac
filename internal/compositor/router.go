package compositor

import (
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/seat"
	"github.com/kestrelwm/kestrel/internal/wire"
)

// SeatRouter drives one internal/seat.Seat from raw input pipeline events
// and serializes the resulting focus/motion/key events to whichever
// client's wl_pointer/wl_keyboard/wl_touch resources currently hold
// focus (spec.md §4.6, §4.7). internal/seat itself only knows WindowId
// space; this is the bridge into the wire protocol.
type SeatRouter struct {
	st   *State
	Seat *seat.Seat
}

func NewSeatRouter(st *State, s *seat.Seat) *SeatRouter {
	r := &SeatRouter{st: st, Seat: s}
	if s.Keyboard != nil {
		s.Keyboard.OnRepeat = func(keycode uint32) {
			r.sendKey(keycode, true)
		}
	}
	return r
}

func (r *SeatRouter) ownerOf(w ids.WindowId) (surfaceOwner, bool) {
	o, ok := r.st.surfaceOwners[w]
	return o, ok
}

// PointerMotion feeds a relative motion sample and flushes the resulting
// enter/leave/motion frame.
func (r *SeatRouter) PointerMotion(dx, dy float64) {
	beforeFocus, hadFocus := r.Seat.Pointer.Focus, r.Seat.Pointer.HasFocus
	r.Seat.Pointer.Motion(dx, dy)
	r.flushPointerFrame(beforeFocus, hadFocus)
}

// PointerButton feeds a button press/release. A press on a focused
// surface also raises and activates its window (spec.md §4.10:
// click-to-focus).
func (r *SeatRouter) PointerButton(btn seat.Button, pressed bool) {
	before, had := r.Seat.Pointer.Focus, r.Seat.Pointer.HasFocus
	r.Seat.Pointer.Button(btn, pressed)
	if pressed && r.Seat.Pointer.HasFocus {
		target := r.Seat.Pointer.Focus
		r.st.raiseAndFocusWindow(target)
		if !r.Seat.Keyboard.HasFocus || r.Seat.Keyboard.Focus != target {
			r.KeyFocus(target, true)
		}
	}
	r.flushPointerFrame(before, had)
}

// PointerScroll feeds one scroll axis sample.
func (r *SeatRouter) PointerScroll(axis seat.Axis, value float64) {
	before, had := r.Seat.Pointer.Focus, r.Seat.Pointer.HasFocus
	r.Seat.Pointer.ScrollAxis(axis, value)
	r.flushPointerFrame(before, had)
}

// Retarget re-runs pointer hit-testing at the seat's current position and
// flushes any resulting enter/leave, without a new input sample. Used
// when the visible window set changes out from under the pointer — e.g.
// a workspace switch hides the window it was pointing at (spec.md
// §4.10).
func (r *SeatRouter) Retarget() {
	before, had := r.Seat.Pointer.Focus, r.Seat.Pointer.HasFocus
	r.Seat.Pointer.WarpTo(r.Seat.Pointer.Position)
	r.flushPointerFrame(before, had)
}

func (r *SeatRouter) flushPointerFrame(prevFocus ids.WindowId, hadFocus bool) {
	events := r.Seat.Pointer.Frame()
	if len(events) == 0 {
		return
	}
	var touchedOwners []surfaceOwner
	for _, ev := range events {
		target := r.Seat.Pointer.Focus
		if ev.Kind == seat.EventLeave {
			target = prevFocus
		}
		owner, ok := r.ownerOf(target)
		if !ok || owner.Client.PointerId == 0 {
			continue
		}
		pointerId := uint32(owner.Client.PointerId)
		c := owner.Client.Conn
		switch ev.Kind {
		case seat.EventEnter:
			w := wire.NewWriter(c)
			w.Uint(0).Object(uint32(owner.SurfaceId)).FixedArg(wire.FixedFromFloat64(float64(ev.Local.X))).FixedArg(wire.FixedFromFloat64(float64(ev.Local.Y)))
			c.QueueMessage(pointerId, evPointerEnter, w.Bytes())
		case seat.EventLeave:
			w := wire.NewWriter(c)
			w.Uint(0).Object(uint32(owner.SurfaceId))
			c.QueueMessage(pointerId, evPointerLeave, w.Bytes())
		case seat.EventMotion:
			w := wire.NewWriter(c)
			w.Uint(0).FixedArg(wire.FixedFromFloat64(float64(ev.Local.X))).FixedArg(wire.FixedFromFloat64(float64(ev.Local.Y)))
			c.QueueMessage(pointerId, evPointerMotion, w.Bytes())
		case seat.EventButton:
			w := wire.NewWriter(c)
			state := uint32(0)
			if ev.Pressed {
				state = 1
			}
			w.Uint(0).Uint(0).Uint(uint32(ev.Button)).Uint(state)
			c.QueueMessage(pointerId, evPointerButton, w.Bytes())
		case seat.EventAxis:
			w := wire.NewWriter(c)
			w.Uint(0).Uint(uint32(ev.Axis)).FixedArg(wire.FixedFromFloat64(ev.Value))
			c.QueueMessage(pointerId, evPointerAxis, w.Bytes())
		}
		touchedOwners = append(touchedOwners, owner)
	}
	for _, owner := range dedupOwners(touchedOwners) {
		owner.Client.Conn.QueueMessage(uint32(owner.Client.PointerId), evPointerFrame, nil)
	}
}

func dedupOwners(owners []surfaceOwner) []surfaceOwner {
	seen := make(map[ids.ObjectId]bool)
	var out []surfaceOwner
	for _, o := range owners {
		if seen[o.Client.PointerId] {
			continue
		}
		seen[o.Client.PointerId] = true
		out = append(out, o)
	}
	return out
}

// KeyFocus moves keyboard focus to w (or clears it if ok is false),
// sending wl_keyboard.enter/leave to the affected clients.
func (r *SeatRouter) KeyFocus(w ids.WindowId, ok bool) {
	kb := r.Seat.Keyboard
	if kb.HasFocus {
		if owner, found := r.ownerOf(kb.Focus); found && owner.Client.KeyboardId != 0 {
			c := owner.Client.Conn
			wr := wire.NewWriter(c)
			wr.Uint(0).Object(uint32(owner.SurfaceId))
			c.QueueMessage(uint32(owner.Client.KeyboardId), evKeyboardLeave, wr.Bytes())
		}
	}
	if !ok {
		kb.Leave()
		return
	}
	kb.Enter(w)
	if owner, found := r.ownerOf(w); found && owner.Client.KeyboardId != 0 {
		c := owner.Client.Conn
		wr := wire.NewWriter(c)
		wr.Uint(0).Object(uint32(owner.SurfaceId)).Array(nil)
		c.QueueMessage(uint32(owner.Client.KeyboardId), evKeyboardEnter, wr.Bytes())
	}
}

// Key feeds one evdev-derived key event (already converted to Wayland's
// evdev+8 space) through the keyboard state machine and forwards it to
// whichever client holds focus.
func (r *SeatRouter) Key(keycode uint32, pressed bool) {
	r.Seat.Keyboard.Key(keycode, pressed)
	r.sendKey(keycode, pressed)
}

func (r *SeatRouter) sendKey(keycode uint32, pressed bool) {
	kb := r.Seat.Keyboard
	if !kb.HasFocus {
		return
	}
	owner, ok := r.ownerOf(kb.Focus)
	if !ok || owner.Client.KeyboardId == 0 {
		return
	}
	c := owner.Client.Conn
	state := uint32(0)
	if pressed {
		state = 1
	}
	w := wire.NewWriter(c)
	w.Uint(0).Uint(0).Uint(keycode).Uint(state)
	c.QueueMessage(uint32(owner.Client.KeyboardId), evKeyboardKey, w.Bytes())

	dep, lat, lock, group := kb.State.Modifiers()
	wm := wire.NewWriter(c)
	wm.Uint(0).Uint(dep).Uint(lat).Uint(lock).Uint(group)
	c.QueueMessage(uint32(owner.Client.KeyboardId), evKeyboardModifiers, wm.Bytes())
}

// TouchDown/Motion/Up feed internal/seat.Touch and forward the
// resulting event to the owning client, each followed by a wl_touch.frame.
func (r *SeatRouter) TouchDown(id seat.TouchPointId, global [2]int) {
	ev, ok := r.Seat.Touch.Down(id, point(global))
	if !ok {
		return
	}
	owner, found := r.ownerOf(ev.Surface)
	if !found || owner.Client.TouchId == 0 {
		return
	}
	c := owner.Client.Conn
	w := wire.NewWriter(c)
	w.Uint(0).Uint(0).Object(uint32(owner.SurfaceId)).Int(int32(id)).
		FixedArg(wire.FixedFromFloat64(float64(ev.Local.X))).FixedArg(wire.FixedFromFloat64(float64(ev.Local.Y)))
	c.QueueMessage(uint32(owner.Client.TouchId), evTouchDown, w.Bytes())
	c.QueueMessage(uint32(owner.Client.TouchId), evTouchFrame, nil)
}

func (r *SeatRouter) TouchMotion(id seat.TouchPointId, global [2]int) {
	ev, ok := r.Seat.Touch.Motion(id, point(global))
	if !ok {
		return
	}
	owner, found := r.ownerOf(ev.Surface)
	if !found || owner.Client.TouchId == 0 {
		return
	}
	c := owner.Client.Conn
	w := wire.NewWriter(c)
	w.Uint(0).Int(int32(id)).
		FixedArg(wire.FixedFromFloat64(float64(ev.Local.X))).FixedArg(wire.FixedFromFloat64(float64(ev.Local.Y)))
	c.QueueMessage(uint32(owner.Client.TouchId), evTouchMotion, w.Bytes())
	c.QueueMessage(uint32(owner.Client.TouchId), evTouchFrame, nil)
}

func (r *SeatRouter) TouchUp(id seat.TouchPointId) {
	ev, ok := r.Seat.Touch.Up(id)
	if !ok {
		return
	}
	owner, found := r.ownerOf(ev.Surface)
	if !found || owner.Client.TouchId == 0 {
		return
	}
	c := owner.Client.Conn
	w := wire.NewWriter(c)
	w.Uint(0).Uint(0).Int(int32(id))
	c.QueueMessage(uint32(owner.Client.TouchId), evTouchUp, w.Bytes())
	c.QueueMessage(uint32(owner.Client.TouchId), evTouchFrame, nil)
}
