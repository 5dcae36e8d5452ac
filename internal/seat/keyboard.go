package seat

import (
	"time"

	"github.com/kestrelwm/kestrel/internal/ids"
)

// KeymapState is the subset of an xkb keyboard state this package drives:
// feeding key events in, and reading back the modifier mask to send in
// wl_keyboard.modifiers. The concrete implementation lives in
// internal/xkb, injected here to keep this package free of cgo.
type KeymapState interface {
	UpdateKey(keycode uint32, pressed bool)
	Modifiers() (depressed, latched, locked, group uint32)
}

// RepeatTimer abstracts the repeating callback a real keyboard uses for
// key-repeat, so tests can drive it without waiting on a wall clock.
type RepeatTimer interface {
	// Schedule arranges for fire to be called once after delay, and then
	// repeatedly every interval until Stop. Scheduling again cancels any
	// previous schedule.
	Schedule(delay, interval time.Duration, fire func())
	Stop()
}

// Keyboard implements wl_keyboard's focus and key-repeat model (spec.md
// §4.7 property 5).
type Keyboard struct {
	State KeymapState
	Timer RepeatTimer

	RepeatRate  int // keys per second, 0 disables repeat
	RepeatDelay time.Duration

	Focus   ids.WindowId
	HasFocus bool

	pressed       map[uint32]bool
	repeatKeycode uint32
	repeating     bool

	OnRepeat func(keycode uint32)
}

func NewKeyboard(state KeymapState, timer RepeatTimer) *Keyboard {
	return &Keyboard{
		State:       state,
		Timer:       timer,
		RepeatRate:  25,
		RepeatDelay: 600 * time.Millisecond,
		pressed:     make(map[uint32]bool),
	}
}

// Enter sets keyboard focus to surf, per wl_keyboard.enter.
func (k *Keyboard) Enter(surf ids.WindowId) {
	k.Focus = surf
	k.HasFocus = true
}

// Leave clears focus and cancels any in-flight repeat, per
// wl_keyboard.leave — a surface losing focus must not keep repeating
// into whatever gains it next.
func (k *Keyboard) Leave() {
	k.HasFocus = false
	k.stopRepeat()
}

// Key processes one evdev-derived key event. keycode is already in
// Wayland's evdev+8 space (spec.md §4.6).
func (k *Keyboard) Key(keycode uint32, pressed bool) {
	k.pressed[keycode] = pressed
	k.State.UpdateKey(keycode, pressed)

	if !pressed {
		if k.repeating && k.repeatKeycode == keycode {
			k.stopRepeat()
		}
		return
	}
	if k.RepeatRate > 0 && k.isRepeatable(keycode) {
		k.startRepeat(keycode)
	}
}

// isRepeatable excludes pure modifier keys from repeating, matching
// typical keymap behavior (modifiers don't auto-repeat).
func (k *Keyboard) isRepeatable(keycode uint32) bool {
	switch keycode {
	case keyLeftCtrl, keyRightCtrl, keyLeftShift, keyRightShift,
		keyLeftAlt, keyRightAlt, keyLeftMeta, keyRightMeta, keyCapsLock:
		return false
	default:
		return true
	}
}

func (k *Keyboard) startRepeat(keycode uint32) {
	k.repeatKeycode = keycode
	k.repeating = true
	interval := time.Second / time.Duration(k.RepeatRate)
	k.Timer.Schedule(k.RepeatDelay, interval, func() {
		if k.repeating && k.OnRepeat != nil {
			k.OnRepeat(k.repeatKeycode)
		}
	})
}

func (k *Keyboard) stopRepeat() {
	k.repeating = false
	k.Timer.Stop()
}

// Keycodes used to identify modifier keys, in the evdev+8 space Key
// receives (linux/input-event-codes.h values plus 8).
const (
	keyLeftCtrl   = 29 + 8
	keyRightCtrl  = 97 + 8
	keyLeftShift  = 42 + 8
	keyRightShift = 54 + 8
	keyLeftAlt    = 56 + 8
	keyRightAlt   = 100 + 8
	keyLeftMeta   = 125 + 8
	keyRightMeta  = 126 + 8
	keyCapsLock   = 58 + 8
)

// ToWaylandKeycode converts an evdev keycode to the value wl_keyboard
// sends, per spec.md §4.6: "evdev keycode + 8".
func ToWaylandKeycode(evdevCode uint32) uint32 { return evdevCode + 8 }
