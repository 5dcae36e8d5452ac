//go:build linux && cgo

// Package xkb compiles XKB keymaps and tracks keyboard modifier state via
// libxkbcommon (spec.md §4.6). It mirrors seat.KeymapState so a *State
// can be plugged directly into a seat.Keyboard.
package xkb

import (
	"fmt"
	"unsafe"
)

/*
#cgo LDFLAGS: -lxkbcommon
#include <stdlib.h>
#include <xkbcommon/xkbcommon.h>
*/
import "C"

// RMLVO names the keymap components xkb_context_new_keymap_from_names
// compiles, per XKB's Rules+Model+Layout+Variant+Options convention.
type RMLVO struct {
	Rules, Model, Layout, Variant, Options string
}

// DefaultRMLVO falls back to a generic PC105/US layout when no
// configuration names a keymap (spec.md §4.6's resolved Open Question:
// "fall back to layout=us rather than failing the seat").
var DefaultRMLVO = RMLVO{Rules: "evdev", Model: "pc105", Layout: "us"}

// Keymap is a compiled XKB keymap, shared read-only across every State
// derived from it.
type Keymap struct {
	ctx *C.struct_xkb_context
	km  *C.struct_xkb_keymap
}

// Compile compiles names, falling back to DefaultRMLVO if names produces
// no usable keymap (e.g. an unknown layout string from client config).
func Compile(names RMLVO) (*Keymap, error) {
	km, err := compileOnce(names)
	if err == nil {
		return km, nil
	}
	if names == DefaultRMLVO {
		return nil, err
	}
	return compileOnce(DefaultRMLVO)
}

func compileOnce(names RMLVO) (*Keymap, error) {
	ctx := C.xkb_context_new(C.XKB_CONTEXT_NO_FLAGS)
	if ctx == nil {
		return nil, fmt.Errorf("xkb: xkb_context_new failed")
	}
	cRules := C.CString(names.Rules)
	cModel := C.CString(names.Model)
	cLayout := C.CString(names.Layout)
	cVariant := C.CString(names.Variant)
	cOptions := C.CString(names.Options)
	defer func() {
		C.free(unsafe.Pointer(cRules))
		C.free(unsafe.Pointer(cModel))
		C.free(unsafe.Pointer(cLayout))
		C.free(unsafe.Pointer(cVariant))
		C.free(unsafe.Pointer(cOptions))
	}()
	rmlvo := C.struct_xkb_rule_names{
		rules:   cRules,
		model:   cModel,
		layout:  cLayout,
		variant: cVariant,
		options: cOptions,
	}
	km := C.xkb_keymap_new_from_names(ctx, &rmlvo, C.XKB_KEYMAP_COMPILE_NO_FLAGS)
	if km == nil {
		C.xkb_context_unref(ctx)
		return nil, fmt.Errorf("xkb: failed to compile keymap %+v", names)
	}
	return &Keymap{ctx: ctx, km: km}, nil
}

// AsString serializes the keymap to its textual XKB representation, the
// form sent to clients via wl_keyboard.keymap (mmap'd into a memfd).
func (k *Keymap) AsString() string {
	cstr := C.xkb_keymap_get_as_string(k.km, C.XKB_KEYMAP_FORMAT_TEXT_V1)
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr)
}

func (k *Keymap) Destroy() {
	if k.km != nil {
		C.xkb_keymap_unref(k.km)
		k.km = nil
	}
	if k.ctx != nil {
		C.xkb_context_unref(k.ctx)
		k.ctx = nil
	}
}

// State tracks one client's live keyboard modifier state derived from a
// Keymap. It implements seat.KeymapState.
type State struct {
	km *Keymap
	st *C.struct_xkb_state
}

func (k *Keymap) NewState() *State {
	return &State{km: k, st: C.xkb_state_new(k.km)}
}

func (s *State) Destroy() {
	if s.st != nil {
		C.xkb_state_unref(s.st)
		s.st = nil
	}
}

// UpdateKey feeds one key transition into the state, per
// xkb_state_update_key (keycode is already in XKB space: evdev + 8, see
// seat.ToWaylandKeycode).
func (s *State) UpdateKey(keycode uint32, pressed bool) {
	dir := C.XKB_KEY_UP
	if pressed {
		dir = C.XKB_KEY_DOWN
	}
	C.xkb_state_update_key(s.st, C.xkb_keycode_t(keycode), C.enum_xkb_key_direction(dir))
}

// Modifiers serializes the effective modifier/group state for
// wl_keyboard.modifiers.
func (s *State) Modifiers() (depressed, latched, locked, group uint32) {
	depressed = uint32(C.xkb_state_serialize_mods(s.st, C.XKB_STATE_MODS_DEPRESSED))
	latched = uint32(C.xkb_state_serialize_mods(s.st, C.XKB_STATE_MODS_LATCHED))
	locked = uint32(C.xkb_state_serialize_mods(s.st, C.XKB_STATE_MODS_LOCKED))
	group = uint32(C.xkb_state_serialize_layout(s.st, C.XKB_STATE_LAYOUT_EFFECTIVE))
	return
}

// Utf8 returns the printable text (if any) a key press produces given the
// current modifier state.
func (s *State) Utf8(keycode uint32) string {
	buf := make([]byte, 16)
	n := C.xkb_state_key_get_utf8(s.st, C.xkb_keycode_t(keycode), (*C.char)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)))
	if int(n) >= len(buf) {
		buf = make([]byte, n+1)
		n = C.xkb_state_key_get_utf8(s.st, C.xkb_keycode_t(keycode), (*C.char)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)))
	}
	return string(buf[:n])
}
