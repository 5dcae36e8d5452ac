//go:build !(linux && cgo)

package xkb

import "errors"

// ErrUnsupported is returned on platforms or builds (CGO_ENABLED=0) where
// libxkbcommon can't be linked. The seat still functions with no keymap
// compiled; UpdateKey/Modifiers on a nil *State are no-ops.
var ErrUnsupported = errors.New("xkb: libxkbcommon support not compiled in")

type RMLVO struct {
	Rules, Model, Layout, Variant, Options string
}

var DefaultRMLVO = RMLVO{Rules: "evdev", Model: "pc105", Layout: "us"}

type Keymap struct{}

func Compile(RMLVO) (*Keymap, error) { return nil, ErrUnsupported }

func (k *Keymap) AsString() string { return "" }
func (k *Keymap) Destroy()         {}
func (k *Keymap) NewState() *State { return &State{} }

type State struct{}

func (s *State) Destroy()                     {}
func (s *State) UpdateKey(keycode uint32, pressed bool) {}
func (s *State) Modifiers() (uint32, uint32, uint32, uint32) { return 0, 0, 0, 0 }
func (s *State) Utf8(keycode uint32) string   { return "" }
