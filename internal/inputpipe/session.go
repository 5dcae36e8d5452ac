// Package inputpipe drives libinput's device-discovery/event loop and
// translates its events into seat operations (spec.md §4.6, §4.7).
package inputpipe

import "errors"

// ErrUnsupported is returned by a Session that has no privileged way to
// open evdev device nodes directly (spec.md §9's resolved Open Question:
// "session/seat device access (logind, direct) is out of scope for the
// core — stub it to return Unsupported rather than guessing a backend").
var ErrUnsupported = errors.New("inputpipe: no session backend available (requires logind or direct device access)")

// Session grants libinput restricted access to evdev device nodes,
// mirroring libinput's open_restricted/close_restricted callbacks. A real
// deployment wires this to logind's TakeDevice/ReleaseDevice D-Bus calls;
// that integration is a shell/session concern outside this module's
// scope, so the core only ships the interface plus a null implementation.
type Session interface {
	OpenRestricted(path string, flags int) (fd int, err error)
	CloseRestricted(fd int)
}

// NullSession always fails to open devices. It lets the compositor start
// and serve clients that don't need physical input (e.g. over a testing
// transport) without a real seat/session manager present.
type NullSession struct{}

func (NullSession) OpenRestricted(path string, flags int) (int, error) { return -1, ErrUnsupported }
func (NullSession) CloseRestricted(fd int)                             {}
