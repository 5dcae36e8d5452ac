package xdgshell

import (
	"github.com/kestrelwm/kestrel/internal/surface"
)

// ToplevelState is the subset of xdg_toplevel.configure's state flags
// relevant to layout and decoration (spec.md §4.4, §4.9).
type ToplevelState struct {
	Maximized  bool
	Fullscreen bool
	Resizing   bool
	Activated  bool
}

// Toplevel implements xdg_toplevel: an application window with
// title/app_id, min/max size constraints, and the maximize/fullscreen/
// move/resize request set.
type Toplevel struct {
	Xdg *XdgSurface

	Title string
	AppId string

	MinWidth, MinHeight int
	MaxWidth, MaxHeight int

	State ToplevelState

	Parent *Toplevel // set_parent, for transient/modal windows
}

// GetToplevel assigns the toplevel role to surf (spec.md §4.4: "A surface
// acquires a role exactly once").
func GetToplevel(xdg *XdgSurface) (*Toplevel, error) {
	t := &Toplevel{Xdg: xdg}
	if err := xdg.Surface.SetRole(surface.RoleToplevel, t); err != nil {
		return nil, err
	}
	xdg.Role = t
	return t, nil
}

func (t *Toplevel) SetTitle(title string) { t.Title = title }
func (t *Toplevel) SetAppId(appId string) { t.AppId = appId }

func (t *Toplevel) SetMinSize(w, h int) { t.MinWidth, t.MinHeight = w, h }
func (t *Toplevel) SetMaxSize(w, h int) { t.MaxWidth, t.MaxHeight = w, h }

func (t *Toplevel) SetParent(parent *Toplevel) { t.Parent = parent }

// ClampSize applies the toplevel's min/max constraints to a proposed
// size, per xdg_toplevel's size-negotiation rules. A zero bound means
// unconstrained in that dimension.
func (t *Toplevel) ClampSize(w, h int) (int, int) {
	if t.MinWidth > 0 && w < t.MinWidth {
		w = t.MinWidth
	}
	if t.MaxWidth > 0 && w > t.MaxWidth {
		w = t.MaxWidth
	}
	if t.MinHeight > 0 && h < t.MinHeight {
		h = t.MinHeight
	}
	if t.MaxHeight > 0 && h > t.MaxHeight {
		h = t.MaxHeight
	}
	return w, h
}

// Configure issues a new configure event with the given negotiated size
// and state, returning the serial for the caller to write into the wire
// event.
func (t *Toplevel) Configure(width, height int, state ToplevelState) (serial uint32, w, h int) {
	w, h = t.ClampSize(width, height)
	t.State = state
	return t.Xdg.SendConfigure(), w, h
}
