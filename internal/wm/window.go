// Package wm implements window/workspace mechanics layered on top of
// internal/surface and internal/xdgshell (spec.md §4.9): managed windows,
// per-output workspaces, tiling layouts, and focus/raise policy.
package wm

import (
	"image"

	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/surface"
	"github.com/kestrelwm/kestrel/internal/xdgshell"
)

// ManagedWindow is the window-manager's view of one mapped toplevel: its
// surface, its xdg-shell role, and the geometry the layout engine assigns
// it (spec.md §4.9).
type ManagedWindow struct {
	Id       ids.WindowId
	Surface  *surface.Surface
	Toplevel *xdgshell.Toplevel

	// Geometry is the window's position+size in the global output-layout
	// coordinate space (Relayout arranges it within its output's Bounds),
	// as last negotiated with the client.
	Geometry image.Rectangle

	Floating bool // opted out of the active tiling layout, if any
}

func NewManagedWindow(surf *surface.Surface, top *xdgshell.Toplevel) *ManagedWindow {
	return &ManagedWindow{Id: surf.Id, Surface: surf, Toplevel: top}
}

// Configure negotiates geometry with the client and records it.
func (w *ManagedWindow) Configure(geom image.Rectangle) uint32 {
	serial, width, height := w.Toplevel.Configure(geom.Dx(), geom.Dy(), w.Toplevel.State)
	w.Geometry = image.Rectangle{Min: geom.Min, Max: geom.Min.Add(image.Pt(width, height))}
	return serial
}
