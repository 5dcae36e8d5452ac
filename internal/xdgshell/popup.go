package xdgshell

import (
	"image"

	"github.com/kestrelwm/kestrel/internal/surface"
)

// Popup implements xdg_popup: a transient surface positioned relative to
// its parent via a Positioner (spec.md §4.4).
type Popup struct {
	Xdg    *XdgSurface
	Parent *XdgSurface
	Pos    Positioner

	Geometry image.Rectangle
	Grabbed  bool
}

// GetPopup assigns the popup role to xdg.Surface, computing its initial
// geometry against the parent's output bounds.
func GetPopup(xdg *XdgSurface, parent *XdgSurface, pos Positioner, outputBounds image.Rectangle) (*Popup, error) {
	p := &Popup{Xdg: xdg, Parent: parent, Pos: pos}
	if err := xdg.Surface.SetRole(surface.RolePopup, p); err != nil {
		return nil, err
	}
	xdg.Role = p
	p.Geometry = pos.Compute(outputBounds)
	return p, nil
}

// Reposition recomputes geometry from a new positioner, per
// xdg_popup.reposition, returning the configure serial to send.
func (p *Popup) Reposition(pos Positioner, outputBounds image.Rectangle) uint32 {
	p.Pos = pos
	p.Geometry = pos.Compute(outputBounds)
	return p.Xdg.SendConfigure()
}

// Grab marks the popup as owning an implicit pointer/keyboard grab; the
// compositor is responsible for dismissing the popup when an event
// outside its grab occurs (spec.md §4.4, §4.7).
func (p *Popup) Grab() { p.Grabbed = true }
