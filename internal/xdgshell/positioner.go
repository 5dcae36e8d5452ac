package xdgshell

import "image"

// Anchor mirrors xdg_positioner.anchor.
type Anchor int

const (
	AnchorNone Anchor = iota
	AnchorTop
	AnchorBottom
	AnchorLeft
	AnchorRight
	AnchorTopLeft
	AnchorBottomLeft
	AnchorTopRight
	AnchorBottomRight
)

// Gravity mirrors xdg_positioner.gravity — the direction the popup
// expands away from its anchor point.
type Gravity int

const (
	GravityNone Gravity = iota
	GravityTop
	GravityBottom
	GravityLeft
	GravityRight
	GravityTopLeft
	GravityBottomLeft
	GravityTopRight
	GravityBottomRight
)

// ConstraintAdjustment mirrors xdg_positioner.constraint_adjustment, a
// bitmask of axes the compositor may flip/slide/resize along to keep the
// popup on-screen.
type ConstraintAdjustment uint32

const (
	ConstraintAdjustSlideX ConstraintAdjustment = 1 << iota
	ConstraintAdjustSlideY
	ConstraintAdjustFlipX
	ConstraintAdjustFlipY
	ConstraintAdjustResizeX
	ConstraintAdjustResizeY
)

// Positioner accumulates xdg_positioner state before being consumed by
// xdg_surface.get_popup (spec.md §4.4).
type Positioner struct {
	Size       image.Point
	AnchorRect image.Rectangle
	Anchor     Anchor
	Gravity    Gravity
	Adjustment ConstraintAdjustment
	Offset     image.Point
}

// anchorPoint returns the point on AnchorRect that Anchor selects.
func (p *Positioner) anchorPoint() image.Point {
	r := p.AnchorRect
	switch p.Anchor {
	case AnchorTop:
		return image.Pt((r.Min.X+r.Max.X)/2, r.Min.Y)
	case AnchorBottom:
		return image.Pt((r.Min.X+r.Max.X)/2, r.Max.Y)
	case AnchorLeft:
		return image.Pt(r.Min.X, (r.Min.Y+r.Max.Y)/2)
	case AnchorRight:
		return image.Pt(r.Max.X, (r.Min.Y+r.Max.Y)/2)
	case AnchorTopLeft:
		return r.Min
	case AnchorBottomLeft:
		return image.Pt(r.Min.X, r.Max.Y)
	case AnchorTopRight:
		return image.Pt(r.Max.X, r.Min.Y)
	case AnchorBottomRight:
		return r.Max
	default:
		return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	}
}

// gravityOrigin returns the popup's top-left corner relative to its
// anchor point, before applying the offset, for Gravity.
func (p *Positioner) gravityOrigin(anchor image.Point) image.Point {
	w, h := p.Size.X, p.Size.Y
	switch p.Gravity {
	case GravityTop:
		return image.Pt(anchor.X-w/2, anchor.Y-h)
	case GravityBottom:
		return image.Pt(anchor.X-w/2, anchor.Y)
	case GravityLeft:
		return image.Pt(anchor.X-w, anchor.Y-h/2)
	case GravityRight:
		return image.Pt(anchor.X, anchor.Y-h/2)
	case GravityTopLeft:
		return image.Pt(anchor.X-w, anchor.Y-h)
	case GravityBottomLeft:
		return image.Pt(anchor.X-w, anchor.Y)
	case GravityTopRight:
		return image.Pt(anchor.X, anchor.Y-h)
	case GravityBottomRight:
		return anchor
	default:
		return image.Pt(anchor.X-w/2, anchor.Y-h/2)
	}
}

// Compute returns the popup's geometry in the coordinate space of
// constraint (typically the parent's output), sliding the result back
// on-screen when ConstraintAdjustSlideX/Y is set and it would otherwise
// overflow.
func (p *Positioner) Compute(constraint image.Rectangle) image.Rectangle {
	origin := p.gravityOrigin(p.anchorPoint()).Add(p.Offset)
	geom := image.Rectangle{Min: origin, Max: origin.Add(p.Size)}

	if p.Adjustment&ConstraintAdjustSlideX != 0 {
		if geom.Min.X < constraint.Min.X {
			geom = geom.Add(image.Pt(constraint.Min.X-geom.Min.X, 0))
		}
		if geom.Max.X > constraint.Max.X {
			geom = geom.Add(image.Pt(constraint.Max.X-geom.Max.X, 0))
		}
	}
	if p.Adjustment&ConstraintAdjustSlideY != 0 {
		if geom.Min.Y < constraint.Min.Y {
			geom = geom.Add(image.Pt(0, constraint.Min.Y-geom.Min.Y))
		}
		if geom.Max.Y > constraint.Max.Y {
			geom = geom.Add(image.Pt(0, constraint.Max.Y-geom.Max.Y))
		}
	}
	return geom
}
