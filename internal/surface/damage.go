package surface

import "image"

// Region is an unordered union of rectangles, used for both damage
// accumulation and opaque/input region tracking (spec.md §3, §4.4
// property 8: "damage accumulated within a pending state is monotonic —
// committing never discards previously submitted damage for that
// surface's next frame").
type Region struct {
	rects []image.Rectangle
}

// Add unions r into the region. Rectangles aren't merged or deduplicated;
// a renderer consuming the region coalesces them at draw time.
func (reg *Region) Add(r image.Rectangle) {
	if r.Empty() {
		return
	}
	reg.rects = append(reg.rects, r)
}

// Subtract removes r from the region by dropping any existing rectangle
// fully contained in r. Partial overlaps are left as-is (over-reporting
// is safe for both damage and opaque regions; under-reporting is not).
func (reg *Region) Subtract(r image.Rectangle) {
	out := reg.rects[:0]
	for _, existing := range reg.rects {
		if existing.Intersect(r) != existing {
			out = append(out, existing)
		}
	}
	reg.rects = out
}

// Rects returns the region's constituent rectangles.
func (reg *Region) Rects() []image.Rectangle { return reg.rects }

// Bounds returns the smallest rectangle containing the whole region.
func (reg *Region) Bounds() image.Rectangle {
	var b image.Rectangle
	for i, r := range reg.rects {
		if i == 0 {
			b = r
		} else {
			b = b.Union(r)
		}
	}
	return b
}

// Contains reports whether p falls inside any rectangle of the region,
// used for input-region hit testing (spec.md §4.7).
func (reg *Region) Contains(p image.Point) bool {
	for _, r := range reg.rects {
		if p.In(r) {
			return true
		}
	}
	return false
}

// Empty reports whether the region has no rectangles.
func (reg *Region) Empty() bool { return len(reg.rects) == 0 }
