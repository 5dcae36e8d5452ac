package wm

import "image"

// Layout computes geometry for n tiled windows within bounds, per
// spec.md §4.9.
type Layout interface {
	Arrange(bounds image.Rectangle, n int) []image.Rectangle
}

// Floating leaves windows at whatever geometry they (or the user) last
// set; Arrange only proposes an initial cascade for newly mapped windows
// so they don't all stack exactly on top of each other.
type Floating struct {
	CascadeStep int // pixels offset per window; 0 uses the default of 24
}

func (f Floating) Arrange(bounds image.Rectangle, n int) []image.Rectangle {
	step := f.CascadeStep
	if step == 0 {
		step = 24
	}
	const defaultW, defaultH = 640, 480
	out := make([]image.Rectangle, n)
	for i := 0; i < n; i++ {
		off := image.Pt(step*i, step*i)
		min := bounds.Min.Add(off)
		out[i] = image.Rectangle{Min: min, Max: min.Add(image.Pt(defaultW, defaultH))}.Intersect(bounds)
	}
	return out
}

// MasterStack implements the classic tiling layout: one master window
// occupies a fraction of the width at full height; remaining windows
// share the rest of the width, stacked and evenly dividing the height
// (spec.md §4.9 property 9: "the partition of a MasterStack layout's
// region is exact — the stack windows' heights sum to the available
// height with no gap or overlap").
type MasterStack struct {
	// MasterFraction is the master column's share of the total width,
	// in (0, 1). Zero selects the default of 0.6.
	MasterFraction float64
}

func (m MasterStack) fraction() float64 {
	if m.MasterFraction <= 0 || m.MasterFraction >= 1 {
		return 0.6
	}
	return m.MasterFraction
}

func (m MasterStack) Arrange(bounds image.Rectangle, n int) []image.Rectangle {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []image.Rectangle{bounds}
	}

	masterWidth := int(float64(bounds.Dx()) * m.fraction())
	result := make([]image.Rectangle, n)
	result[0] = image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+masterWidth, bounds.Max.Y)

	stackCount := n - 1
	stackX0 := bounds.Min.X + masterWidth
	stackWidth := bounds.Max.X - stackX0
	baseHeight := bounds.Dy() / stackCount
	remainder := bounds.Dy() % stackCount

	y := bounds.Min.Y
	for i := 0; i < stackCount; i++ {
		h := baseHeight
		if i < remainder {
			h++
		}
		result[i+1] = image.Rect(stackX0, y, stackX0+stackWidth, y+h)
		y += h
	}
	return result
}
