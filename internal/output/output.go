// Package output models wl_output's mode/scale/transform advertisement
// and the compositor's global 2D output layout (spec.md §4.9).
package output

import (
	"image"

	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/surface"
)

// Mode is one supported resolution/refresh pair, per wl_output.mode.
type Mode struct {
	Width, Height int
	RefreshMilliHz int
	Preferred      bool
}

// Output is one physical display, placed in the compositor's global,
// non-overlapping 2D layout space.
type Output struct {
	Id   ids.OutputId
	Name string

	Modes        []Mode
	CurrentMode  Mode
	Scale        int
	Transform    surface.Transform

	// Position is this output's top-left corner in the global layout
	// space; CurrentMode combined with Position gives its full
	// placement rectangle.
	Position image.Point

	// Workspaces lists every workspace assigned to this output, and
	// ActiveWorkspace names the one currently shown; the rest exist but
	// are hidden (spec.md §3: `Output { ..., workspaces, active_workspace
	// }`; §4.10: "exactly one workspace per output is active"). The
	// wm.Workspace values themselves live in internal/wm, which already
	// imports this package, so Output tracks them by id to avoid a
	// cycle; internal/compositor resolves ids to workspaces.
	Workspaces      []ids.WorkspaceId
	ActiveWorkspace ids.WorkspaceId
}

func New(id ids.OutputId, name string) *Output {
	return &Output{Id: id, Name: name, Scale: 1}
}

// AddWorkspace registers id as belonging to this output. The first
// workspace added becomes the active one.
func (o *Output) AddWorkspace(id ids.WorkspaceId) {
	o.Workspaces = append(o.Workspaces, id)
	if o.ActiveWorkspace == (ids.WorkspaceId{}) {
		o.ActiveWorkspace = id
	}
}

// HasWorkspace reports whether id belongs to this output.
func (o *Output) HasWorkspace(id ids.WorkspaceId) bool {
	for _, w := range o.Workspaces {
		if w == id {
			return true
		}
	}
	return false
}

// Bounds returns the output's rectangle in the global layout space.
func (o *Output) Bounds() image.Rectangle {
	return image.Rectangle{
		Min: o.Position,
		Max: o.Position.Add(image.Pt(o.CurrentMode.Width, o.CurrentMode.Height)),
	}
}

// SetMode selects the active mode, validating it's one of Modes.
func (o *Output) SetMode(m Mode) bool {
	for _, candidate := range o.Modes {
		if candidate == m {
			o.CurrentMode = m
			return true
		}
	}
	return false
}

// Layout arranges outputs left-to-right in insertion order, starting at
// the origin — the simplest placement policy that keeps every output's
// bounds disjoint (spec.md §4.9: "outputs occupy disjoint regions of a
// shared global space").
type Layout struct {
	outputs []*Output
}

func NewLayout() *Layout { return &Layout{} }

// Add places o immediately to the right of the current layout's
// rightmost edge.
func (l *Layout) Add(o *Output) {
	x := 0
	for _, existing := range l.outputs {
		if r := existing.Bounds().Max.X; r > x {
			x = r
		}
	}
	o.Position = image.Pt(x, 0)
	l.outputs = append(l.outputs, o)
}

func (l *Layout) Remove(o *Output) {
	for i, existing := range l.outputs {
		if existing == o {
			l.outputs = append(l.outputs[:i], l.outputs[i+1:]...)
			return
		}
	}
}

func (l *Layout) Outputs() []*Output { return l.outputs }

// Get returns the output with the given id, if any.
func (l *Layout) Get(id ids.OutputId) (*Output, bool) {
	for _, o := range l.outputs {
		if o.Id == id {
			return o, true
		}
	}
	return nil, false
}

// At returns the output whose bounds contain p, if any — used to resolve
// which output a window or pointer position belongs to.
func (l *Layout) At(p image.Point) (*Output, bool) {
	for _, o := range l.outputs {
		if p.In(o.Bounds()) {
			return o, true
		}
	}
	return nil, false
}

// Bounds returns the union of every output's rectangle, the full extent
// of the global layout space.
func (l *Layout) Bounds() image.Rectangle {
	var b image.Rectangle
	for i, o := range l.outputs {
		if i == 0 {
			b = o.Bounds()
		} else {
			b = b.Union(o.Bounds())
		}
	}
	return b
}
