package wm

import (
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/output"
)

// Workspace is a named collection of windows assigned to one output, laid
// out by a Layout and given focus/raise ordering (spec.md §4.9).
type Workspace struct {
	Id     ids.WorkspaceId
	Name   string
	Output *output.Output

	Layout Layout

	// windows is the stacking order, back to front; the last element is
	// topmost/raised.
	windows []*ManagedWindow
	focused *ManagedWindow

	// OnConfigure, if set, is called with the serial returned by each
	// tiled window's Configure as Relayout applies it, so the wire-level
	// glue above this package can send the matching xdg_surface/
	// xdg_toplevel configure events (spec.md §4.9's layout engine has no
	// wire-protocol awareness of its own).
	OnConfigure func(w *ManagedWindow, serial uint32)
}

func NewWorkspace(id ids.WorkspaceId, name string, out *output.Output, layout Layout) *Workspace {
	return &Workspace{Id: id, Name: name, Output: out, Layout: layout}
}

// AddWindow appends w as the new topmost window and focuses it, then
// recomputes layout for every non-floating window.
func (ws *Workspace) AddWindow(w *ManagedWindow) {
	ws.windows = append(ws.windows, w)
	ws.focused = w
	ws.Relayout()
}

// RemoveWindow drops w from the stack, promoting the new topmost window
// to focus if w was focused.
func (ws *Workspace) RemoveWindow(w *ManagedWindow) {
	for i, existing := range ws.windows {
		if existing == w {
			ws.windows = append(ws.windows[:i], ws.windows[i+1:]...)
			break
		}
	}
	if ws.focused == w {
		ws.focused = nil
		if n := len(ws.windows); n > 0 {
			ws.focused = ws.windows[n-1]
		}
	}
	ws.Relayout()
}

// Raise moves w to the top of the stacking order and focuses it.
func (ws *Workspace) Raise(w *ManagedWindow) {
	for i, existing := range ws.windows {
		if existing == w {
			ws.windows = append(ws.windows[:i], ws.windows[i+1:]...)
			break
		}
	}
	ws.windows = append(ws.windows, w)
	ws.focused = w
}

// Focused returns the currently focused window, or nil if the workspace
// is empty.
func (ws *Workspace) Focused() *ManagedWindow { return ws.focused }

// Windows returns the stacking order, back to front.
func (ws *Workspace) Windows() []*ManagedWindow { return ws.windows }

// Relayout recomputes and applies geometry for every tiled (non-floating)
// window via the workspace's active Layout.
func (ws *Workspace) Relayout() {
	if ws.Layout == nil || ws.Output == nil {
		return
	}
	var tiled []*ManagedWindow
	for _, w := range ws.windows {
		if !w.Floating {
			tiled = append(tiled, w)
		}
	}
	geoms := ws.Layout.Arrange(ws.Output.Bounds(), len(tiled))
	for i, w := range tiled {
		serial := w.Configure(geoms[i])
		if ws.OnConfigure != nil {
			ws.OnConfigure(w, serial)
		}
	}
}
