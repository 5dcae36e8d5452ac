package compositor

import (
	"fmt"

	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/output"
	"github.com/kestrelwm/kestrel/internal/surface"
	"github.com/kestrelwm/kestrel/internal/wm"
	"github.com/kestrelwm/kestrel/internal/xdgshell"
)

// toplevelBinding records the wire object ids of a mapped toplevel's
// xdg_surface/xdg_toplevel resources, stashed at get_toplevel time so a
// later commit can find the client connection and objects a
// wm.ManagedWindow's configure needs to be written back as wire events
// (spec.md §4.9: the window manager itself knows nothing of clients or
// the wire protocol).
type toplevelBinding struct {
	XdgSurfaceId ids.ObjectId
	ToplevelId   ids.ObjectId
}

// mapToplevelIfNeeded maps surf into the default workspace (see
// defaultWorkspace) the first time it transitions from unmapped to mapped with a
// toplevel role (spec.md §4.4 "a surface with the xdg_toplevel role maps
// on its first buffer commit"). Later commits are a no-op here; their
// geometry effects flow through Workspace.Relayout when something else
// changes the stack.
func (st *State) mapToplevelIfNeeded(cs *ClientState, surf *surface.Surface) {
	if st.managedWindows == nil {
		return
	}
	if _, already := st.managedWindows[surf.Id]; already {
		return
	}
	if !surf.IsMapped() {
		return
	}
	binding, ok := cs.Toplevels[surf.Id]
	if !ok {
		return
	}
	topRes, ok := cs.Objects.Get(binding.ToplevelId)
	if !ok {
		return
	}
	top, ok := topRes.Data.(*xdgshell.Toplevel)
	if !ok {
		return
	}

	ws := st.defaultWorkspace()
	if ws == nil {
		return
	}

	w := wm.NewManagedWindow(surf, top)
	st.managedWindows[surf.Id] = w
	ws.AddWindow(w)
}

// unmapToplevel removes a destroyed or unmapped surface's window from
// whatever workspace holds it.
func (st *State) unmapToplevel(surf *surface.Surface) {
	w, ok := st.managedWindows[surf.Id]
	if !ok {
		return
	}
	delete(st.managedWindows, surf.Id)
	for _, ws := range st.Workspaces {
		for _, existing := range ws.Windows() {
			if existing == w {
				ws.RemoveWindow(w)
				return
			}
		}
	}
}

// defaultWorkspace returns the workspace new toplevels map into: the
// active workspace of the first output, since spec.md §4.8 only promises
// placeholder static output configuration, not a multi-output placement
// policy.
func (st *State) defaultWorkspace() *wm.Workspace {
	for _, o := range st.Outputs.Outputs() {
		if ws := st.activeWorkspaceForOutput(o); ws != nil {
			return ws
		}
	}
	return nil
}

// activeWorkspaceForOutput resolves o's currently active workspace
// (spec.md §3: `Output.active_workspace`), or nil if o has none yet.
func (st *State) activeWorkspaceForOutput(o *output.Output) *wm.Workspace {
	return st.workspacesById[o.ActiveWorkspace]
}

// addWorkspace creates and registers a new workspace on o, wiring its
// OnConfigure callback to push resulting geometry back onto the wire as
// xdg_surface/xdg_toplevel configure events (spec.md §4.9). The first
// workspace added to an output becomes its active one; later ones stay
// hidden until SwitchWorkspace selects them (spec.md §4.10).
func (st *State) addWorkspace(o *output.Output, name string, layout wm.Layout) *wm.Workspace {
	ws := wm.NewWorkspace(ids.NewWorkspaceId(), name, o, layout)
	ws.OnConfigure = func(w *wm.ManagedWindow, serial uint32) {
		st.sendWindowConfigure(w, serial)
	}
	st.workspacesById[ws.Id] = ws
	st.Workspaces = append(st.Workspaces, ws)
	o.AddWorkspace(ws.Id)
	return ws
}

// AddWorkspace creates an additional, initially hidden workspace on the
// output identified by outputId (spec.md §4.8: "each output has >=1
// workspace"). Use SwitchWorkspace to make it visible.
func (st *State) AddWorkspace(outputId ids.OutputId, name string, layout wm.Layout) (*wm.Workspace, error) {
	o, ok := st.Outputs.Get(outputId)
	if !ok {
		return nil, fmt.Errorf("compositor: add workspace: unknown output %s", outputId)
	}
	return st.addWorkspace(o, name, layout), nil
}

// SwitchWorkspace makes targetId the active workspace on its output,
// hiding the previously active workspace's windows and showing targetId's
// (spec.md §4.10: "workspace switch on an output hides the old
// workspace's windows ... and shows the new's"). Hiding is implemented by
// no longer rendering or hit-testing the previous workspace's windows;
// any seat whose pointer or keyboard focus lands on a window that just
// became hidden has that focus cleared here rather than waiting for the
// next input event.
func (st *State) SwitchWorkspace(targetId ids.WorkspaceId) error {
	target, ok := st.workspacesById[targetId]
	if !ok {
		return fmt.Errorf("compositor: switch workspace: unknown workspace %s", targetId)
	}
	o := target.Output
	if !o.HasWorkspace(targetId) {
		return fmt.Errorf("compositor: switch workspace: %s does not belong to output %s", targetId, o.Name)
	}
	if o.ActiveWorkspace == targetId {
		return nil
	}
	prev := st.workspacesById[o.ActiveWorkspace]
	o.ActiveWorkspace = targetId

	for _, router := range st.seatRouters {
		if prev != nil && router.Seat.Keyboard.HasFocus {
			if win, ok := st.managedWindows[router.Seat.Keyboard.Focus]; ok && st.workspaceOf(win) == prev {
				router.KeyFocus(win.Id, false)
			}
		}
		router.Retarget()
	}
	return nil
}

// raiseAndFocusWindow implements click-to-focus: raising w within its
// workspace and flipping the XDG Activated state on it (and off the
// previously active window), per spec.md §4.10 ("click-to-focus by
// default; focusing a window raises it within its workspace and emits
// XDG Activated").
func (st *State) raiseAndFocusWindow(w ids.WindowId) {
	win, ok := st.managedWindows[w]
	if !ok {
		return
	}
	ws := st.workspaceOf(win)
	if ws == nil {
		return
	}
	if prev := ws.Focused(); prev != nil && prev != win {
		prev.Toplevel.State.Activated = false
		st.sendActivationConfigure(prev)
	}
	ws.Raise(win)
	win.Toplevel.State.Activated = true
	st.sendActivationConfigure(win)
}

func (st *State) workspaceOf(w *wm.ManagedWindow) *wm.Workspace {
	for _, ws := range st.Workspaces {
		for _, existing := range ws.Windows() {
			if existing == w {
				return ws
			}
		}
	}
	return nil
}

// sendActivationConfigure re-sends a fresh configure pair reflecting w's
// current (possibly just-toggled) Activated state, independent of any
// geometry change.
func (st *State) sendActivationConfigure(w *wm.ManagedWindow) {
	owner, ok := st.surfaceOwners[w.Id]
	if !ok {
		return
	}
	binding, ok := owner.Client.Toplevels[w.Id]
	if !ok {
		return
	}
	xdgRes, ok := owner.Client.Objects.Get(binding.XdgSurfaceId)
	if !ok {
		return
	}
	xdg, ok := xdgRes.Data.(*xdgshell.XdgSurface)
	if !ok {
		return
	}
	serial := xdg.SendConfigure()
	SendToplevelConfigure(owner.Client.Conn, uint32(binding.ToplevelId), w.Geometry.Dx(), w.Geometry.Dy(), w.Toplevel.State)
	SendXdgSurfaceConfigure(owner.Client.Conn, uint32(binding.XdgSurfaceId), serial)
}

// sendWindowConfigure locates w's owning client connection and wire
// object ids and writes the paired xdg_toplevel.configure /
// xdg_surface.configure events.
func (st *State) sendWindowConfigure(w *wm.ManagedWindow, serial uint32) {
	owner, ok := st.surfaceOwners[w.Id]
	if !ok {
		return
	}
	binding, ok := owner.Client.Toplevels[w.Id]
	if !ok {
		return
	}
	SendToplevelConfigure(owner.Client.Conn, uint32(binding.ToplevelId), w.Geometry.Dx(), w.Geometry.Dy(), w.Toplevel.State)
	SendXdgSurfaceConfigure(owner.Client.Conn, uint32(binding.XdgSurfaceId), serial)
}
