package compositor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/kestrelwm/kestrel/internal/config"
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/logging"
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/seat"
	"github.com/kestrelwm/kestrel/internal/shm"
	"github.com/kestrelwm/kestrel/internal/surface"
	"github.com/kestrelwm/kestrel/internal/transport"
	"github.com/kestrelwm/kestrel/internal/wm"
	"github.com/kestrelwm/kestrel/internal/xdgshell"
)

// noopRepeatTimer discards schedule/stop, for tests that exercise keyboard
// focus transitions without a real event-loop timerfd.
type noopRepeatTimer struct{}

func (noopRepeatTimer) Schedule(delay, interval time.Duration, fire func()) {}
func (noopRepeatTimer) Stop()                                              {}

// newTestState builds a State with one output (and its sole workspace),
// but no listening socket, suitable for exercising the window-mapping and
// focus glue directly against Go values.
func newTestState(t *testing.T) *State {
	t.Helper()
	st, err := New(logging.New())
	require.NoError(t, err)
	st.AddOutput(config.OutputConfig{
		Name: "TEST-1", Width: 1024, Height: 768, RefreshMilliHz: 60000,
		Scale: 1, Layout: "master_stack", MasterFraction: 0.6,
	})
	return st
}

// newTestClientState wires a ClientState to one end of a socketpair, the
// same real-fd-backed transport.Client production code uses, so Conn.Flush
// has somewhere to write without a mock.
func newTestClientState(t *testing.T, st *State) (*ClientState, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	t.Cleanup(func() { unix.Close(fds[1]) })

	conn := transport.NewClient(ids.ClientId(1), fds[0], unix.Ucred{})
	cs := &ClientState{
		Conn:       conn,
		Objects:    objects.NewTable(ids.ClientId(1)),
		boundState: st,
		Surfaces:   make(map[ids.ObjectId]*surface.Surface),
		Toplevels:  make(map[ids.WindowId]toplevelBinding),
	}
	return cs, fds[1]
}

// mapTestToplevel drives a surface through the same sequence the wire
// handlers do: create surface, get_toplevel, attach a buffer, commit.
// objBase picks a disjoint block of object ids so multiple toplevels can
// be mapped against the same ClientState within one test.
func mapTestToplevel(t *testing.T, st *State, cs *ClientState, objBase ids.ObjectId) *surface.Surface {
	t.Helper()
	surf := surface.New(ids.NewWindowId(), 1)
	surfaceId, xdgSurfaceId, toplevelId := objBase, objBase+1, objBase+2
	cs.Surfaces[surfaceId] = surf
	st.surfaceOwners[surf.Id] = surfaceOwner{Client: cs, SurfaceId: surfaceId}

	xdg := xdgshell.New(surf, &xdgshell.SerialAllocator{})
	_, err := cs.Objects.Insert(xdgSurfaceId, nil, 1, xdg)
	require.NoError(t, err)

	top, err := xdgshell.GetToplevel(xdg)
	require.NoError(t, err)
	_, err = cs.Objects.Insert(toplevelId, nil, 1, top)
	require.NoError(t, err)

	cs.Toplevels[surf.Id] = toplevelBinding{XdgSurfaceId: xdgSurfaceId, ToplevelId: toplevelId}

	serial := xdg.SendConfigure()
	require.NoError(t, xdg.AckConfigure(serial))

	buf := surface.NewAttachedBuffer(&shm.Buffer{Width: 100, Height: 100, Stride: 400, Format: shm.FormatARGB8888}, nil)
	surf.Attach(buf, 0, 0)
	surf.Commit()

	st.mapToplevelIfNeeded(cs, surf)
	return surf
}

func TestMapToplevelIfNeededAddsWindowToDefaultWorkspace(t *testing.T) {
	st := newTestState(t)
	cs, _ := newTestClientState(t, st)

	surf := mapTestToplevel(t, st, cs, 10)

	w, ok := st.managedWindows[surf.Id]
	require.True(t, ok)
	require.Equal(t, surf.Id, w.Id)
	require.Len(t, st.defaultWorkspace().Windows(), 1)
}

func TestMapToplevelIfNeededIsIdempotent(t *testing.T) {
	st := newTestState(t)
	cs, _ := newTestClientState(t, st)

	surf := mapTestToplevel(t, st, cs, 10)
	st.mapToplevelIfNeeded(cs, surf)

	require.Len(t, st.defaultWorkspace().Windows(), 1)
}

func TestUnmapToplevelRemovesWindow(t *testing.T) {
	st := newTestState(t)
	cs, _ := newTestClientState(t, st)

	surf := mapTestToplevel(t, st, cs, 10)
	st.unmapToplevel(surf)

	_, ok := st.managedWindows[surf.Id]
	require.False(t, ok)
	require.Empty(t, st.defaultWorkspace().Windows())
}

func TestRaiseAndFocusWindowActivatesAndRaises(t *testing.T) {
	st := newTestState(t)
	cs, _ := newTestClientState(t, st)

	a := mapTestToplevel(t, st, cs, 10)
	b := mapTestToplevel(t, st, cs, 20)

	winA := st.managedWindows[a.Id]
	winB := st.managedWindows[b.Id]

	st.raiseAndFocusWindow(winA.Id)
	require.True(t, winA.Toplevel.State.Activated)

	ws := st.defaultWorkspace()
	require.Equal(t, winA, ws.Focused())

	st.raiseAndFocusWindow(winB.Id)
	require.True(t, winB.Toplevel.State.Activated)
	require.False(t, winA.Toplevel.State.Activated)
	require.Equal(t, winB, ws.Focused())
}

func TestAddOutputCreatesFloatingLayoutWhenConfigured(t *testing.T) {
	st, err := New(logging.New())
	require.NoError(t, err)
	o := st.AddOutput(config.OutputConfig{Name: "F-1", Width: 800, Height: 600, RefreshMilliHz: 60000, Scale: 1, Layout: "floating"})

	ws := st.activeWorkspaceForOutput(o)
	require.NotNil(t, ws)
	_, isFloating := ws.Layout.(wm.Floating)
	require.True(t, isFloating)
}

func TestSwitchWorkspaceHidesOldShowsNewAndDropsFocus(t *testing.T) {
	st := newTestState(t)
	cs, _ := newTestClientState(t, st)

	o := st.Outputs.Outputs()[0]
	first := st.activeWorkspaceForOutput(o)

	surf := mapTestToplevel(t, st, cs, 10)
	win := st.managedWindows[surf.Id]
	st.raiseAndFocusWindow(win.Id)

	router := NewSeatRouter(st, seat.New(ids.NewSeatId(), "test"))
	router.Seat.Pointer = seat.NewPointer(&windowmanagerHitTester{st: st})
	router.Seat.Keyboard = seat.NewKeyboard(nil, noopRepeatTimer{})
	router.KeyFocus(win.Id, true)
	st.seatRouters = append(st.seatRouters, router)

	second, err := st.AddWorkspace(o.Id, "second", wm.Floating{})
	require.NoError(t, err)
	require.NotEqual(t, first.Id, second.Id)
	require.Equal(t, first.Id, o.ActiveWorkspace)

	require.NoError(t, st.SwitchWorkspace(second.Id))
	require.Equal(t, second.Id, o.ActiveWorkspace)
	require.Same(t, second, st.activeWorkspaceForOutput(o))
	require.False(t, router.Seat.Keyboard.HasFocus)

	hit := &windowmanagerHitTester{st: st}
	_, _, ok := hit.HitTest(win.Geometry.Min)
	require.False(t, ok, "window on the now-hidden workspace must not hit-test")
}
