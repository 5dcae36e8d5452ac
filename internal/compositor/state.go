// Package compositor binds internal/objects' per-client dispatch tables
// to this server's resources — surfaces, buffers, shells, seats, outputs
// — and owns the single-threaded event loop that services them (spec.md
// §5): one goroutine, one epoll instance, no suspension point besides
// epoll_wait itself, modeled on gio's app/internal/window/os_wayland.go
// and os_unix.go.
package compositor

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/output"
	"github.com/kestrelwm/kestrel/internal/protoerr"
	"github.com/kestrelwm/kestrel/internal/seat"
	"github.com/kestrelwm/kestrel/internal/surface"
	"github.com/kestrelwm/kestrel/internal/transport"
	"github.com/kestrelwm/kestrel/internal/wire"
	"github.com/kestrelwm/kestrel/internal/wm"
)

// ClientState is the per-client bookkeeping kept alongside the protocol
// object table: the connection, its registry bookkeeping, and the
// surfaces it owns, indexed for teardown (spec.md §3: "destruction
// recursively destroys all owned objects").
type ClientState struct {
	Conn    *transport.Client
	Objects *objects.Table

	boundState    *State
	registryBound bool
	registryId    ids.ObjectId

	Surfaces map[ids.ObjectId]*surface.Surface

	// Toplevels maps a surface's WindowId to the wire object ids of its
	// xdg_surface/xdg_toplevel resources, recorded at get_toplevel time so
	// the window-manager glue (internal/compositor's window_map.go) can
	// send configure events once the surface is tiled (spec.md §4.9).
	Toplevels map[ids.WindowId]toplevelBinding

	PointerId  ids.ObjectId
	KeyboardId ids.ObjectId
	TouchId    ids.ObjectId
}

// Global is one entry advertised over wl_registry.global (spec.md §4.2).
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
	Bind      func(st *State, c *ClientState, id ids.ObjectId, version uint32) error
}

// State is the whole compositor process's server-side state: the shared
// output layout, seats, and workspace model every client's surfaces are
// ultimately placed into and rendered from, plus the live per-client
// connections.
type State struct {
	Log zerolog.Logger

	Loop     *transport.EventLoop
	Listener *transport.Listener

	clients      map[ids.ClientId]*ClientState
	nextClientId ids.ClientId

	Outputs    *output.Layout
	Seats      []*seat.Seat
	Workspaces []*wm.Workspace

	// seatRouters parallels Seats, letting SwitchWorkspace re-run pointer
	// hit-testing and drop keyboard focus when the window it pointed at
	// is hidden by a workspace switch (spec.md §4.10).
	seatRouters []*SeatRouter

	// workspacesById indexes every workspace on every output by id, so a
	// wire request naming a workspace (or Output.ActiveWorkspace) can be
	// resolved directly (spec.md §4.8/§4.10: each output may carry more
	// than one workspace, exactly one of which is active).
	workspacesById map[ids.WorkspaceId]*wm.Workspace

	// managedWindows indexes every mapped toplevel by its surface's
	// WindowId, for click-to-focus/raise lookups (spec.md §4.9).
	managedWindows map[ids.WindowId]*wm.ManagedWindow

	globals []Global

	// surfaceOwners resolves a seat hit-test's WindowId back to the
	// client connection and wire object id that owns it, since
	// internal/seat works purely in WindowId space and knows nothing of
	// clients or the wire protocol.
	surfaceOwners map[ids.WindowId]surfaceOwner
}

type surfaceOwner struct {
	Client    *ClientState
	SurfaceId ids.ObjectId
}

// New creates an empty compositor state with its own epoll instance. It
// does not yet listen; call Listen then Run.
func New(log zerolog.Logger) (*State, error) {
	loop, err := transport.NewEventLoop()
	if err != nil {
		return nil, fmt.Errorf("compositor: new event loop: %w", err)
	}
	st := &State{
		Log:            log,
		Loop:           loop,
		clients:        make(map[ids.ClientId]*ClientState),
		Outputs:        output.NewLayout(),
		surfaceOwners:  make(map[ids.WindowId]surfaceOwner),
		workspacesById: make(map[ids.WorkspaceId]*wm.Workspace),
		managedWindows: make(map[ids.WindowId]*wm.ManagedWindow),
	}
	st.globals = BuildGlobals(st)
	return st, nil
}

// Listen binds the Wayland socket and registers it for accept events.
func (st *State) Listen() error {
	l, err := transport.Listen()
	if err != nil {
		return err
	}
	st.Listener = l
	return st.Loop.Add(l.Fd(), false, func(events uint32) error {
		return st.acceptClient()
	})
}

func (st *State) acceptClient() error {
	for {
		fd, cred, err := st.Listener.Accept()
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return fmt.Errorf("compositor: accept: %w", err)
		}
		id := st.nextClientId
		st.nextClientId++

		conn := transport.NewClient(id, fd, cred)
		cs := &ClientState{
			Conn:     conn,
			Objects:  objects.NewTable(id),
			boundState: st,
			Surfaces: make(map[ids.ObjectId]*surface.Surface),
			Toplevels: make(map[ids.WindowId]toplevelBinding),
		}
		cs.Objects.Insert(1, &WlDisplayInterface, 1, cs)
		st.clients[id] = cs

		log := st.Log
		if err := st.Loop.Add(fd, false, func(events uint32) error {
			return st.serviceClient(cs, events)
		}); err != nil {
			log.Error().Err(err).Msg("compositor: register client fd")
			cs.Conn.Close()
			delete(st.clients, id)
			continue
		}
		log.Info().Uint64("client", uint64(id)).Uint32("uid", cred.Uid).Msg("client connected")
	}
}

func (st *State) serviceClient(cs *ClientState, events uint32) error {
	if events&unix.EPOLLOUT != 0 {
		drained, err := cs.Conn.Flush()
		if err != nil {
			st.disconnect(cs, err)
			return nil
		}
		if drained {
			st.Loop.Modify(cs.Conn.Fd(), false)
		}
	}
	if events&unix.EPOLLIN == 0 {
		return nil
	}

	msgs, err := cs.Conn.ReadMessages()
	for _, m := range msgs {
		if derr := cs.Objects.Dispatch(ids.ObjectId(m.ObjectId), m.Opcode, m.Args, cs.Conn); derr != nil {
			st.handleDispatchError(cs, derr)
			return nil
		}
		if flushErr := st.flushClient(cs); flushErr != nil {
			st.disconnect(cs, flushErr)
			return nil
		}
	}
	if err != nil {
		if transport.IsEOF(err) {
			st.disconnect(cs, nil)
			return nil
		}
		st.disconnect(cs, err)
	}
	return nil
}

func (st *State) handleDispatchError(cs *ClientState, err error) {
	var perr *protoerr.Protocol
	if pe, ok := err.(*protoerr.Protocol); ok {
		perr = pe
	}
	if perr != nil {
		SendDisplayError(cs.Conn, perr.ObjectId, perr.Code, perr.Message)
		cs.Conn.Flush()
		st.Log.Warn().Uint32("object", perr.ObjectId).Str("message", perr.Message).Msg("protocol error, closing client")
	} else {
		st.Log.Warn().Err(err).Msg("dispatch error, closing client")
	}
	st.disconnect(cs, err)
}

// flushClient writes out whatever events handlers queued while
// dispatching, arming EPOLLOUT if the socket couldn't take it all.
func (st *State) flushClient(cs *ClientState) error {
	drained, err := cs.Conn.Flush()
	if err != nil {
		return err
	}
	if !drained {
		return st.Loop.Modify(cs.Conn.Fd(), true)
	}
	return nil
}

func (st *State) disconnect(cs *ClientState, cause error) {
	st.Loop.Remove(cs.Conn.Fd())
	cs.Objects.DestroyAll()
	cs.Conn.Close()
	delete(st.clients, cs.Objects.ClientId)
	if cause != nil {
		st.Log.Info().Uint64("client", uint64(cs.Objects.ClientId)).Err(cause).Msg("client disconnected")
	} else {
		st.Log.Info().Uint64("client", uint64(cs.Objects.ClientId)).Msg("client disconnected")
	}
}

// Run services the event loop until stop is closed. tick (16ms if it is
// under one millisecond) bounds how long a single epoll_wait round blocks, so a closed
// stop channel is noticed even with no socket activity; render ticks run
// off their own timerfds registered by AddRenderer.
func (st *State) Run(stop <-chan struct{}, tick time.Duration) error {
	ms := int(tick / time.Millisecond)
	if ms <= 0 {
		ms = 16
	}
	return st.Loop.Run(stop, ms)
}

// newSurface is a convenience constructor request handlers use to
// mint a new ids.WindowId-backed surface.Surface tied to this client.
func newSurface(cs *ClientState) *surface.Surface {
	return surface.New(ids.NewWindowId(), uint64(cs.Objects.ClientId))
}
