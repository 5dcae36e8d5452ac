package compositor

import (
	"image"

	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/surface"
	"github.com/kestrelwm/kestrel/internal/transport"
	"github.com/kestrelwm/kestrel/internal/wire"
	"github.com/kestrelwm/kestrel/internal/xdgshell"
)

const (
	reqWmBaseDestroy          uint16 = 0
	reqWmBaseCreatePositioner uint16 = 1
	reqWmBaseGetXdgSurface    uint16 = 2
	reqWmBasePong             uint16 = 3
)

// WlXdgWmBaseInterface implements xdg_wm_base, the factory for
// xdg_surface and xdg_positioner (spec.md §4.5).
var WlXdgWmBaseInterface = objects.Interface{
	Name:    "xdg_wm_base",
	Version: 5,
	Requests: []objects.RequestRequestSpec{
		reqWmBaseDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqWmBaseCreatePositioner: {
			Name:      "create_positioner",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleWmBaseCreatePositioner,
		},
		reqWmBaseGetXdgSurface: {
			Name:      "get_xdg_surface",
			Signature: wire.Signature{{Kind: wire.KindNewId}, {Kind: wire.KindObject}},
			Handle:    handleWmBaseGetXdgSurface,
		},
		reqWmBasePong: {
			Name:      "pong",
			Signature: wire.Signature{{Kind: wire.KindUint}},
			Handle:    func(ctx *objects.Context, r *wire.Reader) error { _, err := r.Uint(); return err },
		},
	},
}

func handleWmBaseCreatePositioner(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	_, err = ctx.Client.Insert(ids.ObjectId(id), &XdgPositionerInterface, ctx.Resource.Version, &xdgshell.Positioner{})
	return err
}

func handleWmBaseGetXdgSurface(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	surfaceId, err := r.Object(false)
	if err != nil {
		return err
	}
	surfRes, ok := ctx.Client.Get(ids.ObjectId(surfaceId))
	if !ok {
		return protoErrNoSuchObject(surfaceId)
	}
	surf := surfRes.Data.(*surface.Surface)
	serials := ctx.Resource.Data.(*xdgshell.SerialAllocator)
	xdg := xdgshell.New(surf, serials)
	_, err = ctx.Client.Insert(ids.ObjectId(id), &XdgSurfaceInterface, ctx.Resource.Version, xdg)
	return err
}

const evWmBasePing uint16 = 0

// SendWmBasePing asks the client to confirm liveness (spec.md §4.5); an
// unanswered ping within the collaborator's timeout policy is grounds to
// consider the client unresponsive.
func SendWmBasePing(c *transport.Client, wmBaseId uint32, serial uint32) {
	w := wire.NewWriter(c)
	w.Uint(serial)
	c.QueueMessage(wmBaseId, evWmBasePing, w.Bytes())
}

const (
	reqPositionerDestroy                  uint16 = 0
	reqPositionerSetSize                  uint16 = 1
	reqPositionerSetAnchorRect            uint16 = 2
	reqPositionerSetAnchor                uint16 = 3
	reqPositionerSetGravity               uint16 = 4
	reqPositionerSetConstraintAdjustment  uint16 = 5
	reqPositionerSetOffset                uint16 = 6
)

// XdgPositionerInterface accumulates xdg_positioner state (spec.md §4.5
// "a positioner (anchor rect, gravity, constraint adjustments)").
var XdgPositionerInterface = objects.Interface{
	Name:    "xdg_positioner",
	Version: 5,
	Requests: []objects.RequestRequestSpec{
		reqPositionerDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqPositionerSetSize: {
			Name:      "set_size",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				w, h, err := int2(r)
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Positioner).Size = image.Pt(int(w), int(h))
				return nil
			},
		},
		reqPositionerSetAnchorRect: {
			Name:      "set_anchor_rect",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				x, y, w, h, err := rectArgs(r)
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Positioner).AnchorRect = rectFromXYWH(x, y, w, h)
				return nil
			},
		},
		reqPositionerSetAnchor: {
			Name:      "set_anchor",
			Signature: wire.Signature{{Kind: wire.KindUint}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				v, err := r.Uint()
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Positioner).Anchor = xdgshell.Anchor(v)
				return nil
			},
		},
		reqPositionerSetGravity: {
			Name:      "set_gravity",
			Signature: wire.Signature{{Kind: wire.KindUint}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				v, err := r.Uint()
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Positioner).Gravity = xdgshell.Gravity(v)
				return nil
			},
		},
		reqPositionerSetConstraintAdjustment: {
			Name:      "set_constraint_adjustment",
			Signature: wire.Signature{{Kind: wire.KindUint}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				v, err := r.Uint()
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Positioner).Adjustment = xdgshell.ConstraintAdjustment(v)
				return nil
			},
		},
		reqPositionerSetOffset: {
			Name:      "set_offset",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				x, y, err := int2(r)
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Positioner).Offset = image.Pt(int(x), int(y))
				return nil
			},
		},
	},
}

func int2(r *wire.Reader) (int32, int32, error) {
	a, err := r.Int()
	if err != nil {
		return 0, 0, err
	}
	b, err := r.Int()
	return a, b, err
}

const (
	reqXdgSurfaceDestroy            uint16 = 0
	reqXdgSurfaceGetToplevel        uint16 = 1
	reqXdgSurfaceGetPopup           uint16 = 2
	reqXdgSurfaceSetWindowGeometry  uint16 = 3
	reqXdgSurfaceAckConfigure       uint16 = 4
)

const evXdgSurfaceConfigure uint16 = 0

// XdgSurfaceInterface wraps xdgshell.XdgSurface's configure/ack state
// machine (spec.md §4.5).
var XdgSurfaceInterface = objects.Interface{
	Name:    "xdg_surface",
	Version: 5,
	Requests: []objects.RequestRequestSpec{
		reqXdgSurfaceDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqXdgSurfaceGetToplevel: {
			Name:      "get_toplevel",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleXdgSurfaceGetToplevel,
		},
		reqXdgSurfaceGetPopup: {
			Name:      "get_popup",
			Signature: wire.Signature{{Kind: wire.KindNewId}, {Kind: wire.KindObject, Nullable: true}, {Kind: wire.KindObject}},
			Handle:    handleXdgSurfaceGetPopup,
		},
		reqXdgSurfaceSetWindowGeometry: {
			Name:      "set_window_geometry",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				_, _, _, _, err := rectArgs(r)
				return err
			},
		},
		reqXdgSurfaceAckConfigure: {
			Name:      "ack_configure",
			Signature: wire.Signature{{Kind: wire.KindUint}},
			Handle:    handleXdgSurfaceAckConfigure,
		},
	},
}

func handleXdgSurfaceGetToplevel(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	xdg := ctx.Resource.Data.(*xdgshell.XdgSurface)
	top, err := xdgshell.GetToplevel(xdg)
	if err != nil {
		return err
	}
	if _, err := ctx.Client.Insert(ids.ObjectId(id), &XdgToplevelInterface, ctx.Resource.Version, top); err != nil {
		return err
	}
	cs := resourceClientState(ctx)
	cs.Toplevels[xdg.Surface.Id] = toplevelBinding{XdgSurfaceId: ctx.Resource.Id, ToplevelId: ids.ObjectId(id)}
	return nil
}

func handleXdgSurfaceGetPopup(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	parentId, err := r.Object(true)
	if err != nil {
		return err
	}
	positionerId, err := r.Object(false)
	if err != nil {
		return err
	}
	xdg := ctx.Resource.Data.(*xdgshell.XdgSurface)
	var parent *xdgshell.XdgSurface
	if parentId != 0 {
		parentRes, ok := ctx.Client.Get(ids.ObjectId(parentId))
		if !ok {
			return protoErrNoSuchObject(parentId)
		}
		parent = parentRes.Data.(*xdgshell.XdgSurface)
	}
	posRes, ok := ctx.Client.Get(ids.ObjectId(positionerId))
	if !ok {
		return protoErrNoSuchObject(positionerId)
	}
	pos := *posRes.Data.(*xdgshell.Positioner)
	cs := resourceClientState(ctx)
	bounds := outputBoundsFor(cs)
	popup, err := xdgshell.GetPopup(xdg, parent, pos, bounds)
	if err != nil {
		return err
	}
	_, err = ctx.Client.Insert(ids.ObjectId(id), &XdgPopupInterface, ctx.Resource.Version, popup)
	return err
}

func handleXdgSurfaceAckConfigure(ctx *objects.Context, r *wire.Reader) error {
	serial, err := r.Uint()
	if err != nil {
		return err
	}
	return ctx.Resource.Data.(*xdgshell.XdgSurface).AckConfigure(serial)
}

// SendXdgSurfaceConfigure issues xdg_surface.configure(serial).
func SendXdgSurfaceConfigure(c *transport.Client, xdgSurfaceId uint32, serial uint32) {
	w := wire.NewWriter(c)
	w.Uint(serial)
	c.QueueMessage(xdgSurfaceId, evXdgSurfaceConfigure, w.Bytes())
}

const (
	reqToplevelDestroy     uint16 = 0
	reqToplevelSetParent   uint16 = 1
	reqToplevelSetTitle    uint16 = 2
	reqToplevelSetAppId    uint16 = 3
	reqToplevelSetMaxSize  uint16 = 7
	reqToplevelSetMinSize  uint16 = 8
	reqToplevelSetMaximized   uint16 = 9
	reqToplevelUnsetMaximized uint16 = 10
	reqToplevelSetFullscreen  uint16 = 11
	reqToplevelUnsetFullscreen uint16 = 12
	reqToplevelSetMinimized    uint16 = 13
)

const (
	evToplevelConfigure uint16 = 0
	evToplevelClose     uint16 = 1
)

// XdgToplevelInterface implements xdg_toplevel (spec.md §4.5 "Toplevel
// state").
var XdgToplevelInterface = objects.Interface{
	Name:    "xdg_toplevel",
	Version: 5,
	Requests: []objects.RequestRequestSpec{
		reqToplevelDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqToplevelSetParent: {
			Name:      "set_parent",
			Signature: wire.Signature{{Kind: wire.KindObject, Nullable: true}},
			Handle:    handleToplevelSetParent,
		},
		reqToplevelSetTitle: {
			Name:      "set_title",
			Signature: wire.Signature{{Kind: wire.KindString}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				s, err := r.String(false)
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Toplevel).SetTitle(s)
				return nil
			},
		},
		reqToplevelSetAppId: {
			Name:      "set_app_id",
			Signature: wire.Signature{{Kind: wire.KindString}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				s, err := r.String(false)
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Toplevel).SetAppId(s)
				return nil
			},
		},
		reqToplevelSetMaxSize: {
			Name:      "set_max_size",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				w, h, err := int2(r)
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Toplevel).SetMaxSize(int(w), int(h))
				return nil
			},
		},
		reqToplevelSetMinSize: {
			Name:      "set_min_size",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				w, h, err := int2(r)
				if err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Toplevel).SetMinSize(int(w), int(h))
				return nil
			},
		},
		reqToplevelSetMaximized:    {Name: "set_maximized", Handle: stateHandler(func(s *xdgshell.ToplevelState) { s.Maximized = true })},
		reqToplevelUnsetMaximized:  {Name: "unset_maximized", Handle: stateHandler(func(s *xdgshell.ToplevelState) { s.Maximized = false })},
		reqToplevelSetFullscreen: {
			Name:      "set_fullscreen",
			Signature: wire.Signature{{Kind: wire.KindObject, Nullable: true}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				if _, err := r.Object(true); err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Toplevel).State.Fullscreen = true
				return nil
			},
		},
		reqToplevelUnsetFullscreen: {Name: "unset_fullscreen", Handle: stateHandler(func(s *xdgshell.ToplevelState) { s.Fullscreen = false })},
		reqToplevelSetMinimized:    {Name: "set_minimized", Handle: func(ctx *objects.Context, r *wire.Reader) error { return nil }},
	},
}

func stateHandler(mutate func(*xdgshell.ToplevelState)) objects.RequestHandler {
	return func(ctx *objects.Context, r *wire.Reader) error {
		top := ctx.Resource.Data.(*xdgshell.Toplevel)
		mutate(&top.State)
		return nil
	}
}

func handleToplevelSetParent(ctx *objects.Context, r *wire.Reader) error {
	parentId, err := r.Object(true)
	if err != nil {
		return err
	}
	top := ctx.Resource.Data.(*xdgshell.Toplevel)
	if parentId == 0 {
		top.SetParent(nil)
		return nil
	}
	parentRes, ok := ctx.Client.Get(ids.ObjectId(parentId))
	if !ok {
		return protoErrNoSuchObject(parentId)
	}
	top.SetParent(parentRes.Data.(*xdgshell.Toplevel))
	return nil
}

// SendToplevelConfigure issues xdg_toplevel.configure(width, height,
// states) ahead of the paired xdg_surface.configure(serial).
func SendToplevelConfigure(c *transport.Client, toplevelId uint32, width, height int, state xdgshell.ToplevelState) {
	w := wire.NewWriter(c)
	w.Int(int32(width)).Int(int32(height))
	var states []byte
	push := func(v uint32) {
		var b [4]byte
		b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
		states = append(states, b[:]...)
	}
	if state.Maximized {
		push(1)
	}
	if state.Fullscreen {
		push(2)
	}
	if state.Resizing {
		push(3)
	}
	if state.Activated {
		push(4)
	}
	w.Array(states)
	c.QueueMessage(toplevelId, evToplevelConfigure, w.Bytes())
}

// SendToplevelClose asks the client to destroy the toplevel.
func SendToplevelClose(c *transport.Client, toplevelId uint32) {
	c.QueueMessage(toplevelId, evToplevelClose, nil)
}

const (
	reqPopupDestroy     uint16 = 0
	reqPopupGrab        uint16 = 1
	reqPopupReposition  uint16 = 2
)

const (
	evPopupConfigure  uint16 = 0
	evPopupPopupDone  uint16 = 1
	evPopupRepositioned uint16 = 2
)

// XdgPopupInterface implements xdg_popup (spec.md §4.5 "Popups").
var XdgPopupInterface = objects.Interface{
	Name:    "xdg_popup",
	Version: 5,
	Requests: []objects.RequestRequestSpec{
		reqPopupDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqPopupGrab: {
			Name:      "grab",
			Signature: wire.Signature{{Kind: wire.KindObject}, {Kind: wire.KindUint}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				if _, err := r.Object(false); err != nil {
					return err
				}
				if _, err := r.Uint(); err != nil {
					return err
				}
				ctx.Resource.Data.(*xdgshell.Popup).Grab()
				return nil
			},
		},
		reqPopupReposition: {
			Name:      "reposition",
			Signature: wire.Signature{{Kind: wire.KindObject}, {Kind: wire.KindUint}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				positionerId, err := r.Object(false)
				if err != nil {
					return err
				}
				if _, err := r.Uint(); err != nil {
					return err
				}
				popup := ctx.Resource.Data.(*xdgshell.Popup)
				posRes, ok := ctx.Client.Get(ids.ObjectId(positionerId))
				if !ok {
					return protoErrNoSuchObject(positionerId)
				}
				cs := resourceClientState(ctx)
				serial := popup.Reposition(*posRes.Data.(*xdgshell.Positioner), outputBoundsFor(cs))
				w := wire.NewWriter(cs.Conn)
				w.Uint(serial)
				cs.Conn.QueueMessage(uint32(ctx.Resource.Id), evPopupRepositioned, w.Bytes())
				return nil
			},
		},
	},
}

// outputBoundsFor returns the bounds popups (get_popup and reposition)
// are constrained against: the whole global output layout when at least one
// output exists, or an arbitrary but stable default otherwise (headless
// test/dev environments with no real outputs attached).
func outputBoundsFor(cs *ClientState) image.Rectangle {
	if cs.boundState != nil {
		if b := cs.boundState.Outputs.Bounds(); !b.Empty() {
			return b
		}
	}
	return image.Rect(0, 0, 1920, 1080)
}

// xdgSurfaceFor recovers the xdgshell.XdgSurface backing surf's role, if
// it has taken on the toplevel or popup role (spec.md §4.5: a plain
// wl_surface with no shell role commits directly).
func xdgSurfaceFor(surf *surface.Surface) (*xdgshell.XdgSurface, bool) {
	switch d := surf.Role.Data.(type) {
	case *xdgshell.Toplevel:
		return d.Xdg, true
	case *xdgshell.Popup:
		return d.Xdg, true
	default:
		return nil, false
	}
}
