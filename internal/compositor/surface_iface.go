package compositor

import (
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/surface"
	"github.com/kestrelwm/kestrel/internal/transport"
	"github.com/kestrelwm/kestrel/internal/wire"
)

const (
	reqSurfaceDestroy            uint16 = 0
	reqSurfaceAttach             uint16 = 1
	reqSurfaceDamage             uint16 = 2
	reqSurfaceFrame              uint16 = 3
	reqSurfaceSetOpaqueRegion    uint16 = 4
	reqSurfaceSetInputRegion     uint16 = 5
	reqSurfaceCommit             uint16 = 6
	reqSurfaceSetBufferTransform uint16 = 7
	reqSurfaceSetBufferScale     uint16 = 8
	reqSurfaceDamageBuffer       uint16 = 9
)

const (
	evSurfaceEnter uint16 = 0
	evSurfaceLeave uint16 = 1
)

const evBufferRelease uint16 = 0

// WlSurfaceInterface implements the wl_surface request set around
// internal/surface's double-buffered state machine (spec.md §4.4).
var WlSurfaceInterface = objects.Interface{
	Name:    "wl_surface",
	Version: 5,
	Requests: []objects.RequestRequestSpec{
		reqSurfaceDestroy: {Name: "destroy", Handle: handleSurfaceDestroy},
		reqSurfaceAttach: {
			Name:      "attach",
			Signature: wire.Signature{{Kind: wire.KindObject, Nullable: true}, {Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle:    handleSurfaceAttach,
		},
		reqSurfaceDamage: {
			Name:      "damage",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle:    handleSurfaceDamage,
		},
		reqSurfaceFrame: {
			Name:      "frame",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleSurfaceFrame,
		},
		reqSurfaceSetOpaqueRegion: {
			Name:      "set_opaque_region",
			Signature: wire.Signature{{Kind: wire.KindObject, Nullable: true}},
			Handle:    handleSurfaceSetOpaqueRegion,
		},
		reqSurfaceSetInputRegion: {
			Name:      "set_input_region",
			Signature: wire.Signature{{Kind: wire.KindObject, Nullable: true}},
			Handle:    handleSurfaceSetInputRegion,
		},
		reqSurfaceCommit: {Name: "commit", Handle: handleSurfaceCommit},
		reqSurfaceSetBufferTransform: {
			Name:      "set_buffer_transform",
			Signature: wire.Signature{{Kind: wire.KindInt}},
			Handle:    handleSurfaceSetBufferTransform,
		},
		reqSurfaceSetBufferScale: {
			Name:      "set_buffer_scale",
			Signature: wire.Signature{{Kind: wire.KindInt}},
			Handle:    handleSurfaceSetBufferScale,
		},
		reqSurfaceDamageBuffer: {
			Name:      "damage_buffer",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle:    handleSurfaceDamage,
		},
	},
}

func handleSurfaceDestroy(ctx *objects.Context, r *wire.Reader) error {
	ctx.Client.Destroy(ctx.Resource.Id)
	return nil
}

func handleSurfaceAttach(ctx *objects.Context, r *wire.Reader) error {
	bufferId, err := r.Object(true)
	if err != nil {
		return err
	}
	dx, err := r.Int()
	if err != nil {
		return err
	}
	dy, err := r.Int()
	if err != nil {
		return err
	}
	surf := ctx.Resource.Data.(*surface.Surface)
	if bufferId == 0 {
		surf.Attach(nil, int(dx), int(dy))
		return nil
	}
	bufRes, ok := ctx.Client.Get(ids.ObjectId(bufferId))
	if !ok {
		return protoErrNoSuchObject(bufferId)
	}
	ref, ok := bufRes.Data.(surface.BufferRef)
	if !ok {
		return protoErrNoSuchObject(bufferId)
	}
	cs := resourceClientState(ctx)
	attached := surface.NewAttachedBuffer(ref, func() {
		SendBufferRelease(cs.Conn, bufferId)
	})
	surf.Attach(attached, int(dx), int(dy))
	return nil
}

func handleSurfaceDamage(ctx *objects.Context, r *wire.Reader) error {
	x, y, w, h, err := rectArgs(r)
	if err != nil {
		return err
	}
	ctx.Resource.Data.(*surface.Surface).Damage(rectFromXYWH(x, y, w, h))
	return nil
}

func handleSurfaceFrame(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	surf := ctx.Resource.Data.(*surface.Surface)
	surf.Pending().Callbacks = append(surf.Pending().Callbacks, surface.FrameCallback{
		Done: func(timestampMs uint32) {
			cs := resourceClientState(ctx)
			SendCallbackDone(cs.Conn, id, timestampMs)
		},
	})
	return nil
}

func handleSurfaceSetOpaqueRegion(ctx *objects.Context, r *wire.Reader) error {
	regionId, err := r.Object(true)
	if err != nil {
		return err
	}
	surf := ctx.Resource.Data.(*surface.Surface)
	if regionId == 0 {
		surf.Pending().OpaqueRegion = surface.Region{}
		return nil
	}
	regRes, ok := ctx.Client.Get(ids.ObjectId(regionId))
	if !ok {
		return protoErrNoSuchObject(regionId)
	}
	surf.Pending().OpaqueRegion = *regRes.Data.(*surface.Region)
	return nil
}

func handleSurfaceSetInputRegion(ctx *objects.Context, r *wire.Reader) error {
	regionId, err := r.Object(true)
	if err != nil {
		return err
	}
	surf := ctx.Resource.Data.(*surface.Surface)
	if regionId == 0 {
		surf.Pending().InputRegion = surface.Region{}
		return nil
	}
	regRes, ok := ctx.Client.Get(ids.ObjectId(regionId))
	if !ok {
		return protoErrNoSuchObject(regionId)
	}
	surf.Pending().InputRegion = *regRes.Data.(*surface.Region)
	return nil
}

func handleSurfaceSetBufferTransform(ctx *objects.Context, r *wire.Reader) error {
	t, err := r.Int()
	if err != nil {
		return err
	}
	ctx.Resource.Data.(*surface.Surface).Pending().Transform = surface.Transform(t)
	return nil
}

func handleSurfaceSetBufferScale(ctx *objects.Context, r *wire.Reader) error {
	s, err := r.Int()
	if err != nil {
		return err
	}
	if s < 1 {
		return protoErrNoSuchObject(uint32(ctx.Resource.Id))
	}
	ctx.Resource.Data.(*surface.Surface).Pending().Scale = int(s)
	return nil
}

func handleSurfaceCommit(ctx *objects.Context, r *wire.Reader) error {
	surf := ctx.Resource.Data.(*surface.Surface)

	// A toplevel/popup surface's commit is gated by xdg_surface's
	// ack_configure rule; route through it when the role carries one.
	if x, ok := xdgSurfaceFor(surf); ok {
		if _, err := x.Commit(); err != nil {
			return err
		}
	} else {
		surf.Commit()
	}

	cs := resourceClientState(ctx)
	if st := cs.boundState; st != nil {
		st.mapToplevelIfNeeded(cs, surf)
	}

	// Frame callbacks queued by this commit are not fired here: per
	// spec.md §5 they fire exactly once per presented frame, from the
	// render tick in frame_tick.go, once the surface has actually been
	// drawn and presented rather than the instant the client commits.
	return nil
}

// resourceClientState recovers the owning client's bookkeeping from a
// request Context; every resource this package installs is reachable
// from ctx.Client, which the accept path stashes the client's own
// ClientState into under the wl_display (id 1) resource.
func resourceClientState(ctx *objects.Context) *ClientState {
	displayRes, _ := ctx.Client.Get(1)
	return displayRes.Data.(*ClientState)
}

// SendBufferRelease implements wl_buffer.release: the client may now
// reuse or free the buffer's backing memory (spec.md §3 Buffer lifecycle).
func SendBufferRelease(c *transport.Client, bufferId uint32) {
	c.QueueMessage(bufferId, evBufferRelease, nil)
}

// SendSurfaceEnter/Leave announce which outputs a surface's current
// buffer is visible on (spec.md §4.9), driven by the compositor's
// per-output damage/visibility tracking.
func SendSurfaceEnter(c *transport.Client, surfaceId, outputId uint32) {
	w := wire.NewWriter(c)
	w.Object(outputId)
	c.QueueMessage(surfaceId, evSurfaceEnter, w.Bytes())
}

func SendSurfaceLeave(c *transport.Client, surfaceId, outputId uint32) {
	w := wire.NewWriter(c)
	w.Object(outputId)
	c.QueueMessage(surfaceId, evSurfaceLeave, w.Bytes())
}
