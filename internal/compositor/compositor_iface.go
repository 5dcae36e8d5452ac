package compositor

import (
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/surface"
	"github.com/kestrelwm/kestrel/internal/wire"
)

const (
	reqCompositorCreateSurface uint16 = 0
	reqCompositorCreateRegion  uint16 = 1
)

// WlCompositorInterface implements wl_compositor: the factory for
// surfaces and regions (spec.md §3 Resource: "WlCompositor").
var WlCompositorInterface = objects.Interface{
	Name:    "wl_compositor",
	Version: 5,
	Requests: []objects.RequestRequestSpec{
		reqCompositorCreateSurface: {
			Name:      "create_surface",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleCompositorCreateSurface,
		},
		reqCompositorCreateRegion: {
			Name:      "create_region",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleCompositorCreateRegion,
		},
	},
}

func handleCompositorCreateSurface(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	cs := ctx.Resource.Data.(*ClientState)
	surf := newSurface(cs)
	res, err := ctx.Client.Insert(ids.ObjectId(id), &WlSurfaceInterface, ctx.Resource.Version, surf)
	if err != nil {
		return err
	}
	wid := ids.ObjectId(id)
	cs.Surfaces[wid] = surf
	if st := cs.boundState; st != nil {
		st.surfaceOwners[surf.Id] = surfaceOwner{Client: cs, SurfaceId: wid}
	}
	res.OnDestroy = func() {
		if st := cs.boundState; st != nil {
			st.unmapToplevel(surf)
			delete(st.surfaceOwners, surf.Id)
		}
		surf.Destroy()
		delete(cs.Surfaces, wid)
		delete(cs.Toplevels, surf.Id)
	}
	return nil
}

func handleCompositorCreateRegion(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	_, err = ctx.Client.Insert(ids.ObjectId(id), &WlRegionInterface, ctx.Resource.Version, &surface.Region{})
	return err
}

const (
	reqRegionDestroy  uint16 = 0
	reqRegionAdd      uint16 = 1
	reqRegionSubtract uint16 = 2
)

// WlRegionInterface accumulates rectangles into a surface.Region, later
// consumed by wl_surface.set_opaque_region/set_input_region (spec.md
// §4.4).
var WlRegionInterface = objects.Interface{
	Name:    "wl_region",
	Version: 1,
	Requests: []objects.RequestRequestSpec{
		reqRegionDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqRegionAdd: {
			Name:      "add",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle:    handleRegionAdd,
		},
		reqRegionSubtract: {
			Name:      "subtract",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle:    handleRegionSubtract,
		},
	},
}

func rectArgs(r *wire.Reader) (x, y, w, h int32, err error) {
	if x, err = r.Int(); err != nil {
		return
	}
	if y, err = r.Int(); err != nil {
		return
	}
	if w, err = r.Int(); err != nil {
		return
	}
	h, err = r.Int()
	return
}

func handleRegionDestroy(ctx *objects.Context, r *wire.Reader) error {
	ctx.Client.Destroy(ctx.Resource.Id)
	return nil
}

func handleRegionAdd(ctx *objects.Context, r *wire.Reader) error {
	x, y, w, h, err := rectArgs(r)
	if err != nil {
		return err
	}
	reg := ctx.Resource.Data.(*surface.Region)
	reg.Add(rectFromXYWH(x, y, w, h))
	return nil
}

func handleRegionSubtract(ctx *objects.Context, r *wire.Reader) error {
	x, y, w, h, err := rectArgs(r)
	if err != nil {
		return err
	}
	reg := ctx.Resource.Data.(*surface.Region)
	reg.Subtract(rectFromXYWH(x, y, w, h))
	return nil
}

const (
	reqSubcompositorDestroy        uint16 = 0
	reqSubcompositorGetSubsurface  uint16 = 1
)

// WlSubcompositorInterface implements wl_subcompositor.get_subsurface
// (spec.md §3, §4.4).
var WlSubcompositorInterface = objects.Interface{
	Name:    "wl_subcompositor",
	Version: 1,
	Requests: []objects.RequestRequestSpec{
		reqSubcompositorDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqSubcompositorGetSubsurface: {
			Name:      "get_subsurface",
			Signature: wire.Signature{{Kind: wire.KindNewId}, {Kind: wire.KindObject}, {Kind: wire.KindObject}},
			Handle:    handleSubcompositorGetSubsurface,
		},
	},
}

func handleSubcompositorGetSubsurface(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	surfaceId, err := r.Object(false)
	if err != nil {
		return err
	}
	parentId, err := r.Object(false)
	if err != nil {
		return err
	}
	surfRes, ok := ctx.Client.Get(ids.ObjectId(surfaceId))
	if !ok {
		return protoErrNoSuchObject(surfaceId)
	}
	parentRes, ok := ctx.Client.Get(ids.ObjectId(parentId))
	if !ok {
		return protoErrNoSuchObject(parentId)
	}
	surf := surfRes.Data.(*surface.Surface)
	parent := parentRes.Data.(*surface.Surface)
	if err := surf.MakeSubsurface(parent); err != nil {
		return err
	}
	_, err = ctx.Client.Insert(ids.ObjectId(id), &WlSubsurfaceInterface, ctx.Resource.Version, surf)
	return err
}

const (
	reqSubsurfaceDestroy     uint16 = 0
	reqSubsurfaceSetPosition uint16 = 1
	reqSubsurfacePlaceAbove  uint16 = 2
	reqSubsurfacePlaceBelow  uint16 = 3
	reqSubsurfaceSetSync     uint16 = 4
	reqSubsurfaceSetDesync   uint16 = 5
)

// WlSubsurfaceInterface wraps the wl_subsurface requests around
// surface.Surface's subsurface methods (spec.md §4.4).
var WlSubsurfaceInterface = objects.Interface{
	Name:    "wl_subsurface",
	Version: 1,
	Requests: []objects.RequestRequestSpec{
		reqSubsurfaceDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqSubsurfaceSetPosition: {
			Name:      "set_position",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle:    handleSubsurfaceSetPosition,
		},
		reqSubsurfacePlaceAbove: {
			Name:      "place_above",
			Signature: wire.Signature{{Kind: wire.KindObject}},
			Handle:    handleSubsurfacePlaceAbove,
		},
		reqSubsurfacePlaceBelow: {
			Name:      "place_below",
			Signature: wire.Signature{{Kind: wire.KindObject}},
			Handle:    handleSubsurfacePlaceBelow,
		},
		reqSubsurfaceSetSync:   {Name: "set_sync", Handle: handleSubsurfaceSetSync},
		reqSubsurfaceSetDesync: {Name: "set_desync", Handle: handleSubsurfaceSetDesync},
	},
}

func handleSubsurfaceSetPosition(ctx *objects.Context, r *wire.Reader) error {
	// x and y are decoded and discarded: this compositor records no
	// subsurface position, so the request has no effect.
	_, err := r.Int()
	if err != nil {
		return err
	}
	_, err = r.Int()
	return err
}

func handleSubsurfacePlaceAbove(ctx *objects.Context, r *wire.Reader) error {
	siblingId, err := r.Object(false)
	if err != nil {
		return err
	}
	surf := ctx.Resource.Data.(*surface.Surface)
	siblingRes, ok := ctx.Client.Get(ids.ObjectId(siblingId))
	if !ok {
		return protoErrNoSuchObject(siblingId)
	}
	sibling := siblingRes.Data.(*surface.Surface)
	return surf.Parent.PlaceAbove(surf, sibling)
}

func handleSubsurfacePlaceBelow(ctx *objects.Context, r *wire.Reader) error {
	siblingId, err := r.Object(false)
	if err != nil {
		return err
	}
	surf := ctx.Resource.Data.(*surface.Surface)
	siblingRes, ok := ctx.Client.Get(ids.ObjectId(siblingId))
	if !ok {
		return protoErrNoSuchObject(siblingId)
	}
	sibling := siblingRes.Data.(*surface.Surface)
	return surf.Parent.PlaceBelow(surf, sibling)
}

func handleSubsurfaceSetSync(ctx *objects.Context, r *wire.Reader) error {
	ctx.Resource.Data.(*surface.Surface).SetSync()
	return nil
}

func handleSubsurfaceSetDesync(ctx *objects.Context, r *wire.Reader) error {
	ctx.Resource.Data.(*surface.Surface).SetDesync()
	return nil
}
