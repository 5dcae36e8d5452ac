package compositor

import (
	"github.com/kestrelwm/kestrel/internal/dmabuf"
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/transport"
	"github.com/kestrelwm/kestrel/internal/wire"
)

const (
	reqDmabufDestroy       uint16 = 0
	reqDmabufCreateParams  uint16 = 1
)

const evDmabufFormat uint16 = 0

// ZwpLinuxDmabufV1Interface is the factory for buffer-params objects
// (spec.md §4.3, §6: "zwp_linux_dmabuf_v1"). Actual GPU import is
// deferred to the active render.FrameRenderer (spec.md §9's resolved
// Open Question); this layer only validates plane/modifier shape.
var ZwpLinuxDmabufV1Interface = objects.Interface{
	Name:    "zwp_linux_dmabuf_v1",
	Version: 3,
	Requests: []objects.RequestRequestSpec{
		reqDmabufDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqDmabufCreateParams: {
			Name:      "create_params",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleDmabufCreateParams,
		},
	},
}

func handleDmabufCreateParams(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	_, err = ctx.Client.Insert(ids.ObjectId(id), &ZwpLinuxBufferParamsV1Interface, ctx.Resource.Version, &dmabuf.Params{})
	return err
}

// SendDmabufFormat announces one supported format (without modifier
// detail, the v1 opcode) to a freshly bound client.
func SendDmabufFormat(c *transport.Client, dmabufId uint32, format uint32) {
	w := wire.NewWriter(c)
	w.Uint(format)
	c.QueueMessage(dmabufId, evDmabufFormat, w.Bytes())
}

const (
	reqParamsDestroy    uint16 = 0
	reqParamsAdd        uint16 = 1
	reqParamsCreate     uint16 = 2
	reqParamsCreateImmed uint16 = 3
)

const (
	evParamsCreated uint16 = 0
	evParamsFailed  uint16 = 1
)

// ZwpLinuxBufferParamsV1Interface accumulates planes (add) then finalizes
// either asynchronously (create, replying with created/failed) or
// synchronously (create_immed, returning the wl_buffer id directly).
var ZwpLinuxBufferParamsV1Interface = objects.Interface{
	Name:    "zwp_linux_buffer_params_v1",
	Version: 3,
	Requests: []objects.RequestRequestSpec{
		reqParamsDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqParamsAdd: {
			Name: "add",
			Signature: wire.Signature{
				{Kind: wire.KindFd}, {Kind: wire.KindUint}, {Kind: wire.KindUint},
				{Kind: wire.KindUint}, {Kind: wire.KindUint}, {Kind: wire.KindUint},
			},
			Handle: handleParamsAdd,
		},
		reqParamsCreate: {
			Name:      "create",
			Signature: wire.Signature{{Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindUint}, {Kind: wire.KindUint}},
			Handle:    handleParamsCreate,
		},
		reqParamsCreateImmed: {
			Name: "create_immed",
			Signature: wire.Signature{
				{Kind: wire.KindNewId}, {Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindUint}, {Kind: wire.KindUint},
			},
			Handle: handleParamsCreateImmed,
		},
	},
}

func handleParamsAdd(ctx *objects.Context, r *wire.Reader) error {
	fd, err := r.Fd()
	if err != nil {
		return err
	}
	if _, err := r.Uint(); err != nil { // plane_idx: this compositor keys planes by add order, not index
		return err
	}
	offset, err := r.Uint()
	if err != nil {
		return err
	}
	stride, err := r.Uint()
	if err != nil {
		return err
	}
	modHi, err := r.Uint()
	if err != nil {
		return err
	}
	modLo, err := r.Uint()
	if err != nil {
		return err
	}
	params := ctx.Resource.Data.(*dmabuf.Params)
	params.Modifier = uint64(modHi)<<32 | uint64(modLo)
	return params.Add(dmabuf.Plane{Fd: fd, Offset: offset, Stride: stride})
}

func handleParamsCreate(ctx *objects.Context, r *wire.Reader) error {
	width, err := r.Int()
	if err != nil {
		return err
	}
	height, err := r.Int()
	if err != nil {
		return err
	}
	format, err := r.Uint()
	if err != nil {
		return err
	}
	if _, err := r.Uint(); err != nil { // flags: y-invert/interlaced, not modeled by this backend
		return err
	}
	params := ctx.Resource.Data.(*dmabuf.Params)
	buf, err := dmabuf.Create(*params, int(width), int(height), format)
	if err != nil {
		SendParamsFailed(resourceClientState(ctx).Conn, uint32(ctx.Resource.Id))
		return nil
	}
	newId := ctx.Client.AllocateServerId()
	res, err := ctx.Client.Insert(newId, &WlBufferInterface, ctx.Resource.Version, buf)
	if err != nil {
		return err
	}
	res.OnDestroy = func() {}
	SendParamsCreated(resourceClientState(ctx).Conn, uint32(ctx.Resource.Id), uint32(newId))
	return nil
}

func handleParamsCreateImmed(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	width, err := r.Int()
	if err != nil {
		return err
	}
	height, err := r.Int()
	if err != nil {
		return err
	}
	format, err := r.Uint()
	if err != nil {
		return err
	}
	if _, err := r.Uint(); err != nil {
		return err
	}
	params := ctx.Resource.Data.(*dmabuf.Params)
	buf, err := dmabuf.Create(*params, int(width), int(height), format)
	if err != nil {
		return err
	}
	res, err := ctx.Client.Insert(ids.ObjectId(id), &WlBufferInterface, ctx.Resource.Version, buf)
	if err != nil {
		return err
	}
	res.OnDestroy = func() {}
	return nil
}

// SendParamsCreated/Failed reply to the async zwp_linux_buffer_params_v1.create.
func SendParamsCreated(c *transport.Client, paramsId, bufferId uint32) {
	w := wire.NewWriter(c)
	w.NewId(bufferId)
	c.QueueMessage(paramsId, evParamsCreated, w.Bytes())
}

func SendParamsFailed(c *transport.Client, paramsId uint32) {
	c.QueueMessage(paramsId, evParamsFailed, nil)
}
