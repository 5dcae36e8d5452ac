package compositor

import (
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/shm"
	"github.com/kestrelwm/kestrel/internal/transport"
	"github.com/kestrelwm/kestrel/internal/wire"
)

const reqShmCreatePool uint16 = 0

const evShmFormat uint16 = 0

// WlShmInterface implements wl_shm.create_pool (spec.md §4.3).
var WlShmInterface = objects.Interface{
	Name:    "wl_shm",
	Version: 1,
	Requests: []objects.RequestRequestSpec{
		reqShmCreatePool: {
			Name:      "create_pool",
			Signature: wire.Signature{{Kind: wire.KindNewId}, {Kind: wire.KindFd}, {Kind: wire.KindInt}},
			Handle:    handleShmCreatePool,
		},
	},
}

func handleShmCreatePool(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	fd, err := r.Fd()
	if err != nil {
		return err
	}
	size, err := r.Int()
	if err != nil {
		return err
	}
	pool, err := shm.CreatePool(fd, int64(size))
	if err != nil {
		return err
	}
	res, err := ctx.Client.Insert(ids.ObjectId(id), &WlShmPoolInterface, ctx.Resource.Version, pool)
	if err != nil {
		return err
	}
	res.OnDestroy = pool.ReleaseClientRef
	return nil
}

// SendShmFormat announces one supported wl_shm.format to a freshly bound
// client (spec.md §6: "at minimum ARGB8888 and XRGB8888").
func SendShmFormat(c *transport.Client, shmId uint32, format shm.Format) {
	w := wire.NewWriter(c)
	w.Uint(uint32(format))
	c.QueueMessage(shmId, evShmFormat, w.Bytes())
}

const (
	reqShmPoolCreateBuffer uint16 = 0
	reqShmPoolDestroy      uint16 = 1
	reqShmPoolResize       uint16 = 2
)

// WlShmPoolInterface implements wl_shm_pool (spec.md §4.3).
var WlShmPoolInterface = objects.Interface{
	Name:    "wl_shm_pool",
	Version: 1,
	Requests: []objects.RequestRequestSpec{
		reqShmPoolCreateBuffer: {
			Name: "create_buffer",
			Signature: wire.Signature{
				{Kind: wire.KindNewId}, {Kind: wire.KindInt}, {Kind: wire.KindInt},
				{Kind: wire.KindInt}, {Kind: wire.KindInt}, {Kind: wire.KindUint},
			},
			Handle: handleShmPoolCreateBuffer,
		},
		reqShmPoolDestroy: {Name: "destroy", Handle: handleRegionDestroy},
		reqShmPoolResize: {
			Name:      "resize",
			Signature: wire.Signature{{Kind: wire.KindInt}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				size, err := r.Int()
				if err != nil {
					return err
				}
				return ctx.Resource.Data.(*shm.Pool).Resize(int64(size))
			},
		},
	},
}

func handleShmPoolCreateBuffer(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	offset, err := r.Int()
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
	stride, err := r.Int()
	if err != nil {
		return err
	}
	format, err := r.Uint()
	if err != nil {
		return err
	}
	pool := ctx.Resource.Data.(*shm.Pool)
	buf, err := shm.CreateBuffer(pool, int(offset), int(width), int(height), int(stride), shm.Format(format))
	if err != nil {
		return err
	}
	res, err := ctx.Client.Insert(ids.ObjectId(id), &WlBufferInterface, ctx.Resource.Version, buf)
	if err != nil {
		return err
	}
	res.OnDestroy = buf.Release
	return nil
}

const reqBufferDestroy uint16 = 0

// WlBufferInterface's only request is destroy; Data holds whichever
// surface.BufferRef backs it (*shm.Buffer today, *dmabuf.Buffer once
// imported).
var WlBufferInterface = objects.Interface{
	Name:    "wl_buffer",
	Version: 1,
	Requests: []objects.RequestRequestSpec{
		reqBufferDestroy: {Name: "destroy", Handle: handleRegionDestroy},
	},
}
