package compositor

import (
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/seat"
	"github.com/kestrelwm/kestrel/internal/transport"
	"github.com/kestrelwm/kestrel/internal/wire"
)

const (
	reqSeatGetPointer  uint16 = 0
	reqSeatGetKeyboard uint16 = 1
	reqSeatGetTouch    uint16 = 2
	reqSeatRelease     uint16 = 3
)

const (
	evSeatCapabilities uint16 = 0
	evSeatName         uint16 = 1
)

// WlSeatInterface implements wl_seat's capability-gated device factory
// (spec.md §4.6: "a client can obtain a device only when advertised").
var WlSeatInterface = objects.Interface{
	Name:    "wl_seat",
	Version: 7,
	Requests: []objects.RequestRequestSpec{
		reqSeatGetPointer: {
			Name:      "get_pointer",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleSeatGetPointer,
		},
		reqSeatGetKeyboard: {
			Name:      "get_keyboard",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleSeatGetKeyboard,
		},
		reqSeatGetTouch: {
			Name:      "get_touch",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleSeatGetTouch,
		},
		reqSeatRelease: {Name: "release", Handle: handleRegionDestroy},
	},
}

func handleSeatGetPointer(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	s := ctx.Resource.Data.(*seat.Seat)
	if s.Pointer == nil {
		return protoErrNoSuchObject(id)
	}
	_, err = ctx.Client.Insert(ids.ObjectId(id), &WlPointerInterface, ctx.Resource.Version, s.Pointer)
	if err != nil {
		return err
	}
	resourceClientState(ctx).PointerId = ids.ObjectId(id)
	return nil
}

func handleSeatGetKeyboard(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	s := ctx.Resource.Data.(*seat.Seat)
	if s.Keyboard == nil {
		return protoErrNoSuchObject(id)
	}
	_, err = ctx.Client.Insert(ids.ObjectId(id), &WlKeyboardInterface, ctx.Resource.Version, s.Keyboard)
	if err != nil {
		return err
	}
	resourceClientState(ctx).KeyboardId = ids.ObjectId(id)
	return nil
}

func handleSeatGetTouch(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	s := ctx.Resource.Data.(*seat.Seat)
	if s.Touch == nil {
		return protoErrNoSuchObject(id)
	}
	_, err = ctx.Client.Insert(ids.ObjectId(id), &WlTouchInterface, ctx.Resource.Version, s.Touch)
	if err != nil {
		return err
	}
	resourceClientState(ctx).TouchId = ids.ObjectId(id)
	return nil
}

// SendSeatCapabilities announces s's current device set.
func SendSeatCapabilities(c *transport.Client, seatId uint32, caps seat.Capability) {
	w := wire.NewWriter(c)
	w.Uint(uint32(caps))
	c.QueueMessage(seatId, evSeatCapabilities, w.Bytes())
}

func SendSeatName(c *transport.Client, seatId uint32, name string) {
	w := wire.NewWriter(c)
	w.String(name)
	c.QueueMessage(seatId, evSeatName, w.Bytes())
}

const (
	evPointerEnter  uint16 = 0
	evPointerLeave  uint16 = 1
	evPointerMotion uint16 = 2
	evPointerButton uint16 = 3
	evPointerAxis   uint16 = 4
	evPointerFrame  uint16 = 5
)

// WlPointerInterface carries no meaningful requests for this compositor
// beyond release/set_cursor bookkeeping (cursor surfaces are tracked the
// same as any other wl_surface via its role).
var WlPointerInterface = objects.Interface{
	Name:    "wl_pointer",
	Version: 7,
	Requests: []objects.RequestRequestSpec{
		0: {
			Name:      "set_cursor",
			Signature: wire.Signature{{Kind: wire.KindUint}, {Kind: wire.KindObject, Nullable: true}, {Kind: wire.KindInt}, {Kind: wire.KindInt}},
			Handle: func(ctx *objects.Context, r *wire.Reader) error {
				if _, err := r.Uint(); err != nil {
					return err
				}
				if _, err := r.Object(true); err != nil {
					return err
				}
				if _, err := r.Int(); err != nil {
					return err
				}
				_, err := r.Int()
				return err
			},
		},
		1: {Name: "release", Handle: handleRegionDestroy},
	},
}

const (
	evKeyboardKeymap     uint16 = 0
	evKeyboardEnter      uint16 = 1
	evKeyboardLeave      uint16 = 2
	evKeyboardKey        uint16 = 3
	evKeyboardModifiers  uint16 = 4
	evKeyboardRepeatInfo uint16 = 5
)

var WlKeyboardInterface = objects.Interface{
	Name:    "wl_keyboard",
	Version: 7,
	Requests: []objects.RequestRequestSpec{
		0: {Name: "release", Handle: handleRegionDestroy},
	},
}

const (
	evTouchDown   uint16 = 0
	evTouchUp     uint16 = 1
	evTouchMotion uint16 = 2
	evTouchFrame  uint16 = 3
	evTouchCancel uint16 = 4
)

var WlTouchInterface = objects.Interface{
	Name:    "wl_touch",
	Version: 7,
	Requests: []objects.RequestRequestSpec{
		0: {Name: "release", Handle: handleRegionDestroy},
	},
}
