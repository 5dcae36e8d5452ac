package compositor

import (
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/protoerr"
	"github.com/kestrelwm/kestrel/internal/transport"
	"github.com/kestrelwm/kestrel/internal/wire"
)

// Opcodes below follow upstream Wayland's wire numbering so the traffic
// this compositor speaks is bit-for-bit compatible with real clients
// (spec.md §4.1).

const (
	opDisplaySync        uint16 = 0
	opDisplayGetRegistry uint16 = 1
)

const (
	evDisplayError    uint16 = 0
	evDisplayDeleteId uint16 = 1
)

// WlDisplayInterface is the always-present id-1 object every client
// starts bound to (spec.md §4.2: "wl_display (id 1) is pre-installed").
var WlDisplayInterface = objects.Interface{
	Name:    "wl_display",
	Version: 1,
	Requests: []objects.RequestRequestSpec{
		opDisplaySync: {
			Name:      "sync",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleDisplaySync,
		},
		opDisplayGetRegistry: {
			Name:      "get_registry",
			Signature: wire.Signature{{Kind: wire.KindNewId}},
			Handle:    handleDisplayGetRegistry,
		},
	},
}

func handleDisplaySync(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	cs := ctx.Resource.Data.(*ClientState)
	// A real compositor processes requests strictly in order, so a sync
	// callback's done event can be sent back immediately: everything the
	// client queued ahead of it has already been handled by the time this
	// handler runs.
	SendCallbackDone(cs.Conn, id, 0)
	return nil
}

func handleDisplayGetRegistry(ctx *objects.Context, r *wire.Reader) error {
	id, err := r.NewId()
	if err != nil {
		return err
	}
	cs := ctx.Resource.Data.(*ClientState)
	if _, err := ctx.Client.Insert(ids.ObjectId(id), &WlRegistryInterface, 1, cs); err != nil {
		return err
	}
	cs.registryBound = true
	cs.registryId = ids.ObjectId(id)
	if st := cs.boundState; st != nil {
		for _, g := range st.globals {
			SendGlobal(cs.Conn, uint32(id), g)
		}
	}
	return nil
}

// SendDisplayError sends wl_display.error(object_id, code, message).
func SendDisplayError(c *transport.Client, objectId uint32, code protoerr.Code, message string) {
	w := wire.NewWriter(c)
	w.Object(objectId).Uint(uint32(code)).String(message)
	c.QueueMessage(1, evDisplayError, w.Bytes())
}

// SendDeleteId sends wl_display.delete_id(id), retiring a client-allocated
// id once the server has finished using it (e.g. a one-shot sync
// callback).
func SendDeleteId(c *transport.Client, id uint32) {
	w := wire.NewWriter(c)
	w.Uint(id)
	c.QueueMessage(1, evDisplayDeleteId, w.Bytes())
}

const (
	reqRegistryBind uint16 = 0
)

const (
	evRegistryGlobal       uint16 = 0
	evRegistryGlobalRemove uint16 = 1
)

// WlRegistryInterface implements wl_registry.bind (spec.md §4.2). Unlike
// every other request, bind's wire encoding carries the target interface
// name and version ahead of the new_id itself, since the registry alone
// doesn't know in advance what the client is asking to bind.
var WlRegistryInterface = objects.Interface{
	Name:    "wl_registry",
	Version: 1,
	Requests: []objects.RequestRequestSpec{
		reqRegistryBind: {
			Name: "bind",
			Signature: wire.Signature{
				{Kind: wire.KindUint},
				{Kind: wire.KindString},
				{Kind: wire.KindUint},
				{Kind: wire.KindNewId},
			},
			Handle: handleRegistryBind,
		},
	},
}

func handleRegistryBind(ctx *objects.Context, r *wire.Reader) error {
	name, err := r.Uint()
	if err != nil {
		return err
	}
	iface, err := r.String(false)
	if err != nil {
		return err
	}
	version, err := r.Uint()
	if err != nil {
		return err
	}
	newId, err := r.NewId()
	if err != nil {
		return err
	}
	cs := ctx.Resource.Data.(*ClientState)
	st := cs.boundState
	for _, g := range st.globals {
		if g.Name == name && g.Interface == iface {
			if version == 0 || version > g.Version {
				return protoerr.NewProtocolError(newId, protoerr.CodeInvalidObject,
					"bind: %s: requested version %d exceeds advertised version %d", iface, version, g.Version)
			}
			return g.Bind(st, cs, ids.ObjectId(newId), version)
		}
	}
	return protoerr.NewProtocolError(newId, protoerr.CodeInvalidObject, "bind: no such global %d (%s)", name, iface)
}

// SendGlobal announces g to a freshly bound registry.
func SendGlobal(c *transport.Client, registryId uint32, g Global) {
	w := wire.NewWriter(c)
	w.Uint(g.Name).String(g.Interface).Uint(g.Version)
	c.QueueMessage(registryId, evRegistryGlobal, w.Bytes())
}

// SendGlobalRemove announces that global name is no longer available
// (e.g. an output was unplugged).
func SendGlobalRemove(c *transport.Client, registryId uint32, name uint32) {
	w := wire.NewWriter(c)
	w.Uint(name)
	c.QueueMessage(registryId, evRegistryGlobalRemove, w.Bytes())
}

const evCallbackDone uint16 = 0

// WlCallbackInterface has no requests; it only ever receives the one-shot
// "done" event, used by wl_display.sync and wl_surface.frame alike.
var WlCallbackInterface = objects.Interface{
	Name:     "wl_callback",
	Version:  1,
	Requests: nil,
}

// SendCallbackDone fires callback.done(data) then retires the id, matching
// upstream's convention that callback objects self-destruct after firing.
func SendCallbackDone(c *transport.Client, id uint32, data uint32) {
	w := wire.NewWriter(c)
	w.Uint(data)
	c.QueueMessage(id, evCallbackDone, w.Bytes())
	SendDeleteId(c, id)
}
