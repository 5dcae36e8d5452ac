// Package objects implements the per-client object table described in
// spec.md §3 and §4.2: mapping ObjectId to a typed Resource, enforcing
// version/opcode validity, and tearing resources down transitively on
// client disconnect or explicit destroy.
package objects

import (
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/protoerr"
	"github.com/kestrelwm/kestrel/internal/wire"
)

// RequestHandler handles one decoded request against a Resource.
type RequestHandler func(ctx *Context, args *wire.Reader) error

// Interface is the static, opcode-indexed request table for one Wayland
// interface, analogous to gio's driver.Device method table but addressed
// by wire opcode instead of a Go method: spec.md §9 calls this "tagged
// variants with per-variant request tables".
type Interface struct {
	Name        string
	Version     uint32
	Requests    []RequestRequestSpec
}

// RequestRequestSpec pairs a request's argument signature with its handler.
type RequestRequestSpec struct {
	Name      string
	Signature wire.Signature
	Handle    RequestHandler
}

// Resource is one live object bound into a client's object table.
type Resource struct {
	Id        ids.ObjectId
	Interface *Interface
	Version   uint32
	// Data holds the resource's own state (e.g. *surface.Surface); request
	// handlers type-assert it back out of the Context.
	Data any
	// OnDestroy runs when the resource is removed from the table, whether
	// by an explicit "destroy" request or by client teardown. It lets
	// owned resources release shared state (spec.md §4.2: "WlBuffer
	// releases its SHM pool ref; WlSurface unmaps from workspaces").
	OnDestroy func()
}

// Context is passed to every request handler.
type Context struct {
	Client   *Table
	Resource *Resource
}

// Table is one client's object table (spec.md §3: "objects: mapping
// ObjectId→Resource").
type Table struct {
	ClientId ids.ClientId
	objects  map[ids.ObjectId]*Resource
	nextServerId ids.ObjectId
}

// serverIdBase is the first id in the server-allocated range (high bit
// set), per Wayland's client/server ID-space convention (spec.md §3).
const serverIdBase ids.ObjectId = 0xff000000

// NewTable creates an empty table. wl_display (id 1) is installed
// separately by the caller once it has a display Interface to bind it to,
// matching spec.md §4.2 ("wl_display (id 1) is pre-installed").
func NewTable(clientId ids.ClientId) *Table {
	return &Table{
		ClientId:     clientId,
		objects:      make(map[ids.ObjectId]*Resource),
		nextServerId: serverIdBase,
	}
}

// Get looks up id, returning (nil, false) if absent.
func (t *Table) Get(id ids.ObjectId) (*Resource, bool) {
	r, ok := t.objects[id]
	return r, ok
}

// Insert registers a resource at id, whether client-proposed or minted by
// AllocateServerId. It is a protocol error for id to already be bound;
// Insert does not check which id range id falls in.
func (t *Table) Insert(id ids.ObjectId, iface *Interface, version uint32, data any) (*Resource, error) {
	if _, exists := t.objects[id]; exists {
		return nil, protoerr.NewProtocolError(uint32(id), protoerr.CodeInvalidObject, "object %d already exists", id)
	}
	r := &Resource{Id: id, Interface: iface, Version: version, Data: data}
	t.objects[id] = r
	return r, nil
}

// AllocateServerId mints the next server-owned id, for events like
// wl_registry.global or xdg_surface.configure serials that need a
// server-created object.
func (t *Table) AllocateServerId() ids.ObjectId {
	id := t.nextServerId
	t.nextServerId++
	return id
}

// Destroy removes id from the table and runs its OnDestroy hook, if any.
// It is idempotent.
func (t *Table) Destroy(id ids.ObjectId) {
	r, ok := t.objects[id]
	if !ok {
		return
	}
	delete(t.objects, id)
	if r.OnDestroy != nil {
		r.OnDestroy()
	}
}

// DestroyAll tears down every object in the table, in an unspecified
// order, for use on client disconnect (spec.md §3: "destruction
// recursively destroys all owned objects").
func (t *Table) DestroyAll() {
	ids := make([]ids.ObjectId, 0, len(t.objects))
	for id := range t.objects {
		ids = append(ids, id)
	}
	for _, id := range ids {
		t.Destroy(id)
	}
}

// Dispatch looks up resource id and opcode, decodes arguments per the
// interface's request signature, and invokes the handler. Any failure
// becomes a *protoerr.Protocol per spec.md §4.2's dispatch algorithm.
func (t *Table) Dispatch(id ids.ObjectId, opcode uint16, argBytes []byte, fds wire.FdSource) error {
	r, ok := t.Get(id)
	if !ok {
		return protoerr.NewProtocolError(uint32(id), protoerr.CodeInvalidObject, "invalid_object: no such object %d", id)
	}
	if int(opcode) >= len(r.Interface.Requests) {
		return protoerr.NewProtocolError(uint32(id), protoerr.CodeInvalidMethod, "invalid_method: opcode %d out of range for %s", opcode, r.Interface.Name)
	}
	spec := r.Interface.Requests[opcode]
	reader := wire.NewReader(argBytes, fds)
	ctx := &Context{Client: t, Resource: r}
	if err := spec.Handle(ctx, reader); err != nil {
		var perr *protoerr.Protocol
		if as(err, &perr) {
			return err
		}
		return protoerr.NewProtocolError(uint32(id), protoerr.CodeInvalidMethod,
			"%s.%s failed: %v", r.Interface.Name, spec.Name, err)
	}
	if !reader.Done() {
		return protoerr.NewProtocolError(uint32(id), protoerr.CodeInvalidMethod,
			"%s.%s: trailing arguments", r.Interface.Name, spec.Name)
	}
	return nil
}

func as(err error, target **protoerr.Protocol) bool {
	p, ok := err.(*protoerr.Protocol)
	if ok {
		*target = p
	}
	return ok
}

// Len reports how many objects are currently live, useful for enforcing a
// per-client object-count ceiling (spec.md §7 ResourceExhaustion: "too
// many objects").
func (t *Table) Len() int { return len(t.objects) }
