package objects

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/protoerr"
	"github.com/kestrelwm/kestrel/internal/wire"
)

var compositorInterface = &Interface{
	Name:    "wl_compositor",
	Version: 4,
	Requests: []RequestRequestSpec{
		{Name: "create_surface", Signature: nil, Handle: func(ctx *Context, r *wire.Reader) error { return nil }},
		{Name: "create_region", Signature: nil, Handle: func(ctx *Context, r *wire.Reader) error { return nil }},
	},
}

func TestObjectIdTypeSafety(t *testing.T) {
	table := NewTable(ids.ClientId(1))
	type surfaceData struct{ n int }
	_, err := table.Insert(3, compositorInterface, 4, &surfaceData{n: 1})
	require.NoError(t, err)

	r, ok := table.Get(3)
	require.True(t, ok)
	require.Equal(t, compositorInterface, r.Interface)
	data, ok := r.Data.(*surfaceData)
	require.True(t, ok)
	require.Equal(t, 1, data.n)
}

func TestInsertDuplicateIdIsProtocolError(t *testing.T) {
	table := NewTable(ids.ClientId(1))
	_, err := table.Insert(3, compositorInterface, 4, nil)
	require.NoError(t, err)
	_, err = table.Insert(3, compositorInterface, 4, nil)
	require.Error(t, err)
	var perr *protoerr.Protocol
	require.ErrorAs(t, err, &perr)
	require.Equal(t, protoerr.CodeInvalidObject, perr.Code)
}

// TestInvalidOpcodeIsFatal implements Scenario F: dispatch to an opcode
// outside the interface's request table raises a fatal protocol error.
func TestInvalidOpcodeIsFatal(t *testing.T) {
	table := NewTable(ids.ClientId(1))
	_, err := table.Insert(3, compositorInterface, 4, nil)
	require.NoError(t, err)

	err = table.Dispatch(3, 99, nil, nil)
	require.Error(t, err)
	require.True(t, protoerr.IsFatalToClient(err))
	var perr *protoerr.Protocol
	require.ErrorAs(t, err, &perr)
	require.Equal(t, protoerr.CodeInvalidMethod, perr.Code)
	require.Equal(t, uint32(3), perr.ObjectId)
}

func TestDispatchUnknownObjectIsFatal(t *testing.T) {
	table := NewTable(ids.ClientId(1))
	err := table.Dispatch(42, 0, nil, nil)
	require.Error(t, err)
	require.True(t, protoerr.IsFatalToClient(err))
}

func TestDestroyRunsHook(t *testing.T) {
	table := NewTable(ids.ClientId(1))
	r, err := table.Insert(3, compositorInterface, 4, nil)
	require.NoError(t, err)
	destroyed := false
	r.OnDestroy = func() { destroyed = true }

	table.Destroy(3)
	require.True(t, destroyed)
	_, ok := table.Get(3)
	require.False(t, ok)
}

func TestDestroyAllTransitively(t *testing.T) {
	table := NewTable(ids.ClientId(1))
	var order []int
	for i, id := range []ids.ObjectId{3, 4, 5} {
		id := id
		i := i
		r, err := table.Insert(id, compositorInterface, 4, nil)
		require.NoError(t, err)
		r.OnDestroy = func() { order = append(order, i) }
	}
	table.DestroyAll()
	require.Len(t, order, 3)
	require.Equal(t, 0, table.Len())
}

func TestAllocateServerIdInHighRange(t *testing.T) {
	table := NewTable(ids.ClientId(1))
	id := table.AllocateServerId()
	require.True(t, id.ServerAllocated())
}
