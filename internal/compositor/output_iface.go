package compositor

import (
	"github.com/kestrelwm/kestrel/internal/objects"
	"github.com/kestrelwm/kestrel/internal/output"
	"github.com/kestrelwm/kestrel/internal/transport"
	"github.com/kestrelwm/kestrel/internal/wire"
)

const (
	evOutputGeometry uint16 = 0
	evOutputMode     uint16 = 1
	evOutputDone     uint16 = 2
	evOutputScale    uint16 = 3
)

const (
	modeCurrent   uint32 = 1 << 0
	modePreferred uint32 = 1 << 1
)

// WlOutputInterface advertises one internal/output.Output (spec.md §4.9).
// It has no requests of its own beyond release in this version.
var WlOutputInterface = objects.Interface{
	Name:    "wl_output",
	Version: 3,
	Requests: []objects.RequestRequestSpec{
		0: {Name: "release", Handle: handleRegionDestroy},
	},
}

// SendOutputState writes the full geometry/mode/scale/done burst a
// freshly bound wl_output sends, per upstream's "send everything, then
// done" convention so the client never observes a half-configured
// output.
func SendOutputState(c *transport.Client, outputId uint32, o *output.Output) {
	g := wire.NewWriter(c)
	g.Int(int32(o.Position.X)).Int(int32(o.Position.Y)).
		Int(0).Int(0). // physical size in mm: unknown for a placeholder output
		Int(0).        // subpixel: unknown
		String(o.Name).String(o.Name).
		Int(int32(o.Transform))
	c.QueueMessage(outputId, evOutputGeometry, g.Bytes())

	flags := modeCurrent
	if o.CurrentMode.Preferred {
		flags |= modePreferred
	}
	m := wire.NewWriter(c)
	m.Uint(flags).Int(int32(o.CurrentMode.Width)).Int(int32(o.CurrentMode.Height)).Int(int32(o.CurrentMode.RefreshMilliHz))
	c.QueueMessage(outputId, evOutputMode, m.Bytes())

	s := wire.NewWriter(c)
	s.Int(int32(o.Scale))
	c.QueueMessage(outputId, evOutputScale, s.Bytes())

	c.QueueMessage(outputId, evOutputDone, nil)
}
