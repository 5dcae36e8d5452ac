// Package xdgshell implements the xdg_wm_base protocol family (spec.md
// §4.4): xdg_surface's configure/ack_configure handshake, xdg_toplevel and
// xdg_popup roles, and popup positioning.
package xdgshell

import (
	"fmt"
	"sync/atomic"

	"github.com/kestrelwm/kestrel/internal/surface"
)

// SerialAllocator hands out the monotonically increasing serials used by
// configure events and their acks (spec.md §4.4 property 4: "configure
// serials are monotonically increasing and every ack_configure must
// reference an outstanding, previously sent serial").
type SerialAllocator struct {
	next uint32
}

func (a *SerialAllocator) Next() uint32 {
	return atomic.AddUint32(&a.next, 1)
}

// XdgSurface is the shared configure/ack state machine underlying both
// xdg_toplevel and xdg_popup (spec.md §4.4).
type XdgSurface struct {
	Surface  *surface.Surface
	Serials  *SerialAllocator

	sentSerials []uint32
	acked       bool // at least one ack_configure has been received

	Role interface{} // *Toplevel or *Popup, set by GetToplevel/GetPopup
}

// New wraps surf in an XdgSurface state machine. surf must not already
// have a role (spec.md §4.4: xdg_surface.get_toplevel/get_popup assign
// the surface's role).
func New(surf *surface.Surface, serials *SerialAllocator) *XdgSurface {
	return &XdgSurface{Surface: surf, Serials: serials}
}

// SendConfigure records a newly issued serial, returned for the caller to
// place into the wire configure event.
func (x *XdgSurface) SendConfigure() uint32 {
	s := x.Serials.Next()
	x.sentSerials = append(x.sentSerials, s)
	return s
}

// AckConfigure implements xdg_surface.ack_configure: serial must match
// one previously sent and not yet acked (property 4). Acking a serial
// also implicitly acks (discards) every earlier outstanding serial, since
// the client processes configures in order.
func (x *XdgSurface) AckConfigure(serial uint32) error {
	idx := -1
	for i, s := range x.sentSerials {
		if s == serial {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("xdg_surface: ack_configure: serial %d was never sent", serial)
	}
	x.sentSerials = x.sentSerials[idx+1:]
	x.acked = true
	return nil
}

// Commit wraps surface.Commit with the xdg-shell rule that a buffer must
// not be attached before the surface's first configure has been acked
// (spec.md §4.4 Scenario, derived from property 4).
func (x *XdgSurface) Commit() ([]*surface.AttachedBuffer, error) {
	if !x.acked && x.Surface.Pending().Buffer != nil {
		return nil, fmt.Errorf("xdg_surface: committed a buffer before the initial configure was acked")
	}
	return x.Surface.Commit(), nil
}
