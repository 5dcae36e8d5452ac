// Package seat implements the wl_seat input model of spec.md §4.7:
// keyboard focus and key-repeat, pointer hit-testing/motion/button/axis
// framing, and per-point touch tracking.
package seat

import "github.com/kestrelwm/kestrel/internal/ids"

// Capability mirrors wl_seat.capability's bitmask.
type Capability uint32

const (
	CapabilityPointer Capability = 1 << iota
	CapabilityKeyboard
	CapabilityTouch
)

// Seat bundles the three input device groups a wl_seat advertises. Each
// sub-device is independently optional; a headless or pointer-less
// compositor simply leaves the corresponding field nil.
type Seat struct {
	Id   ids.SeatId
	Name string

	Keyboard *Keyboard
	Pointer  *Pointer
	Touch    *Touch
}

func New(id ids.SeatId, name string) *Seat {
	return &Seat{Id: id, Name: name}
}

// Capabilities reports the bitmask to advertise in wl_seat.capabilities.
func (s *Seat) Capabilities() Capability {
	var c Capability
	if s.Pointer != nil {
		c |= CapabilityPointer
	}
	if s.Keyboard != nil {
		c |= CapabilityKeyboard
	}
	if s.Touch != nil {
		c |= CapabilityTouch
	}
	return c
}
