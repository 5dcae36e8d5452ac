// Package ids defines the identifier types shared across the compositor.
package ids

import "github.com/google/uuid"

// ObjectId is a per-client Wayland object identifier. Client-allocated IDs
// live in the low range; server-allocated IDs (events such as
// wl_registry.global) have the high bit set, per Wayland's ID-space
// convention.
type ObjectId uint32

// ServerAllocated reports whether id falls in the server-owned ID range.
func (id ObjectId) ServerAllocated() bool {
	return id&0x80000000 != 0
}

// ClientId is a server-assigned opaque identifier for a connected client.
type ClientId uint64

// WindowId, WorkspaceId, OutputId and SeatId are UUIDs so that window
// mechanics, workspace bookkeeping and seat state can be freely created,
// compared and logged without coordinating with the object-ID namespace
// that belongs to the wire protocol.
type (
	WindowId    = uuid.UUID
	WorkspaceId = uuid.UUID
	OutputId    = uuid.UUID
	SeatId      = uuid.UUID
)

// NewWindowId, NewWorkspaceId, NewOutputId and NewSeatId mint fresh random
// identifiers.
func NewWindowId() WindowId       { return uuid.New() }
func NewWorkspaceId() WorkspaceId { return uuid.New() }
func NewOutputId() OutputId       { return uuid.New() }
func NewSeatId() SeatId           { return uuid.New() }

// WindowIdentifier is the non-empty printable application-chosen identifier
// (app_id / window role string), distinct from the internal WindowId.
type WindowIdentifier string

// Valid reports whether w is a non-empty printable identifier.
func (w WindowIdentifier) Valid() bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
