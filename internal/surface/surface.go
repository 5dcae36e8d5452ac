// Package surface implements the Wayland surface/subsurface state machine
// of spec.md §3 and §4.4: double-buffered pending/current state, commit
// promotion, subsurface sync/desync cascading, and buffer release
// bookkeeping.
package surface

import (
	"fmt"
	"image"

	"github.com/kestrelwm/kestrel/internal/ids"
)

// BufferRef is the minimal interface a shm.Buffer or dmabuf.Buffer must
// satisfy to be attached to a surface. Surface deliberately doesn't import
// the shm/dmabuf packages, so either buffer kind — or a future one — can
// be attached without a dependency cycle.
type BufferRef interface {
	IsBusy() bool
	MarkBusy()
	MarkIdle()
}

// AttachedBuffer wraps a BufferRef with the release bookkeeping of
// spec.md §3: a buffer "is_busy" while any surface's current state
// references it, and fires exactly one release event once neither the
// surface nor the renderer need it any more (property 3).
type AttachedBuffer struct {
	Ref       BufferRef
	OnRelease func()

	refCount int
	released bool
}

func NewAttachedBuffer(ref BufferRef, onRelease func()) *AttachedBuffer {
	ref.MarkBusy()
	return &AttachedBuffer{Ref: ref, OnRelease: onRelease}
}

func (b *AttachedBuffer) surfaceRef()   { b.refCount++ }
func (b *AttachedBuffer) surfaceUnref() { b.refCount--; b.maybeRelease() }

// RendererRef and RendererUnref are called by the renderer integration
// around texture import/use, so a buffer mid-GPU-use outlives a surface
// detaching it (spec.md §5: "Buffer releases may be delayed ... awaiting
// GPU completion").
func (b *AttachedBuffer) RendererRef()   { b.refCount++ }
func (b *AttachedBuffer) RendererUnref() { b.refCount--; b.maybeRelease() }

func (b *AttachedBuffer) maybeRelease() {
	if b.refCount <= 0 && !b.released {
		b.released = true
		b.Ref.MarkIdle()
		if b.OnRelease != nil {
			b.OnRelease()
		}
	}
}

// RoleKind is the exclusive function a surface has taken on (spec.md
// §4.4: "A surface acquires a role exactly once").
type RoleKind int

const (
	RoleNone RoleKind = iota
	RoleToplevel
	RolePopup
	RoleSubsurface
	RoleCursor
)

// Role records which role a surface has taken, plus role-specific state
// owned by the package that assigned it (xdgshell's toplevel/popup
// state, or this package's own Subsurface link).
type Role struct {
	Kind RoleKind
	Data any
}

// FrameCallback is a pending wl_callback from wl_surface.frame, fired
// once after the surface's next presented frame (spec.md §5).
type FrameCallback struct {
	Done func(timestampMs uint32)
}

// Transform mirrors wl_output.transform (rotation/flip applied to the
// buffer before compositing).
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// State is one half of a surface's double-buffered state (spec.md §3).
type State struct {
	Buffer       *AttachedBuffer
	BufferOffset image.Point
	Damage       Region
	OpaqueRegion Region
	InputRegion  Region
	Transform    Transform
	Scale        int
	Callbacks    []FrameCallback
}

func newState() State {
	return State{Scale: 1}
}

// cloneSticky copies everything except the accumulating Damage/Callbacks, which
// start fresh for the next pending cycle (spec.md §4.4's commit consumes
// damage and fires callbacks).
func (s State) cloneSticky() State {
	c := s
	c.Damage = Region{}
	c.Callbacks = nil
	return c
}

// Surface is the central surface-tree node (spec.md §3).
type Surface struct {
	Id     ids.WindowId
	Client uint64 // opaque client identifier for ownership checks

	Role Role

	pending State
	current State

	// Subsurface-only fields.
	Parent        *Surface
	sync          bool
	cachedPending *State

	children []*Surface // ordered list of direct subsurfaces, paint order
}

// New creates an unmapped, roleless surface.
func New(id ids.WindowId, clientId uint64) *Surface {
	return &Surface{
		Id:      id,
		Client:  clientId,
		pending: newState(),
		current: newState(),
		sync:    true,
	}
}

// SetRole assigns a role exactly once; reassignment is a protocol error
// per spec.md §4.4.
func (s *Surface) SetRole(kind RoleKind, data any) error {
	if s.Role.Kind != RoleNone && s.Role.Kind != kind {
		return fmt.Errorf("surface: role already assigned (%v), cannot become %v", s.Role.Kind, kind)
	}
	s.Role = Role{Kind: kind, Data: data}
	return nil
}

// Current returns the surface's promoted state (read-only by convention;
// callers should not mutate the returned value's slices in place).
func (s *Surface) Current() *State { return &s.current }

// Pending returns the surface's not-yet-committed state for request
// handlers to mutate.
func (s *Surface) Pending() *State { return &s.pending }

// IsMapped reports whether the surface has a non-nil current buffer,
// i.e. it has content the renderer should draw.
func (s *Surface) IsMapped() bool { return s.current.Buffer != nil }

// Attach sets pending.Buffer, replacing (but not yet releasing) whatever
// was previously pending, per wl_surface.attach(buffer, dx, dy).
func (s *Surface) Attach(buf *AttachedBuffer, dx, dy int) {
	s.pending.Buffer = buf
	s.pending.BufferOffset = image.Pt(dx, dy)
}

// Damage adds a surface-local damage rectangle to pending state (union,
// property 8: damage only grows within a frame).
func (s *Surface) Damage(r image.Rectangle) {
	s.pending.Damage.Add(r)
}

// MakeSubsurface links child under parent, defaulting to synchronized
// mode as wl_subcompositor.get_subsurface specifies.
func (s *Surface) MakeSubsurface(parent *Surface) error {
	if parent == s {
		return fmt.Errorf("surface: a surface cannot be its own subsurface parent")
	}
	if err := s.SetRole(RoleSubsurface, nil); err != nil {
		return err
	}
	s.Parent = parent
	s.sync = true
	parent.children = append(parent.children, s)
	return nil
}

// SetSync and SetDesync implement wl_subsurface.set_sync/set_desync.
func (s *Surface) SetSync()   { s.sync = true }
func (s *Surface) SetDesync() { s.sync = false }

// Children returns the direct subsurfaces in paint order (back to front).
func (s *Surface) Children() []*Surface { return s.children }

// PlaceAbove moves sibling immediately above relativeTo in paint order,
// per wl_subsurface.place_above.
func (s *Surface) PlaceAbove(sibling, relativeTo *Surface) error {
	return s.reorder(sibling, relativeTo, 1)
}

// PlaceBelow implements wl_subsurface.place_below.
func (s *Surface) PlaceBelow(sibling, relativeTo *Surface) error {
	return s.reorder(sibling, relativeTo, 0)
}

func (s *Surface) reorder(sibling, relativeTo *Surface, offset int) error {
	idx := indexOf(s.children, sibling)
	relIdx := indexOf(s.children, relativeTo)
	if idx < 0 || relIdx < 0 {
		return fmt.Errorf("surface: place_above/below: sibling not a child of this surface")
	}
	s.children = append(s.children[:idx], s.children[idx+1:]...)
	relIdx = indexOf(s.children, relativeTo)
	insertAt := relIdx + offset
	s.children = append(s.children[:insertAt], append([]*Surface{sibling}, s.children[insertAt:]...)...)
	return nil
}

func indexOf(list []*Surface, s *Surface) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// effectiveSync reports whether this subsurface's pending state should be
// cached rather than promoted directly (spec.md §4.4).
func (s *Surface) effectiveSync() bool {
	return s.Role.Kind == RoleSubsurface && s.sync
}

// Commit promotes pending to current, per spec.md §4.4 and property 2. If
// this surface is a synchronized subsurface its pending snapshot is
// cached instead, applied later when its sync-parent (here: direct
// parent) commits. Returns any AttachedBuffers that just lost their
// surface-side reference, for the caller to check for release.
func (s *Surface) Commit() []*AttachedBuffer {
	if s.effectiveSync() {
		snap := s.pending
		s.cachedPending = &snap
		s.pending = s.pending.cloneSticky()
		return nil
	}
	releases := s.promoteOwn()
	releases = append(releases, s.cascadeChildren()...)
	return releases
}

func (s *Surface) promoteOwn() []*AttachedBuffer {
	prev := s.current.Buffer
	next := s.pending
	s.current = next
	s.pending = next.cloneSticky()

	var releases []*AttachedBuffer
	if next.Buffer != prev {
		if next.Buffer != nil {
			next.Buffer.surfaceRef()
		}
		if prev != nil {
			prev.surfaceUnref()
			releases = append(releases, prev)
		}
	}
	return releases
}

// cascadeChildren applies any cached state of synchronized direct
// children, recursing into grand-children that are themselves
// synchronized (spec.md §4.4 Scenario D).
func (s *Surface) cascadeChildren() []*AttachedBuffer {
	var releases []*AttachedBuffer
	for _, child := range s.children {
		if !child.effectiveSync() {
			continue
		}
		if child.cachedPending != nil {
			prev := child.current.Buffer
			next := *child.cachedPending
			child.current = next
			child.cachedPending = nil
			if next.Buffer != prev {
				if next.Buffer != nil {
					next.Buffer.surfaceRef()
				}
				if prev != nil {
					prev.surfaceUnref()
					releases = append(releases, prev)
				}
			}
		}
		releases = append(releases, child.cascadeChildren()...)
	}
	return releases
}

// Destroy tears the surface out of its parent's child list (if any) and
// drops its current buffer's surface reference.
func (s *Surface) Destroy() []*AttachedBuffer {
	if s.Parent != nil {
		idx := indexOf(s.Parent.children, s)
		if idx >= 0 {
			s.Parent.children = append(s.Parent.children[:idx], s.Parent.children[idx+1:]...)
		}
	}
	var releases []*AttachedBuffer
	if s.current.Buffer != nil {
		s.current.Buffer.surfaceUnref()
		releases = append(releases, s.current.Buffer)
	}
	return releases
}
