// Package dmabuf validates zwp_linux_dmabuf_v1 buffer parameters.
// Actual GPU import is deferred to the renderer (spec.md §4.3, §9): this
// package only checks that the plane/modifier set is self-consistent
// before a Buffer is handed off.
package dmabuf

import "fmt"

// Plane is one dmabuf plane: its own fd, offset and stride within that fd.
type Plane struct {
	Fd     int
	Offset uint32
	Stride uint32
}

// Params accumulates the planes added via zwp_linux_buffer_params_v1.add
// before zwp_linux_buffer_params_v1.create validates and finalizes them.
type Params struct {
	Planes   []Plane
	Modifier uint64
}

// MaxPlanes bounds the plane count to the four the dmabuf protocol
// reserves opcodes for.
const MaxPlanes = 4

func (p *Params) Add(plane Plane) error {
	if len(p.Planes) >= MaxPlanes {
		return fmt.Errorf("dmabuf: too many planes (max %d)", MaxPlanes)
	}
	p.Planes = append(p.Planes, plane)
	return nil
}

// Buffer is a validated dmabuf-backed buffer description. Unlike
// shm.Buffer it carries no pixel data itself — that lives in the planes'
// fds, imported lazily by whichever renderer backend is active.
type Buffer struct {
	Planes   []Plane
	Modifier uint64
	Width    int
	Height   int
	Format   uint32
	busy     bool
}

// Create validates the accumulated params against the requested
// dimensions/format (spec.md §4.3: "Validate planes/modifiers"). It does
// not touch the GPU; success here only means the description is
// well-formed, not that any renderer backend can actually import it — that
// failure, per spec.md §9's resolved Open Question, degrades the affected
// surface rather than raising a protocol error.
func Create(p Params, width, height int, format uint32) (*Buffer, error) {
	if len(p.Planes) == 0 {
		return nil, fmt.Errorf("dmabuf: no planes added")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("dmabuf: non-positive dimensions %dx%d", width, height)
	}
	for i, pl := range p.Planes {
		if pl.Fd < 0 {
			return nil, fmt.Errorf("dmabuf: plane %d has invalid fd", i)
		}
		if pl.Stride == 0 {
			return nil, fmt.Errorf("dmabuf: plane %d has zero stride", i)
		}
	}
	return &Buffer{
		Planes:   append([]Plane(nil), p.Planes...),
		Modifier: p.Modifier,
		Width:    width,
		Height:   height,
		Format:   format,
	}, nil
}

func (b *Buffer) IsBusy() bool { return b.busy }
func (b *Buffer) MarkBusy()    { b.busy = true }
func (b *Buffer) MarkIdle()    { b.busy = false }
