// Package shm implements wl_shm pools and shm-backed buffers (spec.md
// §3, §4.3): mmap-backed shared memory, and buffers as
// (pool, offset, stride, format, w, h) views with release tracking.
package shm

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Format is one of the pixel formats advertised by wl_shm (spec.md §6:
// "at minimum ARGB8888 and XRGB8888").
type Format uint32

const (
	FormatARGB8888 Format = 0
	FormatXRGB8888 Format = 1
)

// BytesPerPixel returns the stride unit for f, or 0 if f is unsupported.
func BytesPerPixel(f Format) int {
	switch f {
	case FormatARGB8888, FormatXRGB8888:
		return 4
	default:
		return 0
	}
}

// SupportedFormats lists every format this compositor advertises via
// wl_shm.format events.
var SupportedFormats = []Format{FormatARGB8888, FormatXRGB8888}

func IsSupported(f Format) bool {
	for _, s := range SupportedFormats {
		if s == f {
			return true
		}
	}
	return false
}

// Pool is an mmap-backed shared-memory region created by
// wl_shm.create_pool. Its memory is reference-counted by the buffers
// created from it: a client may destroy the pool object while buffers
// still reference the mapping (spec.md §4.3), so the mapping itself is
// only unmapped once the last buffer drops its reference.
type Pool struct {
	fd       int
	data     []byte
	refCount int
}

// CreatePool validates size and mmaps fd. The caller retains ownership of
// fd; CreatePool dup()s it so the pool's lifetime doesn't depend on the
// client keeping the original descriptor open.
func CreatePool(fd int, size int64) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: create_pool: size must be > 0, got %d", size)
	}
	ownFd, err := unix.Dup(fd)
	if err != nil {
		return nil, fmt.Errorf("shm: dup pool fd: %w", err)
	}
	data, err := unix.Mmap(ownFd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(ownFd)
		return nil, fmt.Errorf("shm: mmap: %w", err)
	}
	return &Pool{fd: ownFd, data: data, refCount: 1}, nil
}

// Size reports the pool's current mapped size.
func (p *Pool) Size() int { return len(p.data) }

// Resize grows the pool to a new size, per wl_shm_pool.resize (only growth
// is permitted, spec.md §4.3).
func (p *Pool) Resize(newSize int64) error {
	if int(newSize) < len(p.data) {
		return fmt.Errorf("shm: pool resize must grow (have %d, requested %d)", len(p.data), newSize)
	}
	if int(newSize) == len(p.data) {
		return nil
	}
	if err := unix.Ftruncate(p.fd, newSize); err != nil {
		return fmt.Errorf("shm: ftruncate: %w", err)
	}
	data, err := unix.Mmap(p.fd, 0, int(newSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("shm: remap: %w", err)
	}
	unix.Munmap(p.data)
	p.data = data
	return nil
}

// retain/release implement the pool's reference count. The client's
// wl_shm_pool object holds one reference from creation until it is
// destroyed; each WlBuffer created from the pool holds its own.
func (p *Pool) retain() { p.refCount++ }

func (p *Pool) release() {
	p.refCount--
	if p.refCount <= 0 {
		unix.Munmap(p.data)
		unix.Close(p.fd)
		p.data = nil
	}
}

// ReleaseClientRef drops the object-table's own reference (wl_shm_pool
// destroy request), independent of any buffers still outstanding.
func (p *Pool) ReleaseClientRef() { p.release() }

// Buffer is an shm-backed view into a Pool, created by
// wl_shm_pool.create_buffer.
type Buffer struct {
	pool       *Pool
	Offset     int
	Width      int
	Height     int
	Stride     int
	Format     Format
	busy       bool
}

// CreateBuffer validates the (offset, w, h, stride, format) tuple against
// the pool per spec.md §4.3 and takes a reference on the pool's memory.
func CreateBuffer(pool *Pool, offset, width, height, stride int, format Format) (*Buffer, error) {
	if !IsSupported(format) {
		return nil, fmt.Errorf("shm: unsupported buffer format %d", format)
	}
	if offset < 0 {
		return nil, fmt.Errorf("shm: negative buffer offset %d", offset)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("shm: non-positive buffer dimensions %dx%d", width, height)
	}
	bpp := BytesPerPixel(format)
	if stride < width*bpp {
		return nil, fmt.Errorf("shm: stride %d too small for width %d (bpp %d)", stride, width, bpp)
	}
	if offset+stride*height > pool.Size() {
		return nil, fmt.Errorf("shm: buffer (offset %d + stride %d * height %d) exceeds pool size %d",
			offset, stride, height, pool.Size())
	}
	pool.retain()
	return &Buffer{pool: pool, Offset: offset, Width: width, Height: height, Stride: stride, Format: format}, nil
}

// IsBusy reports the buffer's busy bit (spec.md §3: set while any surface
// references it in current state).
func (b *Buffer) IsBusy() bool { return b.busy }

func (b *Buffer) MarkBusy()   { b.busy = true }
func (b *Buffer) MarkIdle()   { b.busy = false }

// WithContents runs f with a view of the buffer's bytes, without holding
// any lock across the call (spec.md §4.3: "without taking a lock longer
// than the call; uploads must copy into a GPU texture because the client
// may unmap/remap"). Callers that need the pixels after f returns must
// copy them — the memory is the client's and can be mutated or unmapped
// at any time after WithContents returns.
func (b *Buffer) WithContents(f func(data []byte, format Format)) {
	start := b.Offset
	end := start + b.Stride*b.Height
	f(b.pool.data[start:end], b.Format)
}

// Release drops the buffer's reference to its pool's memory. Called once
// the buffer object is destroyed.
func (b *Buffer) Release() {
	if b.pool != nil {
		b.pool.release()
		b.pool = nil
	}
}
