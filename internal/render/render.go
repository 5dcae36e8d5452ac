// Package render defines the renderer-agnostic frame abstraction spec.md
// §5 sits in front of the GLES2 and Vulkan backends: a frame is a list of
// elements plus a damage region, and a FrameRenderer turns that into
// pixels on an output without either backend leaking into compositor
// logic.
package render

import "image"

// TextureKind distinguishes how an element's source pixels were
// imported, since GLES2 and Vulkan import shm and dmabuf sources
// differently.
type TextureKind int

const (
	TextureShm TextureKind = iota
	TextureDmabuf
	TextureSolid
)

// TextureHandle is an opaque per-backend identifier for an imported
// texture (an shm upload or a dmabuf import), minted by
// FrameRenderer.ImportShm or ImportDmabuf and referenced by later Draw calls.
type TextureHandle uint64

// Element is one textured quad to composite: a source rectangle within
// its texture, a destination rectangle in output space, a transform, and
// alpha/opaque-region hints the backend may use to skip blending.
type Element struct {
	Texture      TextureHandle
	SrcRect      image.Rectangle
	DstRect      image.Rectangle
	Transform    Transform
	Alpha        float32
	OpaqueInDst  image.Rectangle // sub-rect of DstRect known fully opaque; zero-value means none
}

// SolidColorElement paints a flat color into DstRect — used for
// backgrounds and focus/selection decoration that isn't backed by a
// client buffer.
type SolidColorElement struct {
	DstRect image.Rectangle
	R, G, B, A float32
}

// Transform mirrors wl_output.transform applied to one element's source
// sampling (surface buffer transform composed with output transform).
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

// Frame is everything needed to composite and present one output frame.
type Frame struct {
	OutputWidth, OutputHeight int
	Elements                  []Element
	SolidColors               []SolidColorElement
	// Damage restricts redraw to these output-space rectangles when the
	// backend supports partial presentation (spec.md §5: "damage-limited
	// draw"); a nil/empty Damage means redraw everything.
	Damage []image.Rectangle
}

// FrameRenderer is the interface both the GLES2 and Vulkan backends
// satisfy (spec.md §5).
type FrameRenderer interface {
	// ImportShm uploads pixel data into a new backend texture.
	ImportShm(data []byte, width, height, stride int, format uint32) (TextureHandle, error)
	// ImportDmabuf imports a dmabuf-backed buffer's planes into a new
	// backend texture without a CPU copy, where the backend supports it.
	ImportDmabuf(fds []int, strides []uint32, offsets []uint32, width, height int, format uint32, modifier uint64) (TextureHandle, error)
	// ReleaseTexture frees backend resources for handle; the caller must
	// not reference handle again afterward.
	ReleaseTexture(handle TextureHandle)
	// Draw composites frame into the backend's current target.
	Draw(frame Frame) error
	// Present flips/swaps the composited frame to the screen.
	Present() error
	// Destroy releases every backend resource.
	Destroy()
}
