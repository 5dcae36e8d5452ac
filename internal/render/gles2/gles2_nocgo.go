//go:build !(linux && cgo)

package gles2

import (
	"errors"
	"unsafe"

	"github.com/kestrelwm/kestrel/internal/render"
)

var ErrUnsupported = errors.New("gles2: built without cgo, EGL/GLESv2 unavailable")

type Backend struct{}

func New(nativeDisplay, nativeWindow unsafe.Pointer, width, height int) (*Backend, error) {
	return nil, ErrUnsupported
}

func (b *Backend) ImportShm(data []byte, width, height, stride int, format uint32) (render.TextureHandle, error) {
	return 0, ErrUnsupported
}
func (b *Backend) ImportDmabuf(fds []int, strides, offsets []uint32, width, height int, format uint32, modifier uint64) (render.TextureHandle, error) {
	return 0, ErrUnsupported
}
func (b *Backend) ReleaseTexture(render.TextureHandle) {}
func (b *Backend) Draw(render.Frame) error              { return ErrUnsupported }
func (b *Backend) Present() error                       { return ErrUnsupported }
func (b *Backend) Destroy()                             {}
