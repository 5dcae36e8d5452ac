//go:build linux && cgo

// Package gles2 implements internal/render.FrameRenderer on top of EGL
// and OpenGL ES 2.0 (spec.md §5), adapted from gio's
// app/internal/egl/egl.go context setup and gpu/gl/backend.go shader
// pipeline.
package gles2

/*
#cgo LDFLAGS: -lEGL -lGLESv2
#include <EGL/egl.h>
#include <GLES2/gl2.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/kestrelwm/kestrel/f32"
	"github.com/kestrelwm/kestrel/internal/render"
)

const (
	vertexShaderSrc = `
attribute vec2 pos;
attribute vec2 uv;
varying vec2 vUV;
uniform vec2 viewportSize;
void main() {
	vec2 clip = (pos / viewportSize) * 2.0 - 1.0;
	gl_Position = vec4(clip.x, -clip.y, 0.0, 1.0);
	vUV = uv;
}
`
	texturedFragSrc = `
precision mediump float;
varying vec2 vUV;
uniform sampler2D tex;
uniform float alpha;
void main() {
	vec4 c = texture2D(tex, vUV);
	gl_FragColor = vec4(c.rgb, c.a * alpha);
}
`
	solidFragSrc = `
precision mediump float;
uniform vec4 color;
void main() { gl_FragColor = color; }
`
)

// Backend is the GLES2 FrameRenderer implementation.
type Backend struct {
	disp C.EGLDisplay
	surf C.EGLSurface
	ctx  C.EGLContext

	texProgram   C.GLuint
	solidProgram C.GLuint

	textures map[render.TextureHandle]C.GLuint
	nextID   render.TextureHandle

	width, height int
}

// New creates an EGL context on nativeDisplay/nativeWindow and links the
// two shader programs the backend draws with.
func New(nativeDisplay unsafe.Pointer, nativeWindow unsafe.Pointer, width, height int) (*Backend, error) {
	disp := C.eglGetDisplay(C.EGLNativeDisplayType(nativeDisplay))
	if disp == nil {
		return nil, fmt.Errorf("gles2: eglGetDisplay failed")
	}
	var major, minor C.EGLint
	if C.eglInitialize(disp, &major, &minor) == C.EGL_FALSE {
		return nil, fmt.Errorf("gles2: eglInitialize failed")
	}

	attribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_WINDOW_BIT,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES2_BIT,
		C.EGL_RED_SIZE, 8, C.EGL_GREEN_SIZE, 8, C.EGL_BLUE_SIZE, 8, C.EGL_ALPHA_SIZE, 8,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var numConfigs C.EGLint
	if C.eglChooseConfig(disp, &attribs[0], &config, 1, &numConfigs) == C.EGL_FALSE || numConfigs == 0 {
		return nil, fmt.Errorf("gles2: eglChooseConfig failed")
	}

	ctxAttribs := []C.EGLint{C.EGL_CONTEXT_CLIENT_VERSION, 2, C.EGL_NONE}
	ctx := C.eglCreateContext(disp, config, nil, &ctxAttribs[0])
	if ctx == nil {
		return nil, fmt.Errorf("gles2: eglCreateContext failed")
	}
	surf := C.eglCreateWindowSurface(disp, config, C.EGLNativeWindowType(nativeWindow), nil)
	if surf == nil {
		return nil, fmt.Errorf("gles2: eglCreateWindowSurface failed")
	}
	if C.eglMakeCurrent(disp, surf, surf, ctx) == C.EGL_FALSE {
		return nil, fmt.Errorf("gles2: eglMakeCurrent failed")
	}

	texProg, err := linkProgram(vertexShaderSrc, texturedFragSrc)
	if err != nil {
		return nil, err
	}
	solidProg, err := linkProgram(vertexShaderSrc, solidFragSrc)
	if err != nil {
		return nil, err
	}

	return &Backend{
		disp: disp, surf: surf, ctx: ctx,
		texProgram: texProg, solidProgram: solidProg,
		textures: make(map[render.TextureHandle]C.GLuint),
		width:    width, height: height,
	}, nil
}

func compileShader(kind C.GLenum, src string) (C.GLuint, error) {
	shader := C.glCreateShader(kind)
	csrc := C.CString(src)
	defer C.free(unsafe.Pointer(csrc))
	C.glShaderSource(shader, 1, &csrc, nil)
	C.glCompileShader(shader)
	var status C.GLint
	C.glGetShaderiv(shader, C.GL_COMPILE_STATUS, &status)
	if status == 0 {
		var logLen C.GLint
		C.glGetShaderiv(shader, C.GL_INFO_LOG_LENGTH, &logLen)
		buf := make([]byte, logLen+1)
		C.glGetShaderInfoLog(shader, logLen, nil, (*C.GLchar)(unsafe.Pointer(&buf[0])))
		return 0, fmt.Errorf("gles2: shader compile failed: %s", string(buf))
	}
	return shader, nil
}

func linkProgram(vertSrc, fragSrc string) (C.GLuint, error) {
	vert, err := compileShader(C.GL_VERTEX_SHADER, vertSrc)
	if err != nil {
		return 0, err
	}
	frag, err := compileShader(C.GL_FRAGMENT_SHADER, fragSrc)
	if err != nil {
		return 0, err
	}
	prog := C.glCreateProgram()
	C.glAttachShader(prog, vert)
	C.glAttachShader(prog, frag)
	C.glLinkProgram(prog)
	var status C.GLint
	C.glGetProgramiv(prog, C.GL_LINK_STATUS, &status)
	if status == 0 {
		return 0, fmt.Errorf("gles2: program link failed")
	}
	return prog, nil
}

// ImportShm uploads data as a new RGBA texture (spec.md §4.3: "uploads
// must copy into a GPU texture").
func (b *Backend) ImportShm(data []byte, width, height, stride int, format uint32) (render.TextureHandle, error) {
	var tex C.GLuint
	C.glGenTextures(1, &tex)
	C.glBindTexture(C.GL_TEXTURE_2D, tex)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_MIN_FILTER, C.GL_LINEAR)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_MAG_FILTER, C.GL_LINEAR)
	C.glTexImage2D(C.GL_TEXTURE_2D, 0, C.GL_RGBA, C.GLsizei(width), C.GLsizei(height), 0,
		C.GL_RGBA, C.GL_UNSIGNED_BYTE, unsafe.Pointer(&data[0]))

	id := b.nextID
	b.nextID++
	b.textures[id] = tex
	return id, nil
}

// ImportDmabuf is not supported by the plain GLES2 backend without the
// EGL_EXT_image_dma_buf_import extension; spec.md §9's resolved Open
// Question treats that as a degrade-the-surface case, not a fatal error.
func (b *Backend) ImportDmabuf(fds []int, strides, offsets []uint32, width, height int, format uint32, modifier uint64) (render.TextureHandle, error) {
	return 0, fmt.Errorf("gles2: dmabuf import requires EGL_EXT_image_dma_buf_import, not available")
}

func (b *Backend) ReleaseTexture(handle render.TextureHandle) {
	if tex, ok := b.textures[handle]; ok {
		C.glDeleteTextures(1, &tex)
		delete(b.textures, handle)
	}
}

// Draw composites every element, limiting the GL scissor rect to the
// union of frame.Damage when present (spec.md §5: "damage-limited draw").
func (b *Backend) Draw(frame render.Frame) error {
	if len(frame.Damage) > 0 {
		C.glEnable(C.GL_SCISSOR_TEST)
		r := frame.Damage[0]
		for _, d := range frame.Damage[1:] {
			r = r.Union(d)
		}
		C.glScissor(C.GLint(r.Min.X), C.GLint(frame.OutputHeight-r.Max.Y), C.GLsizei(r.Dx()), C.GLsizei(r.Dy()))
	} else {
		C.glDisable(C.GL_SCISSOR_TEST)
	}

	C.glClearColor(0, 0, 0, 1)
	C.glClear(C.GL_COLOR_BUFFER_BIT)
	C.glEnable(C.GL_BLEND)
	C.glBlendFunc(C.GL_ONE, C.GL_ONE_MINUS_SRC_ALPHA)

	for _, sc := range frame.SolidColors {
		b.drawSolid(sc, frame)
	}
	for _, el := range frame.Elements {
		tex, ok := b.textures[el.Texture]
		if !ok {
			continue
		}
		b.drawTextured(el, tex, frame)
	}
	return nil
}

func (b *Backend) drawSolid(sc render.SolidColorElement, frame render.Frame) {
	C.glUseProgram(b.solidProgram)
	loc := C.glGetUniformLocation(b.solidProgram, cstr("color"))
	C.glUniform4f(loc, C.GLfloat(sc.R), C.GLfloat(sc.G), C.GLfloat(sc.B), C.GLfloat(sc.A))
	b.drawQuad(b.solidProgram, sc.DstRect, render.TransformNormal, frame)
}

func (b *Backend) drawTextured(el render.Element, tex C.GLuint, frame render.Frame) {
	C.glUseProgram(b.texProgram)
	C.glActiveTexture(C.GL_TEXTURE0)
	C.glBindTexture(C.GL_TEXTURE_2D, tex)
	alphaLoc := C.glGetUniformLocation(b.texProgram, cstr("alpha"))
	C.glUniform1f(alphaLoc, C.GLfloat(el.Alpha))
	b.drawQuad(b.texProgram, el.DstRect, el.Transform, frame)
}

// quadVertices computes dst's four corners in output pixel space and the
// UV pair for each, rotated/flipped according to transform, composing
// them with package f32 the way gio's own gpu backend builds vertex data
// before upload (gpu/gl/backend.go's NewVertex).
func quadVertices(dst image.Rectangle, transform render.Transform) (corners, uvs [4]f32.Point) {
	r := f32.Rectangle{
		Min: f32.Point{X: float32(dst.Min.X), Y: float32(dst.Min.Y)},
		Max: f32.Point{X: float32(dst.Max.X), Y: float32(dst.Max.Y)},
	}
	size := r.Size()
	corners = [4]f32.Point{
		r.Min,
		r.Min.Add(f32.Point{X: size.X}),
		r.Min.Add(size),
		r.Min.Add(f32.Point{Y: size.Y}),
	}
	base := [4]f32.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	switch transform {
	case render.Transform90:
		uvs = [4]f32.Point{base[1], base[2], base[3], base[0]}
	case render.Transform180:
		uvs = [4]f32.Point{base[2], base[3], base[0], base[1]}
	case render.Transform270:
		uvs = [4]f32.Point{base[3], base[0], base[1], base[2]}
	case render.TransformFlipped:
		uvs = [4]f32.Point{base[1], base[0], base[3], base[2]}
	case render.TransformFlipped90:
		uvs = [4]f32.Point{base[0], base[3], base[2], base[1]}
	case render.TransformFlipped180:
		uvs = [4]f32.Point{base[3], base[2], base[1], base[0]}
	case render.TransformFlipped270:
		uvs = [4]f32.Point{base[2], base[1], base[0], base[3]}
	default:
		uvs = base
	}
	return corners, uvs
}

func (b *Backend) drawQuad(prog C.GLuint, dst image.Rectangle, transform render.Transform, frame render.Frame) {
	viewportLoc := C.glGetUniformLocation(prog, cstr("viewportSize"))
	C.glUniform2f(viewportLoc, C.GLfloat(frame.OutputWidth), C.GLfloat(frame.OutputHeight))

	corners, uvs := quadVertices(dst, transform)
	triangles := [6]int{0, 1, 2, 0, 2, 3}
	var vertices [6 * 4]C.GLfloat
	for i, idx := range triangles {
		vertices[i*4+0] = C.GLfloat(corners[idx].X)
		vertices[i*4+1] = C.GLfloat(corners[idx].Y)
		vertices[i*4+2] = C.GLfloat(uvs[idx].X)
		vertices[i*4+3] = C.GLfloat(uvs[idx].Y)
	}

	stride := C.GLsizei(4 * C.sizeof_GLfloat)
	posLoc := C.GLuint(C.glGetAttribLocation(prog, cstr("pos")))
	uvLoc := C.GLuint(C.glGetAttribLocation(prog, cstr("uv")))
	C.glVertexAttribPointer(posLoc, 2, C.GL_FLOAT, C.GL_FALSE, stride, unsafe.Pointer(&vertices[0]))
	C.glVertexAttribPointer(uvLoc, 2, C.GL_FLOAT, C.GL_FALSE, stride, unsafe.Pointer(&vertices[2]))
	C.glEnableVertexAttribArray(posLoc)
	C.glEnableVertexAttribArray(uvLoc)
	C.glDrawArrays(C.GL_TRIANGLES, 0, 6)
}

func cstr(s string) *C.GLchar {
	b := append([]byte(s), 0)
	return (*C.GLchar)(unsafe.Pointer(&b[0]))
}

func (b *Backend) Present() error {
	if C.eglSwapBuffers(b.disp, b.surf) == C.EGL_FALSE {
		return fmt.Errorf("gles2: eglSwapBuffers failed")
	}
	return nil
}

func (b *Backend) Destroy() {
	for _, tex := range b.textures {
		C.glDeleteTextures(1, &tex)
	}
	C.glDeleteProgram(b.texProgram)
	C.glDeleteProgram(b.solidProgram)
	C.eglDestroyContext(b.disp, b.ctx)
	C.eglDestroySurface(b.disp, b.surf)
	C.eglTerminate(b.disp)
}
