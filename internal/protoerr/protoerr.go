// Package protoerr models the error taxonomy of spec.md §7: protocol
// errors that are fatal to one client, resource exhaustion, render errors,
// device errors, and socket I/O errors, each with a defined propagation
// policy.
package protoerr

import "fmt"

// Code mirrors the wl_display.error "code" argument space: 0-3 are the
// core wl_display codes, object-specific codes start at the interface's
// own numbering in a real implementation but are out of scope for the
// subset of interfaces kestrel serves directly from this package.
type Code uint32

const (
	CodeInvalidObject Code = 0
	CodeInvalidMethod Code = 1
	CodeNoMemory      Code = 2
	CodeImplementation Code = 3
)

// Protocol is a fatal, per-client protocol error: the object manager or a
// request handler detected a violation (invalid object, invalid opcode,
// argument mismatch, role reassignment, out-of-bounds buffer, version
// mismatch). The transport layer sends wl_display.error(ObjectId, Code,
// Message), flushes, and closes the client's socket.
type Protocol struct {
	ObjectId uint32
	Code     Code
	Message  string
}

func (e *Protocol) Error() string {
	return fmt.Sprintf("protocol error on object %d (code %d): %s", e.ObjectId, e.Code, e.Message)
}

// NewProtocolError builds a Protocol error.
func NewProtocolError(objectId uint32, code Code, format string, args ...any) *Protocol {
	return &Protocol{ObjectId: objectId, Code: code, Message: fmt.Sprintf(format, args...)}
}

// ResourceExhaustion is raised when the server cannot satisfy a request
// for lack of memory or object-table space. It maps to
// wl_display.error(..., CodeNoMemory, ...) but, unlike Protocol, does not
// necessarily require closing the client — callers decide per spec.md §7.
type ResourceExhaustion struct {
	ObjectId uint32
	Message  string
}

func (e *ResourceExhaustion) Error() string {
	return fmt.Sprintf("resource exhaustion on object %d: %s", e.ObjectId, e.Message)
}

// Render denotes a renderer-level failure. Recoverable variants (swapchain
// out of date, surface lost) are handled by the renderer itself rebuilding
// state; Fatal ones (shader/pipeline compile failure) should bring the
// compositor process down in development builds.
type Render struct {
	Recoverable bool
	Message     string
}

func (e *Render) Error() string {
	kind := "recoverable"
	if !e.Recoverable {
		kind = "fatal"
	}
	return fmt.Sprintf("render error (%s): %s", kind, e.Message)
}

// Device denotes an input-device acquisition failure. A single device
// failing to open is logged and skipped; the libinput context itself
// failing at startup is fatal to the whole compositor.
type Device struct {
	Fatal   bool
	Message string
}

func (e *Device) Error() string {
	return fmt.Sprintf("device error (fatal=%v): %s", e.Fatal, e.Message)
}

// IsFatalToClient reports whether err should tear down the client
// connection it was raised for, per the propagation policy of spec.md §7.
func IsFatalToClient(err error) bool {
	switch err.(type) {
	case *Protocol:
		return true
	default:
		return false
	}
}
