//go:build linux && cgo

package inputpipe

/*
#cgo pkg-config: libinput libudev
#include <stdlib.h>
#include <libinput.h>
#include <libudev.h>

extern int goOpenRestricted(const char *path, int flags, void *user_data);
extern void goCloseRestricted(int fd, void *user_data);

static const struct libinput_interface kestrel_libinput_interface = {
	.open_restricted = goOpenRestricted,
	.close_restricted = goCloseRestricted,
};

static struct libinput *kestrel_libinput_new(struct udev *udev, void *user_data) {
	return libinput_udev_create_context(&kestrel_libinput_interface, user_data, udev);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

//export goOpenRestricted
func goOpenRestricted(cpath *C.char, flags C.int, userData unsafe.Pointer) C.int {
	h := handleFromPointer(userData)
	fd, err := h.session.OpenRestricted(C.GoString(cpath), int(flags))
	if err != nil {
		return -1
	}
	return C.int(fd)
}

//export goCloseRestricted
func goCloseRestricted(fd C.int, userData unsafe.Pointer) {
	h := handleFromPointer(userData)
	h.session.CloseRestricted(int(fd))
}

var (
	handlesMu sync.Mutex
	handles   = map[unsafe.Pointer]*pipelineHandle{}
)

type pipelineHandle struct{ session Session }

func handleFromPointer(p unsafe.Pointer) *pipelineHandle {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	return handles[p]
}

// Pipeline owns a libinput context created against the default udev seat
// ("seat0"), dispatching evdev events into a Sink (spec.md §4.6).
type Pipeline struct {
	li     *C.struct_libinput
	udev   *C.struct_udev
	handle *pipelineHandle
	token  unsafe.Pointer
}

// Open starts a libinput context bound to session for device access.
// Failure here is non-fatal to the compositor as a whole: it simply runs
// without physical input. A Session that refuses devices (such as
// NullSession's ErrUnsupported) does not make Open fail; libinput then
// opens no devices.
func Open(session Session, seatName string) (*Pipeline, error) {
	udev := C.udev_new()
	if udev == nil {
		return nil, fmt.Errorf("inputpipe: udev_new failed")
	}
	h := &pipelineHandle{session: session}
	token := new(byte)
	tokenPtr := unsafe.Pointer(token)
	handlesMu.Lock()
	handles[tokenPtr] = h
	handlesMu.Unlock()

	li := C.kestrel_libinput_new(udev, tokenPtr)
	if li == nil {
		C.udev_unref(udev)
		handlesMu.Lock()
		delete(handles, tokenPtr)
		handlesMu.Unlock()
		return nil, fmt.Errorf("inputpipe: libinput_udev_create_context failed")
	}
	cSeat := C.CString(seatName)
	defer C.free(unsafe.Pointer(cSeat))
	if C.libinput_udev_assign_seat(li, cSeat) != 0 {
		C.libinput_unref(li)
		C.udev_unref(udev)
		return nil, fmt.Errorf("inputpipe: libinput_udev_assign_seat(%q) failed", seatName)
	}
	return &Pipeline{li: li, udev: udev, handle: h, token: tokenPtr}, nil
}

// Fd returns the libinput context's pollable file descriptor, to be added
// to the compositor's epoll loop.
func (p *Pipeline) Fd() int { return int(C.libinput_get_fd(p.li)) }

// Dispatch drains and translates every event currently queued, per
// spec.md §4.6's device loop.
func (p *Pipeline) Dispatch(sink Sink) error {
	if rc := C.libinput_dispatch(p.li); rc != 0 {
		return fmt.Errorf("inputpipe: libinput_dispatch: %w", unix.Errno(-rc))
	}
	for {
		ev := C.libinput_get_event(p.li)
		if ev == nil {
			return nil
		}
		translate(ev, sink)
		C.libinput_event_destroy(ev)
	}
}

func (p *Pipeline) Close() {
	handlesMu.Lock()
	delete(handles, p.token)
	handlesMu.Unlock()
	C.libinput_unref(p.li)
	C.udev_unref(p.udev)
}

func translate(ev *C.struct_libinput_event, sink Sink) {
	switch C.libinput_event_get_type(ev) {
	case C.LIBINPUT_EVENT_KEYBOARD_KEY:
		kev := C.libinput_event_get_keyboard_event(ev)
		code := uint32(C.libinput_event_keyboard_get_key(kev))
		pressed := C.libinput_event_keyboard_get_key_state(kev) == C.LIBINPUT_KEY_STATE_PRESSED
		sink.Key(code, pressed)
	case C.LIBINPUT_EVENT_POINTER_MOTION:
		pev := C.libinput_event_get_pointer_event(ev)
		dx := float64(C.libinput_event_pointer_get_dx(pev))
		dy := float64(C.libinput_event_pointer_get_dy(pev))
		sink.PointerMotion(dx, dy)
	case C.LIBINPUT_EVENT_POINTER_BUTTON:
		pev := C.libinput_event_get_pointer_event(ev)
		btn := uint32(C.libinput_event_pointer_get_button(pev))
		pressed := C.libinput_event_pointer_get_button_state(pev) == C.LIBINPUT_BUTTON_STATE_PRESSED
		sink.PointerButton(btn, pressed)
	case C.LIBINPUT_EVENT_POINTER_SCROLL_WHEEL, C.LIBINPUT_EVENT_POINTER_SCROLL_FINGER:
		pev := C.libinput_event_get_pointer_event(ev)
		if C.libinput_event_pointer_has_axis(pev, C.LIBINPUT_POINTER_AXIS_SCROLL_VERTICAL) != 0 {
			v := float64(C.libinput_event_pointer_get_axis_value(pev, C.LIBINPUT_POINTER_AXIS_SCROLL_VERTICAL))
			sink.PointerAxis(0, v)
		}
		if C.libinput_event_pointer_has_axis(pev, C.LIBINPUT_POINTER_AXIS_SCROLL_HORIZONTAL) != 0 {
			v := float64(C.libinput_event_pointer_get_axis_value(pev, C.LIBINPUT_POINTER_AXIS_SCROLL_HORIZONTAL))
			sink.PointerAxis(1, v)
		}
	case C.LIBINPUT_EVENT_TOUCH_DOWN:
		tev := C.libinput_event_get_touch_event(ev)
		id := int32(C.libinput_event_touch_get_seat_slot(tev))
		x := float64(C.libinput_event_touch_get_x(tev))
		y := float64(C.libinput_event_touch_get_y(tev))
		sink.TouchDown(id, x, y)
	case C.LIBINPUT_EVENT_TOUCH_MOTION:
		tev := C.libinput_event_get_touch_event(ev)
		id := int32(C.libinput_event_touch_get_seat_slot(tev))
		x := float64(C.libinput_event_touch_get_x(tev))
		y := float64(C.libinput_event_touch_get_y(tev))
		sink.TouchMotion(id, x, y)
	case C.LIBINPUT_EVENT_TOUCH_UP:
		tev := C.libinput_event_get_touch_event(ev)
		id := int32(C.libinput_event_touch_get_seat_slot(tev))
		sink.TouchUp(id)
	}
}
