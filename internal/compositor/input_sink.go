package compositor

import (
	"github.com/kestrelwm/kestrel/internal/seat"
)

// evdevToWayland is the fixed +8 offset between evdev scancodes and the
// keycode space wl_keyboard.key sends, per the XKB convention every
// Wayland compositor follows (spec.md §4.6).
const evdevToWayland = 8

// routerSink adapts a *SeatRouter to inputpipe.Sink, converting evdev's
// raw coordinate spaces into the ones internal/seat and the wire
// protocol expect (spec.md §4.7).
type routerSink struct {
	router        *SeatRouter
	naturalScroll bool
}

func newRouterSink(router *SeatRouter, naturalScroll bool) *routerSink {
	return &routerSink{router: router, naturalScroll: naturalScroll}
}

func (s *routerSink) Key(evdevKeycode uint32, pressed bool) {
	s.router.Key(evdevKeycode+evdevToWayland, pressed)
}

func (s *routerSink) PointerMotion(dx, dy float64) {
	s.router.PointerMotion(dx, dy)
}

func (s *routerSink) PointerButton(evdevButton uint32, pressed bool) {
	s.router.PointerButton(seat.Button(evdevButton), pressed)
}

func (s *routerSink) PointerAxis(axis int, value float64) {
	if s.naturalScroll {
		value = -value
	}
	s.router.PointerScroll(seat.Axis(axis), value)
}

func (s *routerSink) TouchDown(id int32, x, y float64) {
	s.router.TouchDown(seat.TouchPointId(id), [2]int{int(x), int(y)})
}

func (s *routerSink) TouchMotion(id int32, x, y float64) {
	s.router.TouchMotion(seat.TouchPointId(id), [2]int{int(x), int(y)})
}

func (s *routerSink) TouchUp(id int32) {
	s.router.TouchUp(seat.TouchPointId(id))
}
