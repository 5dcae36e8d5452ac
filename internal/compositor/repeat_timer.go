package compositor

import (
	"time"

	"github.com/kestrelwm/kestrel/internal/transport"
)

// eventLoopRepeatTimer implements seat.RepeatTimer over a timerfd
// registered on the compositor's single event loop, so key-repeat needs
// no goroutine or wall-clock sleep of its own (spec.md §5, §4.6).
type eventLoopRepeatTimer struct {
	loop  *transport.EventLoop
	timer *transport.Timer
}

func newRepeatTimer(loop *transport.EventLoop) (*eventLoopRepeatTimer, error) {
	t, err := transport.NewTimer()
	if err != nil {
		return nil, err
	}
	rt := &eventLoopRepeatTimer{loop: loop, timer: t}
	if err := loop.Add(t.Fd(), false, func(events uint32) error {
		return nil
	}); err != nil {
		t.Close()
		return nil, err
	}
	return rt, nil
}

// Schedule arms the timer and swaps in fire as the handler invoked on
// each expiration, replacing whatever handler (if any) a previous
// Schedule installed.
func (rt *eventLoopRepeatTimer) Schedule(delay, interval time.Duration, fire func()) {
	rt.timer.Set(delay, interval)
	rt.setHandler(fire)
}

// Stop disarms the timer; a still-pending expiration already queued by
// the kernel is drained and ignored on the next readable event.
func (rt *eventLoopRepeatTimer) Stop() {
	rt.timer.Disarm()
	rt.setHandler(nil)
}

func (rt *eventLoopRepeatTimer) setHandler(fire func()) {
	rt.loop.Remove(rt.timer.Fd())
	rt.loop.Add(rt.timer.Fd(), false, func(events uint32) error {
		if _, err := rt.timer.Drain(); err != nil {
			return err
		}
		if fire != nil {
			fire()
		}
		return nil
	})
}

func (rt *eventLoopRepeatTimer) Close() error {
	rt.loop.Remove(rt.timer.Fd())
	return rt.timer.Close()
}
