package transport

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Timer wraps a Linux timerfd, the same primitive the event loop uses for
// sockets, so key-repeat and render-tick timers are just another fd
// epoll_wait can report readiness for, with no separate goroutine or
// select statement needed (spec.md §5).
type Timer struct {
	fd int
}

// NewTimer creates a disarmed monotonic timerfd.
func NewTimer() (*Timer, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("transport: timerfd_create: %w", err)
	}
	return &Timer{fd: fd}, nil
}

func (t *Timer) Fd() int { return t.fd }

// Set arms the timer to first fire after delay, then every interval
// thereafter. interval of 0 makes it one-shot. delay of 0 disarms it.
func (t *Timer) Set(delay, interval time.Duration) error {
	spec := unix.ItimerSpec{
		Value:    unix.NsecToTimespec(delay.Nanoseconds()),
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
	}
	return unix.TimerfdSettime(t.fd, 0, &spec, nil)
}

// Disarm stops the timer without closing its fd.
func (t *Timer) Disarm() error {
	return t.Set(0, 0)
}

// Drain reads and discards the expiration counter a readable timerfd
// carries, as required before re-arming or the next epoll_wait round will
// immediately report readable again.
func (t *Timer) Drain() (uint64, error) {
	var buf [8]byte
	n, err := unix.Read(t.fd, buf[:])
	if err != nil {
		if err == unix.EAGAIN {
			return 0, nil
		}
		return 0, err
	}
	if n != 8 {
		return 0, fmt.Errorf("transport: timerfd: short read %d", n)
	}
	return uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
		uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56, nil
}

func (t *Timer) Close() error {
	return unix.Close(t.fd)
}
