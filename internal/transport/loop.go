package transport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// EventLoop is the single-threaded epoll-driven dispatcher described in
// spec.md §5: every protocol, input and timer source is registered here
// and serviced from one goroutine with no suspension points besides the
// epoll_wait call itself.
type EventLoop struct {
	epfd    int
	sources map[int]func(events uint32) error
}

// NewEventLoop creates an empty loop.
func NewEventLoop() (*EventLoop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("transport: epoll_create1: %w", err)
	}
	return &EventLoop{epfd: epfd, sources: make(map[int]func(events uint32) error)}, nil
}

// Add registers fd for level-triggered readable (and, if writable is true,
// write-readiness) notification. handler is invoked with the raw epoll
// event mask.
func (l *EventLoop) Add(fd int, writable bool, handler func(events uint32) error) error {
	events := uint32(unix.EPOLLIN)
	if writable {
		events |= unix.EPOLLOUT
	}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: events, Fd: int32(fd)}); err != nil {
		return fmt.Errorf("transport: epoll_ctl add fd %d: %w", fd, err)
	}
	l.sources[fd] = handler
	return nil
}

// Modify updates the registered event mask for fd (used to arm/disarm
// EPOLLOUT once a client's outbox has drained or refilled).
func (l *EventLoop) Modify(fd int, writable bool) error {
	events := uint32(unix.EPOLLIN)
	if writable {
		events |= unix.EPOLLOUT
	}
	return unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Events: events, Fd: int32(fd)})
}

// Remove deregisters fd. It is safe to call even if fd was never added.
func (l *EventLoop) Remove(fd int) {
	_ = unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(l.sources, fd)
}

// Run services epoll_wait/dispatch rounds until stop is closed. timeoutMs
// bounds how long a single round can block, so a closed stop channel is
// noticed even with no fd activity. Timers such as per-output frame ticks
// are timerfds registered with Add like any other source.
func (l *EventLoop) Run(stop <-chan struct{}, timeoutMs int) error {
	events := make([]unix.EpollEvent, 64)
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		n, err := unix.EpollWait(l.epfd, events, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("transport: epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			handler, ok := l.sources[fd]
			if !ok {
				continue
			}
			if err := handler(events[i].Events); err != nil {
				return err
			}
		}
	}
}

// Close releases the epoll instance.
func (l *EventLoop) Close() error {
	return unix.Close(l.epfd)
}
