// Package transport owns the listening Unix socket, per-client sockets,
// and the epoll-driven event loop that multiplexes them together with the
// libinput fd and timers (spec.md §4.1, §5).
package transport

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Listener is the compositor's listening Wayland socket, bound to
// $XDG_RUNTIME_DIR/wayland-N for the smallest free N.
type Listener struct {
	fd       int
	path     string
	DisplayName string
}

// Listen binds the listening socket per spec.md §4.1 and §6: it picks the
// smallest free wayland-N suffix under $XDG_RUNTIME_DIR, unlinking a stale
// socket file at that path first, and returns the display basename callers
// should export as WAYLAND_DISPLAY for child processes.
func Listen() (*Listener, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return nil, fmt.Errorf("transport: XDG_RUNTIME_DIR is not set")
	}
	if err := os.MkdirAll(runtimeDir, 0700); err != nil {
		return nil, fmt.Errorf("transport: create XDG_RUNTIME_DIR: %w", err)
	}

	for n := 0; n < 32; n++ {
		name := fmt.Sprintf("wayland-%d", n)
		path := filepath.Join(runtimeDir, name)
		lockPath := path + ".lock"

		lockFd, err := unix.Open(lockPath, unix.O_CREAT|unix.O_CLOEXEC|unix.O_RDWR, 0600)
		if err != nil {
			continue
		}
		if err := unix.Flock(lockFd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
			unix.Close(lockFd)
			continue
		}
		// We hold the lock; a stale socket file is safe to remove.
		_ = os.Remove(path)

		fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, 0)
		if err != nil {
			unix.Close(lockFd)
			return nil, fmt.Errorf("transport: socket: %w", err)
		}
		addr := &unix.SockaddrUnix{Name: path}
		if err := unix.Bind(fd, addr); err != nil {
			unix.Close(fd)
			unix.Close(lockFd)
			continue
		}
		if err := unix.Listen(fd, 128); err != nil {
			unix.Close(fd)
			unix.Close(lockFd)
			return nil, fmt.Errorf("transport: listen: %w", err)
		}
		return &Listener{fd: fd, path: path, DisplayName: name}, nil
	}
	return nil, fmt.Errorf("transport: no free wayland-N socket under %s", runtimeDir)
}

// Fd returns the listening socket's file descriptor, for epoll
// registration.
func (l *Listener) Fd() int { return l.fd }

// Accept accepts one pending connection and reads the peer's credentials.
// Returns (-1 fd, nil err) is never produced; on EAGAIN the caller gets
// unix.EAGAIN and should simply wait for the next readable notification.
func (l *Listener) Accept() (fd int, cred unix.Ucred, err error) {
	connFd, _, err := unix.Accept4(l.fd, unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK)
	if err != nil {
		return -1, unix.Ucred{}, err
	}
	ucred, err := unix.GetsockoptUcred(connFd, unix.SOL_SOCKET, unix.SO_PEERCRED)
	if err != nil {
		unix.Close(connFd)
		return -1, unix.Ucred{}, fmt.Errorf("transport: SO_PEERCRED: %w", err)
	}
	return connFd, *ucred, nil
}

// Close removes the listening socket and its lock file.
func (l *Listener) Close() error {
	_ = os.Remove(l.path)
	_ = os.Remove(l.path + ".lock")
	return unix.Close(l.fd)
}
