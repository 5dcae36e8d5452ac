package transport

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/wire"
)

// Credentials are the uid/gid/pid of the client process, captured at
// accept time via SO_PEERCRED.
type Credentials struct {
	Uid uint32
	Gid uint32
	Pid uint32
}

// Client owns one client's socket, its inbound byte framer, its fd queue,
// and its outgoing (possibly deferred) write buffer. It implements
// wire.FdSource and wire.FdSink so wire.Reader/Writer can be driven
// directly against it.
type Client struct {
	ID          ids.ClientId
	Credentials Credentials

	fd     int
	framer wire.Framer

	mu      sync.Mutex
	fdQueue []int
	outbox  []byte
	outFds  []int
	closed  bool
}

// NewClient wraps an accepted connection fd.
func NewClient(id ids.ClientId, fd int, cred unix.Ucred) *Client {
	return &Client{
		ID:  id,
		fd:  fd,
		Credentials: Credentials{
			Uid: uint32(cred.Uid),
			Gid: uint32(cred.Gid),
			Pid: uint32(cred.Pid),
		},
	}
}

// Fd returns the client's socket fd, for epoll registration.
func (c *Client) Fd() int { return c.fd }

// PopFd implements wire.FdSource.
func (c *Client) PopFd() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.fdQueue) == 0 {
		return 0, false
	}
	fd := c.fdQueue[0]
	c.fdQueue = c.fdQueue[1:]
	return fd, true
}

// PushFd implements wire.FdSink: it queues an fd to ride out on the next
// sendmsg along with whatever bytes have already been queued.
func (c *Client) PushFd(fd int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outFds = append(c.outFds, fd)
}

const maxAncillaryFds = 28

// ReadMessages performs one non-blocking recvmsg, feeding any bytes into
// the framer and any ancillary fds into the fd queue, then drains as many
// complete messages as are now available.
func (c *Client) ReadMessages() ([]wire.Message, error) {
	buf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(maxAncillaryFds*4))
	n, oobn, _, _, err := unix.Recvmsg(c.fd, buf, oob, 0)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errEOF
	}
	c.framer.Feed(buf[:n])
	if oobn > 0 {
		fds, err := parseAncillaryFds(oob[:oobn])
		if err != nil {
			return nil, fmt.Errorf("transport: parse SCM_RIGHTS: %w", err)
		}
		c.mu.Lock()
		c.fdQueue = append(c.fdQueue, fds...)
		c.mu.Unlock()
	}

	var msgs []wire.Message
	for {
		msg, ok, err := c.framer.Next()
		if err != nil {
			return msgs, err
		}
		if !ok {
			break
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func parseAncillaryFds(oob []byte) ([]int, error) {
	cmsgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, err
	}
	var fds []int
	for _, cmsg := range cmsgs {
		f, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			continue
		}
		fds = append(fds, f...)
	}
	return fds, nil
}

// QueueMessage appends a fully framed outgoing message to the client's
// deferred write buffer (the event loop flushes it on write-readiness).
func (c *Client) QueueMessage(objectId uint32, opcode uint16, args []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outbox = wire.Build(c.outbox, objectId, opcode, args)
}

// Flush writes as much of the pending outbox as the socket accepts right
// now, sending any queued fds as ancillary data on the same sendmsg. It
// returns true once the outbox has fully drained.
func (c *Client) Flush() (drained bool, err error) {
	c.mu.Lock()
	buf := c.outbox
	fds := c.outFds
	c.mu.Unlock()

	if len(buf) == 0 {
		return true, nil
	}

	var oob []byte
	if len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}
	n, err := unix.SendmsgN(c.fd, buf, oob, nil, 0)
	if err != nil {
		if err == unix.EAGAIN {
			return false, nil
		}
		return false, err
	}

	c.mu.Lock()
	c.outbox = c.outbox[n:]
	if n > 0 {
		c.outFds = nil
	}
	drained = len(c.outbox) == 0
	c.mu.Unlock()
	return drained, nil
}

// Close closes the underlying socket and any file descriptors still
// sitting unread in the fd queue (they belong to messages that will never
// be dispatched now).
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	fds := c.fdQueue
	c.fdQueue = nil
	c.mu.Unlock()

	for _, fd := range fds {
		unix.Close(fd)
	}
	return unix.Close(c.fd)
}

var errEOF = fmt.Errorf("transport: client socket EOF")

// IsEOF reports whether err denotes a clean client disconnect.
func IsEOF(err error) bool { return err == errEOF }
