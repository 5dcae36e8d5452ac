package wire

import "fmt"

// FdSource supplies file descriptors received out-of-band via SCM_RIGHTS,
// in the order they arrived. The transport layer pops from it as "fd"
// arguments are decoded (spec.md §4.1: "fd argument ... pops from the
// queue").
type FdSource interface {
	PopFd() (fd int, ok bool)
}

// Reader decodes one message's argument bytes according to a Signature.
type Reader struct {
	buf []byte
	off int
	fds FdSource
}

// NewReader creates a Reader over a message's argument bytes. fds may be
// nil if the message signature contains no "fd" arguments.
func NewReader(args []byte, fds FdSource) *Reader {
	return &Reader{buf: args, fds: fds}
}

func (r *Reader) remaining() int { return len(r.buf) - r.off }

func (r *Reader) take(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, ErrShortMessage
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Int decodes a plain i32 argument.
func (r *Reader) Int() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(byteOrder.Uint32(b)), nil
}

// Uint decodes a plain u32 argument.
func (r *Reader) Uint() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(b), nil
}

// FixedArg decodes a 24.8 fixed-point argument.
func (r *Reader) FixedArg() (Fixed, error) {
	u, err := r.Uint()
	return Fixed(u), err
}

// String decodes a NUL-terminated, 4-byte padded string argument. An
// advertised length of 0 decodes to the empty string when nullable is set,
// matching Wayland's encoding of null strings as a zero length with no
// trailing bytes.
func (r *Reader) String(nullable bool) (string, error) {
	n, err := r.Uint()
	if err != nil {
		return "", err
	}
	if n == 0 {
		if nullable {
			return "", nil
		}
		return "", fmtArgErr(0, ArgSpec{Kind: KindString}, "unexpected null string")
	}
	b, err := r.take(Pad4(int(n)))
	if err != nil {
		return "", err
	}
	if int(n) > len(b) || b[n-1] != 0 {
		return "", fmtArgErr(0, ArgSpec{Kind: KindString}, "missing NUL terminator")
	}
	return string(b[:n-1]), nil
}

// Array decodes a length-prefixed, 4-byte padded opaque byte array.
func (r *Reader) Array() ([]byte, error) {
	n, err := r.Uint()
	if err != nil {
		return nil, err
	}
	b, err := r.take(Pad4(int(n)))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b[:n])
	return out, nil
}

// Object decodes an object-id argument (0 is the null object).
func (r *Reader) Object(nullable bool) (uint32, error) {
	id, err := r.Uint()
	if err != nil {
		return 0, err
	}
	if id == 0 && !nullable {
		return 0, fmtArgErr(0, ArgSpec{Kind: KindObject}, "unexpected null object")
	}
	return id, nil
}

// NewId decodes a new_id argument: the raw 32-bit id the client proposes
// (or 0 when the server is expected to allocate, as for bound globals).
func (r *Reader) NewId() (uint32, error) {
	return r.Uint()
}

// Fd pops the next queued file descriptor. The wire format carries no
// bytes for fd arguments; the value travels entirely out-of-band.
func (r *Reader) Fd() (int, error) {
	if r.fds == nil {
		return 0, ErrNoFd
	}
	fd, ok := r.fds.PopFd()
	if !ok {
		return 0, ErrNoFd
	}
	return fd, nil
}

// Done reports whether every byte of the argument buffer has been consumed.
// Dispatch treats leftover bytes as a signature mismatch.
func (r *Reader) Done() bool { return r.remaining() == 0 }

// Decode walks sig and invokes visit for each argument with its decoded
// value as `any` (one of int32, uint32, Fixed, string, uint32 object id,
// []byte, or int fd). It is a convenience wrapper for handlers that don't
// need the concrete accessor methods above.
func (r *Reader) Decode(sig Signature, visit func(i int, v any) error) error {
	for i, spec := range sig {
		var (
			v   any
			err error
		)
		switch spec.Kind {
		case KindInt:
			v, err = r.Int()
		case KindUint:
			v, err = r.Uint()
		case KindFixed:
			v, err = r.FixedArg()
		case KindString:
			v, err = r.String(spec.Nullable)
		case KindObject:
			v, err = r.Object(spec.Nullable)
		case KindNewId:
			v, err = r.NewId()
		case KindArray:
			v, err = r.Array()
		case KindFd:
			v, err = r.Fd()
		}
		if err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
		if err := visit(i, v); err != nil {
			return err
		}
	}
	if !r.Done() {
		return fmtArgErr(len(sig), ArgSpec{}, "trailing bytes after decoding signature")
	}
	return nil
}
