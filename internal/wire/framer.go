package wire

// Framer peels complete messages off an accumulating byte buffer, as bytes
// arrive from repeated socket reads. It holds no fds itself; the fd queue
// lives on the transport's Client and is threaded through Reader separately
// so that fd consumption order matches message consumption order exactly.
type Framer struct {
	buf []byte
}

// Feed appends newly read bytes.
func (f *Framer) Feed(b []byte) {
	f.buf = append(f.buf, b...)
}

// Next extracts the next complete Message, if one is fully buffered. ok is
// false (with a nil error) when more bytes are needed.
func (f *Framer) Next() (msg Message, ok bool, err error) {
	if len(f.buf) < HeaderSize {
		return Message{}, false, nil
	}
	h, err := DecodeHeader(f.buf)
	if err != nil {
		return Message{}, false, err
	}
	if int(h.Size) < HeaderSize {
		return Message{}, false, ErrUnalignedSize
	}
	if len(f.buf) < int(h.Size) {
		return Message{}, false, nil
	}
	args := make([]byte, int(h.Size)-HeaderSize)
	copy(args, f.buf[HeaderSize:h.Size])
	f.buf = f.buf[h.Size:]
	return Message{Header: h, Args: args}, true, nil
}

// Pending reports how many bytes are buffered but not yet a complete
// message.
func (f *Framer) Pending() int { return len(f.buf) }
