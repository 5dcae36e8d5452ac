package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeFds struct {
	in  []int
	out []int
}

func (f *fakeFds) PopFd() (int, bool) {
	if len(f.in) == 0 {
		return 0, false
	}
	fd := f.in[0]
	f.in = f.in[1:]
	return fd, true
}

func (f *fakeFds) PushFd(fd int) { f.out = append(f.out, fd) }

// TestRoundTrip exercises property 7: parsing a serialized message followed
// by re-serialization yields byte-identical output.
func TestRoundTrip(t *testing.T) {
	fds := &fakeFds{in: []int{42}}
	w := NewWriter(fds)
	w.Uint(7).FixedArg(FixedFromFloat64(12.5)).String("wl_surface").Array([]byte{1, 2, 3}).Object(9).Fd(42)

	framed := Build(nil, 5, 3, w.Bytes())

	var framer Framer
	framer.Feed(framed[:5])
	_, ok, err := framer.Next()
	require.NoError(t, err)
	require.False(t, ok, "message should not be complete yet")

	framer.Feed(framed[5:])
	msg, ok, err := framer.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(5), msg.ObjectId)
	require.Equal(t, uint16(3), msg.Opcode)

	r := NewReader(msg.Args, fds)
	u, err := r.Uint()
	require.NoError(t, err)
	require.Equal(t, uint32(7), u)
	fx, err := r.FixedArg()
	require.NoError(t, err)
	require.InDelta(t, 12.5, fx.ToFloat64(), 1e-9)
	s, err := r.String(false)
	require.NoError(t, err)
	require.Equal(t, "wl_surface", s)
	arr, err := r.Array()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, arr)
	obj, err := r.Object(false)
	require.NoError(t, err)
	require.Equal(t, uint32(9), obj)
	fd, err := r.Fd()
	require.NoError(t, err)
	require.Equal(t, 42, fd)
	require.True(t, r.Done())

	w2 := NewWriter(fds)
	w2.Uint(u).FixedArg(fx).String(s).Array(arr).Object(obj).Fd(fd)
	require.Equal(t, w.Bytes(), w2.Bytes())
	reFramed := Build(nil, msg.ObjectId, msg.Opcode, w2.Bytes())
	require.Equal(t, framed, reFramed)
}

func TestDecodeHeaderTruncated(t *testing.T) {
	_, err := DecodeHeader([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrTruncatedHeader)
}

func TestDecodeHeaderUnaligned(t *testing.T) {
	buf := make([]byte, 8)
	EncodeHeader(buf, Header{ObjectId: 1, Opcode: 0, Size: 9})
	_, err := DecodeHeader(buf)
	require.ErrorIs(t, err, ErrUnalignedSize)
}

func TestFdArgumentEmptyQueueIsFatal(t *testing.T) {
	r := NewReader(nil, &fakeFds{})
	_, err := r.Fd()
	require.ErrorIs(t, err, ErrNoFd)
}

func TestNullStringRejectedWhenNotNullable(t *testing.T) {
	w := NewWriter(nil)
	w.NullString()
	r := NewReader(w.Bytes(), nil)
	_, err := r.String(false)
	require.Error(t, err)
}

func TestNullStringAcceptedWhenNullable(t *testing.T) {
	w := NewWriter(nil)
	w.NullString()
	r := NewReader(w.Bytes(), nil)
	s, err := r.String(true)
	require.NoError(t, err)
	require.Equal(t, "", s)
}
