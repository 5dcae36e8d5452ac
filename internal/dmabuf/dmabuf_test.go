package dmabuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamsAddRejectsTooManyPlanes(t *testing.T) {
	var p Params
	for i := 0; i < MaxPlanes; i++ {
		require.NoError(t, p.Add(Plane{Fd: i, Stride: 256}))
	}
	require.Error(t, p.Add(Plane{Fd: 99, Stride: 256}))
}

func TestCreateValidatesPlanesAndDimensions(t *testing.T) {
	var p Params
	require.NoError(t, p.Add(Plane{Fd: 3, Offset: 0, Stride: 256}))

	buf, err := Create(p, 64, 64, 0x34325258) // DRM_FORMAT_XRGB8888
	require.NoError(t, err)
	require.Equal(t, 64, buf.Width)
	require.Equal(t, 64, buf.Height)

	_, err = Create(Params{}, 64, 64, 0)
	require.Error(t, err, "no planes must be rejected")

	_, err = Create(p, 0, 64, 0)
	require.Error(t, err, "non-positive dimensions must be rejected")
}

func TestCreateRejectsInvalidPlane(t *testing.T) {
	var p Params
	require.NoError(t, p.Add(Plane{Fd: -1, Stride: 256}))
	_, err := Create(p, 64, 64, 0)
	require.Error(t, err)

	var p2 Params
	require.NoError(t, p2.Add(Plane{Fd: 3, Stride: 0}))
	_, err = Create(p2, 64, 64, 0)
	require.Error(t, err)
}

func TestBufferBusyTracking(t *testing.T) {
	var p Params
	require.NoError(t, p.Add(Plane{Fd: 3, Stride: 256}))
	buf, err := Create(p, 64, 64, 0)
	require.NoError(t, err)

	require.False(t, buf.IsBusy())
	buf.MarkBusy()
	require.True(t, buf.IsBusy())
	buf.MarkIdle()
	require.False(t, buf.IsBusy())
}
