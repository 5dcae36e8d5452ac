package shm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func tmpPoolFile(t *testing.T, size int64) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "shm-pool-*")
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	t.Cleanup(func() { f.Close() })
	return f
}

func TestCreatePoolValidatesSize(t *testing.T) {
	f := tmpPoolFile(t, 4096)
	_, err := CreatePool(int(f.Fd()), 0)
	require.Error(t, err)

	pool, err := CreatePool(int(f.Fd()), 4096)
	require.NoError(t, err)
	require.Equal(t, 4096, pool.Size())
}

func TestCreateBufferBoundsChecking(t *testing.T) {
	f := tmpPoolFile(t, 65536)
	pool, err := CreatePool(int(f.Fd()), 65536)
	require.NoError(t, err)

	// Fits inside the pool: offset=0, w=64,h=64,stride=256 (Scenario A).
	buf, err := CreateBuffer(pool, 0, 64, 64, 256, FormatXRGB8888)
	require.NoError(t, err)
	require.Equal(t, 64, buf.Width)

	// One byte over the end of the pool.
	_, err = CreateBuffer(pool, 65536-256*64+1, 64, 64, 256, FormatXRGB8888)
	require.Error(t, err)

	// Stride too small for the declared width/format.
	_, err = CreateBuffer(pool, 0, 64, 64, 100, FormatXRGB8888)
	require.Error(t, err)

	// Unsupported format.
	_, err = CreateBuffer(pool, 0, 64, 64, 256, Format(99))
	require.Error(t, err)
}

func TestPoolResizeGrowOnly(t *testing.T) {
	f := tmpPoolFile(t, 4096)
	pool, err := CreatePool(int(f.Fd()), 4096)
	require.NoError(t, err)
	require.NoError(t, pool.Resize(8192))
	require.Equal(t, 8192, pool.Size())
	require.Error(t, pool.Resize(4096))
}

func TestBufferBusyTracking(t *testing.T) {
	f := tmpPoolFile(t, 4096)
	pool, err := CreatePool(int(f.Fd()), 4096)
	require.NoError(t, err)
	buf, err := CreateBuffer(pool, 0, 8, 8, 32, FormatARGB8888)
	require.NoError(t, err)

	require.False(t, buf.IsBusy())
	buf.MarkBusy()
	require.True(t, buf.IsBusy())
	buf.MarkIdle()
	require.False(t, buf.IsBusy())
}

func TestPoolSurvivesDestroyWhileBufferLive(t *testing.T) {
	f := tmpPoolFile(t, 4096)
	pool, err := CreatePool(int(f.Fd()), 4096)
	require.NoError(t, err)
	buf, err := CreateBuffer(pool, 0, 8, 8, 32, FormatARGB8888)
	require.NoError(t, err)

	// Client destroys the pool object; the buffer still holds a ref so
	// the memory must remain valid until the buffer also releases.
	pool.ReleaseClientRef()
	buf.WithContents(func(data []byte, format Format) {
		require.Len(t, data, 32*8)
	})
	buf.Release()
}
