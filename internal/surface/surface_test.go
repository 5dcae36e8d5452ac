package surface

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/kestrel/internal/ids"
)

type fakeBuffer struct{ busy bool }

func (f *fakeBuffer) IsBusy() bool { return f.busy }
func (f *fakeBuffer) MarkBusy()    { f.busy = true }
func (f *fakeBuffer) MarkIdle()    { f.busy = false }

func newTestSurface() *Surface {
	return New(ids.NewWindowId(), 1)
}

// TestCommitPromotesPendingToCurrent covers property 2: a surface's
// current state only ever changes on commit.
func TestCommitPromotesPendingToCurrent(t *testing.T) {
	s := newTestSurface()
	require.False(t, s.IsMapped())

	buf := NewAttachedBuffer(&fakeBuffer{}, nil)
	s.Attach(buf, 0, 0)
	require.False(t, s.IsMapped(), "attach alone must not affect current state before commit")

	s.Commit()
	require.True(t, s.IsMapped())
	require.Same(t, buf, s.Current().Buffer)
}

// TestBufferReleaseFiresExactlyOnce covers property 3.
func TestBufferReleaseFiresExactlyOnce(t *testing.T) {
	s := newTestSurface()
	releaseCount := 0
	buf1 := NewAttachedBuffer(&fakeBuffer{}, func() { releaseCount++ })
	buf2 := NewAttachedBuffer(&fakeBuffer{}, nil)

	s.Attach(buf1, 0, 0)
	s.Commit()
	require.Equal(t, 0, releaseCount, "buffer still current, must not release")

	s.Attach(buf2, 0, 0)
	s.Commit()
	require.Equal(t, 1, releaseCount, "replaced buffer releases exactly once")

	// Re-committing without changing the buffer must not re-fire release.
	s.Damage(image.Rect(0, 0, 1, 1))
	s.Commit()
	require.Equal(t, 1, releaseCount)
}

// TestDamageAccumulatesUntilCommit covers property 8.
func TestDamageAccumulatesUntilCommit(t *testing.T) {
	s := newTestSurface()
	s.Damage(image.Rect(0, 0, 10, 10))
	s.Damage(image.Rect(20, 20, 30, 30))
	require.Len(t, s.Pending().Damage.Rects(), 2)

	s.Commit()
	require.Len(t, s.Current().Damage.Rects(), 2)
	// The next pending cycle starts clean.
	require.True(t, s.Pending().Damage.Empty())
}

func TestRoleAssignedOnce(t *testing.T) {
	s := newTestSurface()
	require.NoError(t, s.SetRole(RoleToplevel, "toplevel-state"))
	err := s.SetRole(RolePopup, "popup-state")
	require.Error(t, err)
}

func TestDestroyReleasesCurrentBuffer(t *testing.T) {
	s := newTestSurface()
	released := false
	buf := NewAttachedBuffer(&fakeBuffer{}, func() { released = true })
	s.Attach(buf, 0, 0)
	s.Commit()

	releases := s.Destroy()
	require.Len(t, releases, 1)
	require.True(t, released)
}
