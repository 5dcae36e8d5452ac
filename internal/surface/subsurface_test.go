package surface

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSyncSubsurfaceCommitsWithParent implements Scenario D: a
// synchronized subsurface's committed content only becomes visible when
// its parent next commits, not on its own commit.
func TestSyncSubsurfaceCommitsWithParent(t *testing.T) {
	parent := newTestSurface()
	child := newTestSurface()
	require.NoError(t, child.MakeSubsurface(parent))

	buf := NewAttachedBuffer(&fakeBuffer{}, nil)
	child.Attach(buf, 0, 0)
	child.Commit()
	require.False(t, child.IsMapped(), "synced subsurface must cache, not promote, on its own commit")

	parent.Commit()
	require.True(t, child.IsMapped(), "parent commit must apply the child's cached state")
	require.Same(t, buf, child.Current().Buffer)
}

func TestDesyncSubsurfaceCommitsImmediately(t *testing.T) {
	parent := newTestSurface()
	child := newTestSurface()
	require.NoError(t, child.MakeSubsurface(parent))
	child.SetDesync()

	buf := NewAttachedBuffer(&fakeBuffer{}, nil)
	child.Attach(buf, 0, 0)
	child.Commit()
	require.True(t, child.IsMapped(), "desynced subsurface promotes on its own commit")
}

func TestSyncCascadesThroughGrandchild(t *testing.T) {
	parent := newTestSurface()
	child := newTestSurface()
	grandchild := newTestSurface()
	require.NoError(t, child.MakeSubsurface(parent))
	require.NoError(t, grandchild.MakeSubsurface(child))

	buf := NewAttachedBuffer(&fakeBuffer{}, nil)
	grandchild.Attach(buf, 0, 0)
	grandchild.Commit()
	require.False(t, grandchild.IsMapped())

	child.Commit()
	require.False(t, grandchild.IsMapped(), "grandchild stays cached until the root-most commit cascades through its synced chain")

	parent.Commit()
	require.True(t, grandchild.IsMapped())
}

func TestPlaceAboveReordersChildren(t *testing.T) {
	parent := newTestSurface()
	a := newTestSurface()
	b := newTestSurface()
	c := newTestSurface()
	require.NoError(t, a.MakeSubsurface(parent))
	require.NoError(t, b.MakeSubsurface(parent))
	require.NoError(t, c.MakeSubsurface(parent))
	require.Equal(t, []*Surface{a, b, c}, parent.Children())

	require.NoError(t, parent.PlaceAbove(a, c))
	require.Equal(t, []*Surface{b, c, a}, parent.Children())
}

func TestSubsurfaceCannotParentItself(t *testing.T) {
	s := newTestSurface()
	require.Error(t, s.MakeSubsurface(s))
}
