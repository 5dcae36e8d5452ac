package surface

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionAddUnion(t *testing.T) {
	var r Region
	r.Add(image.Rect(0, 0, 10, 10))
	r.Add(image.Rect(5, 5, 15, 15))
	require.Equal(t, image.Rect(0, 0, 15, 15), r.Bounds())
}

func TestRegionAddIgnoresEmptyRect(t *testing.T) {
	var r Region
	r.Add(image.Rectangle{})
	require.True(t, r.Empty())
}

func TestRegionContains(t *testing.T) {
	var r Region
	r.Add(image.Rect(0, 0, 10, 10))
	require.True(t, r.Contains(image.Pt(5, 5)))
	require.False(t, r.Contains(image.Pt(20, 20)))
}

func TestRegionSubtractRemovesFullyContainedRects(t *testing.T) {
	var r Region
	r.Add(image.Rect(0, 0, 5, 5))
	r.Add(image.Rect(100, 100, 110, 110))
	r.Subtract(image.Rect(0, 0, 5, 5))
	require.Len(t, r.Rects(), 1)
	require.Equal(t, image.Rect(100, 100, 110, 110), r.Rects()[0])
}
