package wm

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMasterStackPartitionIsExact covers property 9: stack window
// heights sum exactly to the available height, with no gap or overlap,
// regardless of whether the height divides evenly.
func TestMasterStackPartitionIsExact(t *testing.T) {
	bounds := image.Rect(0, 0, 1920, 1080)
	layout := MasterStack{}

	for _, n := range []int{2, 3, 4, 5, 7} {
		geoms := layout.Arrange(bounds, n)
		require.Len(t, geoms, n)

		// Master occupies full height.
		require.Equal(t, bounds.Min.Y, geoms[0].Min.Y)
		require.Equal(t, bounds.Max.Y, geoms[0].Max.Y)

		totalStackHeight := 0
		for i := 1; i < n; i++ {
			totalStackHeight += geoms[i].Dy()
			require.Equal(t, geoms[0].Max.X, geoms[i].Min.X, "stack windows start exactly where master ends")
			require.Equal(t, bounds.Max.X, geoms[i].Max.X)
			if i > 1 {
				require.Equal(t, geoms[i-1].Max.Y, geoms[i].Min.Y, "no gap between stacked windows")
			}
		}
		require.Equal(t, bounds.Dy(), totalStackHeight, "stack heights sum exactly to the available height")
	}
}

func TestMasterStackSingleWindowFillsBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 800, 600)
	geoms := MasterStack{}.Arrange(bounds, 1)
	require.Equal(t, []image.Rectangle{bounds}, geoms)
}

func TestMasterStackZeroWindowsReturnsNil(t *testing.T) {
	require.Nil(t, MasterStack{}.Arrange(image.Rect(0, 0, 10, 10), 0))
}

func TestFloatingCascadesWithinBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 2000, 2000)
	geoms := Floating{}.Arrange(bounds, 3)
	require.Len(t, geoms, 3)
	for _, g := range geoms {
		require.True(t, g.In(bounds))
	}
	require.NotEqual(t, geoms[0].Min, geoms[1].Min)
}
