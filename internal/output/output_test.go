package output

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/kestrel/internal/ids"
)

func TestLayoutPlacesOutputsSideBySide(t *testing.T) {
	l := NewLayout()
	a := New(ids.NewOutputId(), "DP-1")
	a.Modes = []Mode{{Width: 1920, Height: 1080}}
	a.SetMode(a.Modes[0])
	l.Add(a)

	b := New(ids.NewOutputId(), "DP-2")
	b.Modes = []Mode{{Width: 1280, Height: 720}}
	b.SetMode(b.Modes[0])
	l.Add(b)

	require.Equal(t, image.Pt(0, 0), a.Position)
	require.Equal(t, image.Pt(1920, 0), b.Position)
	require.Equal(t, image.Rect(0, 0, 1920+1280, 1080), l.Bounds())
}

func TestLayoutAtResolvesOutputForPoint(t *testing.T) {
	l := NewLayout()
	a := New(ids.NewOutputId(), "DP-1")
	a.Modes = []Mode{{Width: 1920, Height: 1080}}
	a.SetMode(a.Modes[0])
	l.Add(a)

	got, ok := l.At(image.Pt(100, 100))
	require.True(t, ok)
	require.Equal(t, a, got)

	_, ok = l.At(image.Pt(5000, 5000))
	require.False(t, ok)
}

func TestSetModeRejectsUnlistedMode(t *testing.T) {
	o := New(ids.NewOutputId(), "DP-1")
	o.Modes = []Mode{{Width: 1920, Height: 1080}}
	require.False(t, o.SetMode(Mode{Width: 640, Height: 480}))
}
