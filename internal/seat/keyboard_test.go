package seat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/kestrel/internal/ids"
)

type fakeKeymapState struct {
	keys map[uint32]bool
}

func newFakeKeymapState() *fakeKeymapState { return &fakeKeymapState{keys: map[uint32]bool{}} }

func (f *fakeKeymapState) UpdateKey(keycode uint32, pressed bool) { f.keys[keycode] = pressed }
func (f *fakeKeymapState) Modifiers() (uint32, uint32, uint32, uint32) { return 0, 0, 0, 0 }

type fakeRepeatTimer struct {
	scheduled bool
	fire      func()
}

func (f *fakeRepeatTimer) Schedule(delay, interval time.Duration, fire func()) {
	f.scheduled = true
	f.fire = fire
}
func (f *fakeRepeatTimer) Stop() { f.scheduled = false }

// TestKeyRepeatStartsOnPressStopsOnRelease covers property 5 and
// Scenario B: a held key schedules repeat, releasing it cancels that
// schedule.
func TestKeyRepeatStartsOnPressStopsOnRelease(t *testing.T) {
	state := newFakeKeymapState()
	timer := &fakeRepeatTimer{}
	kb := NewKeyboard(state, timer)
	kb.Enter(ids.NewWindowId())

	kb.Key(30, true) // evdev 22 ('u') + 8, not a modifier
	require.True(t, timer.scheduled)
	require.True(t, state.keys[30])

	kb.Key(30, false)
	require.False(t, timer.scheduled)
	require.False(t, state.keys[30])
}

func TestModifierKeysDoNotRepeat(t *testing.T) {
	state := newFakeKeymapState()
	timer := &fakeRepeatTimer{}
	kb := NewKeyboard(state, timer)

	kb.Key(keyLeftShift, true)
	require.False(t, timer.scheduled)
}

func TestLeaveCancelsRepeat(t *testing.T) {
	state := newFakeKeymapState()
	timer := &fakeRepeatTimer{}
	kb := NewKeyboard(state, timer)
	kb.Enter(ids.NewWindowId())

	kb.Key(30, true)
	require.True(t, timer.scheduled)

	kb.Leave()
	require.False(t, timer.scheduled)
	require.False(t, kb.HasFocus)
}

func TestToWaylandKeycodeOffsetsByEight(t *testing.T) {
	require.Equal(t, uint32(38), ToWaylandKeycode(30))
}
