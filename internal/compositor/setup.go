package compositor

import (
	"fmt"

	"github.com/kestrelwm/kestrel/internal/collab"
	"github.com/kestrelwm/kestrel/internal/config"
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/output"
	"github.com/kestrelwm/kestrel/internal/seat"
	"github.com/kestrelwm/kestrel/internal/wm"
	"github.com/kestrelwm/kestrel/internal/xkb"
)

// AddOutput constructs, places and advertises a new placeholder output
// with one mode, and gives it its own workspace (spec.md §4.8, §4.9).
// cmd/kestrel calls this once per configured output at startup.
func (st *State) AddOutput(cfg config.OutputConfig) *output.Output {
	mode := output.Mode{Width: cfg.Width, Height: cfg.Height, RefreshMilliHz: cfg.RefreshMilliHz, Preferred: true}
	o := output.New(ids.NewOutputId(), cfg.Name)
	o.Modes = []output.Mode{mode}
	o.SetMode(mode)
	o.Scale = cfg.Scale
	if o.Scale == 0 {
		o.Scale = 1
	}
	st.Outputs.Add(o)

	var layout wm.Layout
	if cfg.Layout == "floating" {
		layout = wm.Floating{}
	} else {
		layout = wm.MasterStack{MasterFraction: cfg.MasterFraction}
	}
	st.addWorkspace(o, o.Name, layout)

	AddOutputGlobal(st, o)
	return o
}

// AddSeat constructs a seat with a keyboard, pointer and touch device
// wired against this compositor's hit-testing and event-loop timer
// infrastructure, and advertises it (spec.md §4.6, §4.7). cfgProvider
// supplies the repeat/acceleration tunables spec.md §4.11 leaves to
// configuration rather than protocol.
func (st *State) AddSeat(cfg config.SeatConfig, cfgProvider collab.ConfigProvider) (*seat.Seat, *routerSink, error) {
	km, err := xkb.Compile(xkb.RMLVO{
		Rules: cfg.XkbRules, Model: cfg.XkbModel, Layout: cfg.XkbLayout,
		Variant: cfg.XkbVariant, Options: cfg.XkbOptions,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("compositor: seat %q: compile keymap: %w", cfg.Name, err)
	}

	repeatTimer, err := newRepeatTimer(st.Loop)
	if err != nil {
		return nil, nil, fmt.Errorf("compositor: seat %q: repeat timer: %w", cfg.Name, err)
	}

	s := seat.New(ids.NewSeatId(), cfg.Name)
	s.Keyboard = seat.NewKeyboard(km.NewState(), repeatTimer)
	hit := &windowmanagerHitTester{st: st}
	s.Pointer = seat.NewPointer(hit)
	s.Pointer.Bounds = st.Outputs
	s.Touch = seat.NewTouch(hit)

	var naturalScroll bool
	if cfgProvider != nil {
		if rate, delay := cfgProvider.KeyRepeat(); rate > 0 {
			s.Keyboard.RepeatRate = rate
			s.Keyboard.RepeatDelay = delay
		}
		s.Pointer.AccelSpeed, s.Pointer.AccelProfile = cfgProvider.PointerAccel()
		naturalScroll = cfgProvider.NaturalScroll()
	}

	st.Seats = append(st.Seats, s)
	router := NewSeatRouter(st, s)
	st.seatRouters = append(st.seatRouters, router)
	AddSeatGlobal(st, s)
	return s, newRouterSink(router, naturalScroll), nil
}
