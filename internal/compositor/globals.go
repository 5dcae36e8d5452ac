package compositor

import (
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/output"
	"github.com/kestrelwm/kestrel/internal/seat"
	"github.com/kestrelwm/kestrel/internal/shm"
	"github.com/kestrelwm/kestrel/internal/xdgshell"
)

// BuildGlobals assembles the statically-known globals a freshly bound
// wl_registry advertises (spec.md §4.2, §6). wl_output and wl_seat
// globals are appended later, as outputs and seats are created, since
// spec.md §4.8 treats output/seat hotplug as placeholder static
// configuration accepted at startup rather than announced dynamically to
// already-bound clients.
func BuildGlobals(st *State) []Global {
	var globals []Global
	next := func() uint32 {
		n := uint32(len(globals))
		return n
	}

	globals = append(globals, Global{
		Name: next(), Interface: WlCompositorInterface.Name, Version: WlCompositorInterface.Version,
		Bind: func(st *State, c *ClientState, id ids.ObjectId, version uint32) error {
			_, err := c.Objects.Insert(id, &WlCompositorInterface, version, c)
			return err
		},
	})
	globals = append(globals, Global{
		Name: next(), Interface: WlSubcompositorInterface.Name, Version: WlSubcompositorInterface.Version,
		Bind: func(st *State, c *ClientState, id ids.ObjectId, version uint32) error {
			_, err := c.Objects.Insert(id, &WlSubcompositorInterface, version, c)
			return err
		},
	})
	globals = append(globals, Global{
		Name: next(), Interface: WlShmInterface.Name, Version: WlShmInterface.Version,
		Bind: func(st *State, c *ClientState, id ids.ObjectId, version uint32) error {
			_, err := c.Objects.Insert(id, &WlShmInterface, version, c)
			if err != nil {
				return err
			}
			for _, f := range shm.SupportedFormats {
				SendShmFormat(c.Conn, uint32(id), f)
			}
			return nil
		},
	})
	globals = append(globals, Global{
		Name: next(), Interface: WlXdgWmBaseInterface.Name, Version: WlXdgWmBaseInterface.Version,
		Bind: func(st *State, c *ClientState, id ids.ObjectId, version uint32) error {
			_, err := c.Objects.Insert(id, &WlXdgWmBaseInterface, version, &xdgshell.SerialAllocator{})
			return err
		},
	})
	globals = append(globals, Global{
		Name: next(), Interface: ZwpLinuxDmabufV1Interface.Name, Version: ZwpLinuxDmabufV1Interface.Version,
		Bind: func(st *State, c *ClientState, id ids.ObjectId, version uint32) error {
			_, err := c.Objects.Insert(id, &ZwpLinuxDmabufV1Interface, version, c)
			if err != nil {
				return err
			}
			SendDmabufFormat(c.Conn, uint32(id), uint32(shm.FormatARGB8888))
			SendDmabufFormat(c.Conn, uint32(id), uint32(shm.FormatXRGB8888))
			return nil
		},
	})
	return globals
}

// AddOutputGlobal registers o as a bindable wl_output global. Called once
// per output at startup (spec.md §4.8: outputs are "registered on
// hotplug (placeholder static configuration accepted)").
func AddOutputGlobal(st *State, o *output.Output) {
	name := uint32(len(st.globals))
	st.globals = append(st.globals, Global{
		Name: name, Interface: WlOutputInterface.Name, Version: WlOutputInterface.Version,
		Bind: func(st *State, c *ClientState, id ids.ObjectId, version uint32) error {
			_, err := c.Objects.Insert(id, &WlOutputInterface, version, o)
			if err != nil {
				return err
			}
			SendOutputState(c.Conn, uint32(id), o)
			return nil
		},
	})
}

// AddSeatGlobal registers s as a bindable wl_seat global.
func AddSeatGlobal(st *State, s *seat.Seat) {
	name := uint32(len(st.globals))
	st.globals = append(st.globals, Global{
		Name: name, Interface: WlSeatInterface.Name, Version: WlSeatInterface.Version,
		Bind: func(st *State, c *ClientState, id ids.ObjectId, version uint32) error {
			_, err := c.Objects.Insert(id, &WlSeatInterface, version, s)
			if err != nil {
				return err
			}
			SendSeatCapabilities(c.Conn, uint32(id), s.Capabilities())
			SendSeatName(c.Conn, uint32(id), s.Name)
			return nil
		},
	})
}
