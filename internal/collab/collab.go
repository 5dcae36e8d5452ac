// Package collab defines the compositor's boundary interfaces — the
// seams spec.md §6 describes between kestrel's core and the rest of a
// desktop session (configuration, workspace/notification/power events,
// theming) without committing to any particular shell implementation
// (spec.md §6: "no concrete shell is specified; these are the
// collaborator interfaces a shell implements against").
package collab

import (
	"time"

	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/seat"
)

// ConfigProvider supplies the tunables spec.md leaves to configuration
// rather than protocol: key repeat timing, pointer behavior, and XKB
// layout selection. internal/config's file-backed adapter is the only
// concrete implementation in this repo.
type ConfigProvider interface {
	KeyRepeat() (rate int, delay time.Duration)
	PointerAccel() (speed float64, profile seat.AccelProfile)
	NaturalScroll() bool
	XkbNames() (rules, model, layout, variant, options string)

	// Subscribe registers onChange to be called after the configuration
	// is reloaded (spec.md §4.11: "re-read on SIGHUP"). It returns an
	// unsubscribe function.
	Subscribe(onChange func()) (unsubscribe func())
}

// WorkspaceEventSink receives workspace lifecycle notifications a shell
// (taskbar, overview) would want to render, decoupling internal/wm from
// any specific shell surface (spec.md §4.9, §6).
type WorkspaceEventSink interface {
	WindowMapped(output ids.OutputId, workspace ids.WorkspaceId, window ids.WindowId)
	WindowUnmapped(output ids.OutputId, workspace ids.WorkspaceId, window ids.WindowId)
	WindowActivated(window ids.WindowId)
	WorkspaceActivated(output ids.OutputId, workspace ids.WorkspaceId)
}

// NoopWorkspaceEventSink discards every event.
type NoopWorkspaceEventSink struct{}

func (NoopWorkspaceEventSink) WindowMapped(ids.OutputId, ids.WorkspaceId, ids.WindowId)   {}
func (NoopWorkspaceEventSink) WindowUnmapped(ids.OutputId, ids.WorkspaceId, ids.WindowId) {}
func (NoopWorkspaceEventSink) WindowActivated(ids.WindowId)                               {}
func (NoopWorkspaceEventSink) WorkspaceActivated(ids.OutputId, ids.WorkspaceId)           {}

// NotificationEventSink lets a shell surface present urgency/attention
// requests a client raises (e.g. xdg_toplevel's "requires attention"
// affordance), which spec.md §6 names but leaves unimplemented protocol.
type NotificationEventSink interface {
	Notify(appId, title, body string)
}

// PowerEventSink lets a shell react to session power state a compositor
// observes but does not itself implement policy for (spec.md §6:
// idle/suspend is out of scope for the protocol core).
type PowerEventSink interface {
	IdleStateChanged(idle bool)
}

// ThemeProvider supplies decoration preferences a shell might apply to
// server-side decorations, named in spec.md §6 as an external interface
// with no protocol obligations of its own.
type ThemeProvider interface {
	PreferDarkDecorations() bool
}
