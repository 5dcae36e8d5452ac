package compositor

import (
	"image"

	"github.com/kestrelwm/kestrel/internal/dmabuf"
	"github.com/kestrelwm/kestrel/internal/ids"
	"github.com/kestrelwm/kestrel/internal/shm"
	"github.com/kestrelwm/kestrel/internal/surface"
)

// windowmanagerHitTester implements seat.HitTester by walking a seat's
// workspace stacking order front-to-back, testing each mapped window's
// input region (spec.md §4.7: "focus follows the topmost surface whose
// input region contains the point").
type windowmanagerHitTester struct {
	st *State
}

func (h *windowmanagerHitTester) HitTest(global image.Point) (ids.WindowId, image.Point, bool) {
	for _, o := range h.st.Outputs.Outputs() {
		ws := h.st.activeWorkspaceForOutput(o)
		if ws == nil {
			continue
		}
		windows := ws.Windows()
		for i := len(windows) - 1; i >= 0; i-- {
			w := windows[i]
			if !global.In(w.Geometry) {
				continue
			}
			local := global.Sub(w.Geometry.Min)
			if acceptsInput(w.Surface, local) {
				return w.Id, local, true
			}
		}
	}
	return ids.WindowId{}, image.Point{}, false
}

// acceptsInput reports whether local, in surface-local coordinates,
// falls within surf's input region. A surface that never called
// set_input_region accepts input across its whole buffer (spec.md §3
// default input region is "infinite").
func acceptsInput(surf *surface.Surface, local image.Point) bool {
	state := surf.Current()
	if state.InputRegion.Empty() {
		w, h, ok := bufferSize(state.Buffer)
		if !ok {
			return false
		}
		return local.In(image.Rect(0, 0, w, h))
	}
	return state.InputRegion.Contains(local)
}

func bufferSize(buf *surface.AttachedBuffer) (int, int, bool) {
	if buf == nil {
		return 0, 0, false
	}
	switch b := buf.Ref.(type) {
	case *shm.Buffer:
		return b.Width, b.Height, true
	case *dmabuf.Buffer:
		return b.Width, b.Height, true
	default:
		return 0, 0, false
	}
}
