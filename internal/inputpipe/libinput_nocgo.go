//go:build !(linux && cgo)

package inputpipe

// Pipeline is a no-op stand-in on builds without cgo/libinput available.
// Open always fails with ErrUnsupported; the compositor treats that as
// "no physical input devices", not a fatal startup error.
type Pipeline struct{}

func Open(session Session, seatName string) (*Pipeline, error) { return nil, ErrUnsupported }

func (p *Pipeline) Fd() int                   { return -1 }
func (p *Pipeline) Dispatch(sink Sink) error  { return nil }
func (p *Pipeline) Close()                    {}
