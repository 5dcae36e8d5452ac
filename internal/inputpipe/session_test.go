package inputpipe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullSessionAlwaysFails(t *testing.T) {
	var s NullSession
	_, err := s.OpenRestricted("/dev/input/event0", 0)
	require.ErrorIs(t, err, ErrUnsupported)
	s.CloseRestricted(-1)
}
