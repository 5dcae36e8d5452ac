package compositor

import (
	"image"

	"github.com/kestrelwm/kestrel/internal/protoerr"
)

func rectFromXYWH(x, y, w, h int32) image.Rectangle {
	return image.Rect(int(x), int(y), int(x+w), int(y+h))
}

func protoErrNoSuchObject(id uint32) error {
	return protoerr.NewProtocolError(id, protoerr.CodeInvalidObject, "no such object %d", id)
}

// point converts a [2]int (x, y) pair into an image.Point, the small
// adapter internal/inputpipe's float64 touch coordinates and
// internal/seat's image.Point hit-testing need between them.
func point(p [2]int) image.Point {
	return image.Pt(p[0], p[1])
}
