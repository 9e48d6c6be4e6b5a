package text

import (
	"image"

	"inkstone.dev/image/rgb565"
)

// Direction is the panel orientation. Landscape orientations swap the
// usable width and height.
type Direction uint8

const (
	Portrait Direction = iota
	PortraitFlip
	Landscape
	LandscapeFlip
)

// Display is the pixel sink for rendered glyphs: an addressable window
// that accepts streamed RGB565 pixels, row-major, top to bottom.
type Display interface {
	// Size returns the usable pixel dimensions in the current
	// direction.
	Size() image.Point
	SetDirection(Direction) error
	// Draw streams pix, row-major, into the window r. len(pix) must
	// equal r.Dx()*r.Dy().
	Draw(r image.Rectangle, pix []rgb565.Color) error
}
