package text

import (
	"fmt"
	"image"
)

// NumberMode selects how DrawNumber and DrawDecimals pad unused
// leading positions.
type NumberMode uint8

const (
	FillSpace NumberMode = iota
	FillZero
)

func (r *Renderer) SetNumberMode(m NumberMode) {
	r.numMode = m
}

// DrawNumber draws n right-aligned in a field of width characters,
// padded per the number mode.
func (r *Renderer) DrawNumber(x, y int, n int64, width int) (image.Point, error) {
	var s string
	if r.numMode == FillZero {
		s = fmt.Sprintf("%0*d", width, n)
	} else {
		s = fmt.Sprintf("%*d", width, n)
	}
	return r.DrawText(x, y, s)
}

// DrawDecimals draws f with decs fractional digits in a field of width
// characters, including the decimal point and sign.
func (r *Renderer) DrawDecimals(x, y int, f float64, width, decs int) (image.Point, error) {
	var s string
	if r.numMode == FillZero {
		s = fmt.Sprintf("%0*.*f", width, decs, f)
	} else {
		s = fmt.Sprintf("%*.*f", width, decs, f)
	}
	return r.DrawText(x, y, s)
}
