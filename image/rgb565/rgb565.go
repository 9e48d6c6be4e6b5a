// Package rgb565 implements the packed 16-bit RGB565 pixel format of
// the ST7789 panel.
package rgb565

import (
	"image"
	"image/color"
)

// Color is a packed RGB565 pixel, red in the top five bits.
type Color uint16

// From888 converts a 24-bit RGB888 value by keeping the top 5/6/5 bits
// of the red, green and blue channels.
func From888(rgb uint32) Color {
	r := uint16(rgb>>16) & 0xF8
	g := uint16(rgb>>8) & 0xFC
	b := uint16(rgb) & 0xF8
	return Color(r<<8 | g<<3 | b>>3)
}

// To888 expands c back to 24-bit RGB888, replicating the top bits into
// the truncated low bits.
func (c Color) To888() uint32 {
	r := uint32(c>>8) & 0xF8
	r |= r >> 5
	g := uint32(c>>3) & 0xFC
	g |= g >> 6
	b := uint32(c<<3) & 0xF8
	b |= b >> 5
	return r<<16 | g<<8 | b
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	rgb := c.To888()
	r = (rgb >> 16) & 0xFF
	r |= r << 8
	g = (rgb >> 8) & 0xFF
	g |= g << 8
	b = rgb & 0xFF
	b |= b << 8
	return r, g, b, 0xFFFF
}

// Image is an in-memory RGB565 framebuffer.
type Image struct {
	Pix    []Color
	Stride int
	Rect   image.Rectangle
}

func New(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]Color, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Image) ColorModel() color.Model {
	return color.ModelFunc(func(c color.Color) color.Color {
		r, g, b, _ := c.RGBA()
		return From888(uint32(r>>8)<<16 | uint32(g>>8)<<8 | uint32(b>>8))
	})
}

func (p *Image) PixOffset(x, y int) int {
	off := image.Pt(x, y).Sub(p.Rect.Min)
	return off.Y*p.Stride + off.X
}

func (p *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}).In(p.Rect) {
		return Color(0)
	}
	return p.Pix[p.PixOffset(x, y)]
}

func (p *Image) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}).In(p.Rect) {
		return
	}
	r, g, b, _ := c.RGBA()
	p.Pix[p.PixOffset(x, y)] = From888(uint32(r>>8)<<16 | uint32(g>>8)<<8 | uint32(b>>8))
}
