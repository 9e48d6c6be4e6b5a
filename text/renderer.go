// Package text renders mixed GBK/UTF-8/ASCII text from a flash font
// blob onto an RGB565 display.
package text

import (
	"errors"
	"fmt"
	"image"

	"inkstone.dev/font/flashfont"
	"inkstone.dev/image/rgb565"
)

// Renderer draws text through a flashfont.Face. All render state
// (colors, font size, encoding, direction, number fill mode) lives on
// the Renderer and is mutated only through its setters; there are no
// package-level defaults.
//
// A Renderer is single-threaded: draw calls run to completion on the
// caller and share the scratch buffers.
type Renderer struct {
	face *flashfont.Face
	disp Display

	fg      rgb565.Color
	bg      rgb565.Color
	size    int
	enc     flashfont.Encoding
	dir     Direction
	numMode NumberMode

	// OnMissingGlyph, if set, is called once for every character
	// whose glyph is absent from the blob. The cursor still advances
	// by the glyph's nominal width so line wrapping is stable.
	OnMissingGlyph func(flashfont.Char)

	glyphBuf [128]byte // largest CJK stride (32px)
	pixBuf   [32 * 32]rgb565.Color
}

func NewRenderer(face *flashfont.Face, disp Display) *Renderer {
	return &Renderer{
		face: face,
		disp: disp,
		fg:   rgb565.From888(0xFFFFFF),
		bg:   rgb565.From888(0x000000),
		size: 16,
	}
}

// SetColor sets the foreground from a 24-bit RGB888 value.
func (r *Renderer) SetColor(rgb uint32) {
	r.fg = rgb565.From888(rgb)
}

// SetBackgroundColor sets the background from a 24-bit RGB888 value.
// Glyph backgrounds are opaque; clear bits paint this color.
func (r *Renderer) SetBackgroundColor(rgb uint32) {
	r.bg = rgb565.From888(rgb)
}

// SetFontSize selects one of the five supported sizes.
func (r *Renderer) SetFontSize(size int) error {
	if !flashfont.ValidSize(size) {
		return fmt.Errorf("%w: %d", flashfont.ErrFontSize, size)
	}
	r.size = size
	return nil
}

func (r *Renderer) FontSize() int {
	return r.size
}

// SetEncoding selects how multi-byte input text is interpreted.
func (r *Renderer) SetEncoding(enc flashfont.Encoding) {
	r.enc = enc
}

// SetDirection rotates the display and the text flow with it.
func (r *Renderer) SetDirection(d Direction) error {
	if err := r.disp.SetDirection(d); err != nil {
		return err
	}
	r.dir = d
	return nil
}

// DrawText draws s at (x, y), wrapping at the display's right edge and
// on newline bytes. Characters whose glyphs are missing advance the
// cursor without painting; lookup failures never abort the draw. The
// caller is responsible for scrolling once y runs past the display
// height. DrawText returns the final cursor position.
func (r *Renderer) DrawText(x, y int, s string) (image.Point, error) {
	dims := r.disp.Size()
	for len(s) > 0 {
		c := flashfont.Classify(r.enc, s)
		s = s[c.Len:]
		if c.Kind == flashfont.KindASCII && c.Code == '\n' {
			x = 0
			y += r.size
			continue
		}
		w := r.advance(c)
		if x+w > dims.X {
			x = 0
			y += r.size
		}
		if err := r.drawChar(c, x, y); err != nil {
			return image.Pt(x, y), err
		}
		x += w
	}
	return image.Pt(x, y), nil
}

// DrawChar draws the first character of s at (x, y) without wrapping
// and returns its advance.
func (r *Renderer) DrawChar(x, y int, s string) (int, error) {
	if len(s) == 0 {
		return 0, nil
	}
	c := flashfont.Classify(r.enc, s)
	if err := r.drawChar(c, x, y); err != nil {
		return 0, err
	}
	return r.advance(c), nil
}

// advance returns the cursor advance for c: half width for ASCII and
// undecodable bytes, full width for CJK. Missing glyphs advance the
// same nominal width.
func (r *Renderer) advance(c flashfont.Char) int {
	if c.Kind == flashfont.KindGBK || c.Kind == flashfont.KindUTF8 {
		return r.size
	}
	return r.face.ASCIIWidth(r.size)
}

func (r *Renderer) drawChar(c flashfont.Char, x, y int) error {
	var bm flashfont.Bitmap
	var err error
	switch c.Kind {
	case flashfont.KindASCII:
		bm, err = r.face.ASCIIGlyph(byte(c.Code), r.size, r.glyphBuf[:])
	case flashfont.KindGBK, flashfont.KindUTF8:
		idx, ok := r.face.Lookup(c)
		if !ok {
			r.missing(c)
			return nil
		}
		bm, err = r.face.Glyph(idx, r.size, r.glyphBuf[:])
	default:
		r.missing(c)
		return nil
	}
	switch {
	case err == nil:
	case errors.Is(err, flashfont.ErrGlyphNotFound):
		r.missing(c)
		return nil
	default:
		return err
	}
	return r.blit(bm, x, y)
}

func (r *Renderer) missing(c flashfont.Char) {
	if r.OnMissingGlyph != nil {
		r.OnMissingGlyph(c)
	}
}

// blit paints a 1bpp bitmap at (x, y): set bits in the foreground
// color, clear bits in the background, clipped to the panel.
func (r *Renderer) blit(bm flashfont.Bitmap, x, y int) error {
	dims := r.disp.Size()
	dr := image.Rect(x, y, x+bm.Width, y+bm.Height).
		Intersect(image.Rectangle{Max: dims})
	if dr.Empty() {
		return nil
	}
	pix := r.pixBuf[:dr.Dx()*dr.Dy()]
	i := 0
	for py := dr.Min.Y; py < dr.Max.Y; py++ {
		for px := dr.Min.X; px < dr.Max.X; px++ {
			if bm.Bit(px-x, py-y) {
				pix[i] = r.fg
			} else {
				pix[i] = r.bg
			}
			i++
		}
	}
	return r.disp.Draw(dr, pix)
}
