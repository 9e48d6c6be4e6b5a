package flashfont

import "fmt"

// Bitmap is one glyph's monochrome image: row-major, most significant
// bit first, rows padded to whole bytes. Pix aliases the caller's
// scratch buffer and is only valid until the next read into it.
type Bitmap struct {
	Width  int
	Height int
	Pix    []byte
}

// Bit reports whether pixel (x, y) is set.
func (b Bitmap) Bit(x, y int) bool {
	row := (b.Width + 7) / 8
	return b.Pix[y*row+x/8]&(0x80>>(x&7)) != 0
}

// GlyphAddress maps a glyph index and font size to the absolute byte
// offset and length of its bitmap inside the blob. An unsupported size
// is a hard error; no flash is read.
func GlyphAddress(index, size int) (offset int64, length int, err error) {
	d, _, ok := descOf(size)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d", ErrFontSize, size)
	}
	if index < 0 || index >= MaxGlyphs {
		return 0, 0, ErrGlyphNotFound
	}
	return d.offset + RegionHeaderLen + int64(index)*int64(d.stride), d.stride, nil
}

// Glyph reads the CJK bitmap for a glyph index at the given size into
// buf, which must hold at least the size's stride (128 bytes covers
// every size).
func (f *Face) Glyph(index, size int, buf []byte) (Bitmap, error) {
	off, n, err := GlyphAddress(index, size)
	if err != nil {
		return Bitmap{}, err
	}
	if !f.SizeWritten(size) {
		return Bitmap{}, fmt.Errorf("flashfont: %dpx region: %w", size, ErrNotFlashed)
	}
	if _, err := f.flash.ReadAt(buf[:n], off); err != nil {
		return Bitmap{}, err
	}
	return Bitmap{Width: size, Height: size, Pix: buf[:n]}, nil
}

// ASCIIGlyph reads the half-width bitmap for an ASCII character,
// addressed directly by character code through the ASCII region header.
func (f *Face) ASCIIGlyph(c byte, size int, buf []byte) (Bitmap, error) {
	_, i, ok := descOf(size)
	if !ok {
		return Bitmap{}, fmt.Errorf("%w: %d", ErrFontSize, size)
	}
	e := f.ascii.entries[i]
	if c < asciiFirst || c > asciiLast || e.height == 0 {
		return Bitmap{}, ErrGlyphNotFound
	}
	stride := (int(e.width) + 7) / 8 * int(e.height)
	off := int64(ASCIIOffset) + int64(e.offset) + int64(c-asciiFirst)*int64(stride)
	if _, err := f.flash.ReadAt(buf[:stride], off); err != nil {
		return Bitmap{}, err
	}
	return Bitmap{Width: int(e.width), Height: int(e.height), Pix: buf[:stride]}, nil
}
