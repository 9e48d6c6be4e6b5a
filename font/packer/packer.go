// Package packer builds the on-flash font blob consumed by
// inkstone.dev/font/flashfont. It is the offline half of the design:
// glyph bitmaps are rasterized from standard font faces, the GBK and
// UTF-8 index tables are derived from the packed character set, and the
// result is flashed once and never modified at runtime.
package packer

import (
	"encoding/binary"
	"fmt"
	"image"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/encoding/simplifiedchinese"

	"inkstone.dev/font/flashfont"
)

var bo = binary.LittleEndian

// Builder assembles a font blob. Glyph indices are assigned in
// insertion order, shared between the GBK and UTF-8 tables.
type Builder struct {
	faces map[int]font.Face
	runes []rune
	seen  map[rune]bool
}

func NewBuilder() *Builder {
	return &Builder{
		faces: make(map[int]font.Face),
		seen:  make(map[rune]bool),
	}
}

// SetFace assigns the rasterization source for one font size. Every
// supported size needs a face before Build.
func (b *Builder) SetFace(size int, f font.Face) {
	b.faces[size] = f
}

// Add appends the non-ASCII characters of s to the packed set.
// Duplicates are ignored. ASCII glyphs are always packed and need not
// be added.
func (b *Builder) Add(s string) {
	for _, r := range s {
		if r < 0x80 || b.seen[r] {
			continue
		}
		b.seen[r] = true
		b.runes = append(b.runes, r)
	}
}

func (b *Builder) GlyphCount() int {
	return len(b.runes)
}

// Build assembles the byte-exact blob.
func (b *Builder) Build() ([]byte, error) {
	if len(b.runes) > flashfont.MaxGlyphs {
		return nil, fmt.Errorf("packer: %d glyphs exceed the maximum of %d", len(b.runes), flashfont.MaxGlyphs)
	}
	for _, size := range flashfont.Sizes() {
		if b.faces[size] == nil {
			return nil, fmt.Errorf("packer: no face for size %d", size)
		}
	}
	blob := make([]byte, flashfont.BlobSize)
	b.writeASCII(blob)
	if err := b.writeTables(blob); err != nil {
		return nil, err
	}
	b.writeCJK(blob)
	// The flag record is written last; a partially built blob must
	// not validate.
	bo.PutUint32(blob[flashfont.FlagOffset:], flashfont.MagicFlag)
	for i := range flashfont.Sizes() {
		blob[flashfont.FlagOffset+4+i] = 1
	}
	blob[flashfont.FlagOffset+9] = flashfont.TableBitGBK | flashfont.TableBitUTF8
	return blob, nil
}

func (b *Builder) writeASCII(blob []byte) {
	base := blob[flashfont.ASCIIOffset:]
	bo.PutUint32(base[0:], flashfont.MagicASCII)
	sizes := flashfont.Sizes()
	bo.PutUint32(base[4:], uint32(len(sizes)))
	off := uint32(flashfont.ASCIIHeaderLen)
	for i, size := range sizes {
		w, h := size/2, size
		stride := (w + 7) / 8 * h
		e := base[8+i*16:]
		bo.PutUint32(e[0:], off)
		bo.PutUint32(e[4:], uint32(stride*flashfont.NumASCII))
		bo.PutUint32(e[8:], uint32(w))
		bo.PutUint32(e[12:], uint32(h))
		for c := 0; c < flashfont.NumASCII; c++ {
			dst := base[int(off)+c*stride:]
			rasterize(b.faces[size], rune(0x20+c), w, h, dst[:stride])
		}
		off += uint32(stride * flashfont.NumASCII)
	}
}

func (b *Builder) writeTables(blob []byte) error {
	enc := simplifiedchinese.GBK.NewEncoder()

	gbk := blob[flashfont.GBKTableOffset:]
	off := flashfont.TableHeaderLen
	count := 0
	for i, r := range b.runes {
		out, err := enc.Bytes([]byte(string(r)))
		if err != nil || len(out) != 2 {
			// Not representable in GBK; the character remains
			// reachable through the UTF-8 table.
			continue
		}
		key := uint16(out[0])<<8 | uint16(out[1])
		if key == flashfont.SentinelKey {
			return fmt.Errorf("packer: %q encodes to the sentinel key", r)
		}
		bo.PutUint16(gbk[off:], key)
		bo.PutUint16(gbk[off+2:], uint16(i))
		off += flashfont.GBKRecordLen
		count++
	}
	bo.PutUint16(gbk[off:], flashfont.SentinelKey)
	writeTableHeader(gbk, flashfont.MagicGBK, uint32(count))

	u := blob[flashfont.UTF8TableOffset:]
	off = flashfont.TableHeaderLen
	for i, r := range b.runes {
		var seq [4]byte
		n := utf8.EncodeRune(seq[:], r)
		u[off] = byte(n)
		copy(u[off+1:off+5], seq[:n])
		bo.PutUint16(u[off+5:], uint16(i))
		off += flashfont.UTF8RecordLen
	}
	u[off] = 0xFF
	writeTableHeader(u, flashfont.MagicUTF8, uint32(len(b.runes)))
	return nil
}

func writeTableHeader(table []byte, magic, count uint32) {
	bo.PutUint32(table[0:], magic)
	bo.PutUint16(table[4:], flashfont.TableVersion)
	bo.PutUint32(table[8:], count)
	bo.PutUint32(table[12:], flashfont.TableHeaderLen)
}

func (b *Builder) writeCJK(blob []byte) {
	for _, size := range flashfont.Sizes() {
		base, stride, _ := flashfont.SizeRegion(size)
		h := blob[base:]
		bo.PutUint32(h[0:], flashfont.MagicCJK)
		bo.PutUint16(h[4:], uint16(size))
		bo.PutUint16(h[6:], uint16(stride))
		bo.PutUint32(h[8:], uint32(len(b.runes)))
		for i, r := range b.runes {
			off, n, err := flashfont.GlyphAddress(i, size)
			if err != nil {
				panic(err) // indices are bounds-checked in Build
			}
			rasterize(b.faces[size], r, size, size, blob[off:off+int64(n)])
		}
	}
}

// rasterize draws r into a w×h cell, baseline at the face's ascent and
// the advance centered, then packs the coverage MSB-first with rows
// padded to whole bytes.
func rasterize(f font.Face, r rune, w, h int, dst []byte) {
	img := image.NewGray(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: f,
		Dot:  fixed.P(0, 0),
	}
	d.Dot.Y = f.Metrics().Ascent
	if adv, ok := f.GlyphAdvance(r); ok {
		d.Dot.X = (fixed.I(w) - adv) / 2
	}
	d.DrawString(string(r))
	rowBytes := (w + 7) / 8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.GrayAt(x, y).Y >= 0x80 {
				dst[y*rowBytes+x/8] |= 0x80 >> (x & 7)
			}
		}
	}
}
