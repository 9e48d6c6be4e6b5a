// Package flashfont reads the pre-built font blob that the offline
// packer places on external NOR flash. The blob holds five sizes of CJK
// glyph bitmaps shared by a GBK and a UTF-8 index table, plus a
// half-width ASCII glyph region addressed directly by character code.
//
// The blob is immutable for the lifetime of the device; a Face caches
// the table headers once at Open and performs only arithmetic and
// bounded flash reads afterwards.
package flashfont

import (
	"fmt"

	"inkstone.dev/flash"
)

// Face is a read-only view of a flashed font blob. A Face is safe for
// concurrent readers as long as the underlying flash reads are.
type Face struct {
	flash *flash.Region

	written [numSizes]bool
	gbk     tableHeader
	utf8    tableHeader
	hasGBK  bool
	hasUTF8 bool
	ascii   asciiHeader
}

type tableHeader struct {
	count   uint32
	dataOff uint32
}

type asciiEntry struct {
	offset uint32
	size   uint32
	width  uint32
	height uint32
}

type asciiHeader struct {
	numFonts uint32
	entries  [numSizes]asciiEntry
}

// Open validates the blob's flag record and caches the index table and
// ASCII region headers. A magic mismatch means the blob was never
// flashed; the failure is permanent for this boot and every later
// lookup must be gated on a successful Open.
func Open(r *flash.Region) (*Face, error) {
	var flag [FlagLen]byte
	if _, err := r.ReadAt(flag[:], FlagOffset); err != nil {
		return nil, fmt.Errorf("flashfont: flag record: %w", err)
	}
	if bo.Uint32(flag[0:]) != MagicFlag {
		return nil, ErrNotFlashed
	}
	f := &Face{flash: r}
	for i := range f.written {
		f.written[i] = flag[4+i] != 0
	}
	tables := flag[9]
	if tables&TableBitGBK != 0 {
		h, err := readTableHeader(r, GBKTableOffset, MagicGBK)
		if err != nil {
			return nil, err
		}
		f.gbk, f.hasGBK = h, true
	}
	if tables&TableBitUTF8 != 0 {
		h, err := readTableHeader(r, UTF8TableOffset, MagicUTF8)
		if err != nil {
			return nil, err
		}
		f.utf8, f.hasUTF8 = h, true
	}
	if err := f.readASCIIHeader(); err != nil {
		return nil, err
	}
	for i, d := range sizes {
		if !f.written[i] {
			continue
		}
		if err := checkRegionHeader(r, d); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func readTableHeader(r *flash.Region, off int64, magic uint32) (tableHeader, error) {
	var b [TableHeaderLen]byte
	if _, err := r.ReadAt(b[:], off); err != nil {
		return tableHeader{}, fmt.Errorf("flashfont: index table at %#x: %w", off, err)
	}
	if bo.Uint32(b[0:]) != magic {
		return tableHeader{}, fmt.Errorf("flashfont: index table at %#x: %w", off, ErrNotFlashed)
	}
	if v := bo.Uint16(b[4:]); v != TableVersion {
		return tableHeader{}, fmt.Errorf("flashfont: index table at %#x: unsupported version %d", off, v)
	}
	h := tableHeader{
		count:   bo.Uint32(b[8:]),
		dataOff: bo.Uint32(b[12:]),
	}
	if h.count > MaxGlyphs {
		h.count = MaxGlyphs
	}
	return h, nil
}

func checkRegionHeader(r *flash.Region, d sizeDesc) error {
	var b [RegionHeaderLen]byte
	if _, err := r.ReadAt(b[:], d.offset); err != nil {
		return fmt.Errorf("flashfont: %dpx region: %w", d.size, err)
	}
	if bo.Uint32(b[0:]) != MagicCJK {
		return fmt.Errorf("flashfont: %dpx region: %w", d.size, ErrNotFlashed)
	}
	if s, st := bo.Uint16(b[4:]), bo.Uint16(b[6:]); int(s) != d.size || int(st) != d.stride {
		return fmt.Errorf("flashfont: %dpx region header mismatch: size %d stride %d", d.size, s, st)
	}
	return nil
}

func (f *Face) readASCIIHeader() error {
	var b [ASCIIHeaderLen]byte
	if _, err := f.flash.ReadAt(b[:], ASCIIOffset); err != nil {
		return fmt.Errorf("flashfont: ascii region: %w", err)
	}
	if bo.Uint32(b[0:]) != MagicASCII {
		return fmt.Errorf("flashfont: ascii region: %w", ErrNotFlashed)
	}
	f.ascii.numFonts = bo.Uint32(b[4:])
	for i := range f.ascii.entries {
		e := b[8+i*16:]
		f.ascii.entries[i] = asciiEntry{
			offset: bo.Uint32(e[0:]),
			size:   bo.Uint32(e[4:]),
			width:  bo.Uint32(e[8:]),
			height: bo.Uint32(e[12:]),
		}
	}
	return nil
}

// SizeWritten reports whether the CJK region for a font size was
// flashed, per the validation flag record.
func (f *Face) SizeWritten(size int) bool {
	_, i, ok := descOf(size)
	return ok && f.written[i]
}

// HasTable reports whether the blob carries an index table for enc.
func (f *Face) HasTable(enc Encoding) bool {
	if enc == GBK {
		return f.hasGBK
	}
	return f.hasUTF8
}

// TableCount returns the allocated record count of the index table for
// enc. The populated count may be smaller; the sentinel marks its end.
func (f *Face) TableCount(enc Encoding) int {
	if enc == GBK {
		return int(f.gbk.count)
	}
	return int(f.utf8.count)
}

// ASCIIWidth returns the pixel advance of ASCII glyphs at a font size,
// falling back to the conventional half width when the region header
// has no entry.
func (f *Face) ASCIIWidth(size int) int {
	_, i, ok := descOf(size)
	if !ok {
		return 0
	}
	if w := int(f.ascii.entries[i].width); w > 0 {
		return w
	}
	return size / 2
}
