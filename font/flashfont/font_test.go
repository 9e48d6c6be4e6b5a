package flashfont

import (
	"bytes"
	"errors"
	"testing"

	"inkstone.dev/flash"
)

// fixture is a hand-built in-memory blob with a valid flag record,
// ASCII region and CJK region headers. Tests add table records and
// glyph bytes as needed.
type fixture struct {
	blob []byte
}

func newFixture() *fixture {
	f := &fixture{blob: make([]byte, BlobSize)}
	// Flag record: magic, all sizes written, both tables present.
	bo.PutUint32(f.blob[FlagOffset:], MagicFlag)
	for i := 0; i < numSizes; i++ {
		f.blob[FlagOffset+4+i] = 1
	}
	f.blob[FlagOffset+9] = TableBitGBK | TableBitUTF8
	// ASCII region header.
	bo.PutUint32(f.blob[ASCIIOffset:], MagicASCII)
	bo.PutUint32(f.blob[ASCIIOffset+4:], numSizes)
	off := uint32(ASCIIHeaderLen)
	for i, d := range sizes {
		w, h := d.size/2, d.size
		stride := (w + 7) / 8 * h
		e := f.blob[ASCIIOffset+8+i*16:]
		bo.PutUint32(e[0:], off)
		bo.PutUint32(e[4:], uint32(stride*NumASCII))
		bo.PutUint32(e[8:], uint32(w))
		bo.PutUint32(e[12:], uint32(h))
		off += uint32(stride * NumASCII)
	}
	// Index table headers, empty (sentinel-terminated immediately).
	f.putTableHeader(GBKTableOffset, MagicGBK, MaxGlyphs)
	bo.PutUint16(f.blob[GBKTableOffset+TableHeaderLen:], SentinelKey)
	f.putTableHeader(UTF8TableOffset, MagicUTF8, MaxGlyphs)
	f.blob[UTF8TableOffset+TableHeaderLen] = 0xFF
	// CJK region headers.
	for _, d := range sizes {
		h := f.blob[d.offset:]
		bo.PutUint32(h[0:], MagicCJK)
		bo.PutUint16(h[4:], uint16(d.size))
		bo.PutUint16(h[6:], uint16(d.stride))
		bo.PutUint32(h[8:], MaxGlyphs)
	}
	return f
}

func (f *fixture) putTableHeader(base int64, magic uint32, count uint32) {
	h := f.blob[base:]
	bo.PutUint32(h[0:], magic)
	bo.PutUint16(h[4:], TableVersion)
	bo.PutUint32(h[8:], count)
	bo.PutUint32(h[12:], TableHeaderLen)
}

// putGBK writes key/index records followed by the sentinel.
func (f *fixture) putGBK(recs ...[2]uint16) {
	off := GBKTableOffset + TableHeaderLen
	for _, rec := range recs {
		bo.PutUint16(f.blob[off:], rec[0])
		bo.PutUint16(f.blob[off+2:], rec[1])
		off += GBKRecordLen
	}
	bo.PutUint16(f.blob[off:], SentinelKey)
}

// putUTF8 writes sequence/index records followed by the sentinel.
func (f *fixture) putUTF8(recs ...struct {
	seq   string
	index uint16
}) {
	off := UTF8TableOffset + TableHeaderLen
	for _, rec := range recs {
		f.blob[off] = byte(len(rec.seq))
		copy(f.blob[off+1:off+5], rec.seq)
		bo.PutUint16(f.blob[off+5:], rec.index)
		off += UTF8RecordLen
	}
	f.blob[off] = 0xFF
}

func (f *fixture) open(t *testing.T) *Face {
	t.Helper()
	face, err := Open(f.region())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return face
}

func (f *fixture) region() *flash.Region {
	return flash.NewRegion(bytes.NewReader(f.blob), int64(len(f.blob)))
}

type utf8Rec = struct {
	seq   string
	index uint16
}

func TestOpenNotFlashed(t *testing.T) {
	blank := flash.NewRegion(bytes.NewReader(make([]byte, BlobSize)), BlobSize)
	if _, err := Open(blank); !errors.Is(err, ErrNotFlashed) {
		t.Errorf("Open(blank) = %v, want ErrNotFlashed", err)
	}
}

func TestOpenBadTable(t *testing.T) {
	f := newFixture()
	bo.PutUint32(f.blob[GBKTableOffset:], 0xDEADBEEF)
	if _, err := Open(f.region()); !errors.Is(err, ErrNotFlashed) {
		t.Errorf("Open with bad table magic = %v, want ErrNotFlashed", err)
	}
}

func TestLookupGBK(t *testing.T) {
	f := newFixture()
	// Unsorted on purpose; the scan is linear.
	f.putGBK([2]uint16{0xC4E3, 5}, [2]uint16{0xB0A1, 0}, [2]uint16{0xBAC3, 17})
	face := f.open(t)

	tests := []struct {
		key   uint16
		index int
		found bool
	}{
		{0xC4E3, 5, true},
		{0xB0A1, 0, true},
		{0xBAC3, 17, true},
		{0xB0A2, 0, false},
	}
	for _, test := range tests {
		idx, ok := face.lookupGBK(test.key)
		if ok != test.found || (ok && idx != test.index) {
			t.Errorf("lookupGBK(%#.4x) = %d, %v, want %d, %v", test.key, idx, ok, test.index, test.found)
		}
	}
}

func TestLookupStopsAtSentinel(t *testing.T) {
	f := newFixture()
	f.putGBK([2]uint16{0xB0A1, 0})
	// A valid-looking record beyond the sentinel must never match.
	off := GBKTableOffset + TableHeaderLen + 2*GBKRecordLen
	bo.PutUint16(f.blob[off:], 0xC4E3)
	bo.PutUint16(f.blob[off+2:], 9)
	face := f.open(t)

	if idx, ok := face.lookupGBK(0xC4E3); ok {
		t.Errorf("lookupGBK beyond sentinel = %d, true, want not found", idx)
	}
}

func TestLookupUTF8(t *testing.T) {
	f := newFixture()
	f.putUTF8(
		utf8Rec{"\xE4\xBD\xA0", 5}, // 你
		utf8Rec{"\xE5\xA5\xBD", 17}, // 好
		utf8Rec{"\xC4\xAB", 31}, // ī
	)
	face := f.open(t)

	tests := []struct {
		seq   string
		index int
		found bool
	}{
		{"\xE4\xBD\xA0", 5, true},
		{"\xE5\xA5\xBD", 17, true},
		{"\xC4\xAB", 31, true},
		// Same length, different bytes.
		{"\xE4\xBD\xA1", 0, false},
		// Prefix of a recorded sequence.
		{"\xE4\xBD", 0, false},
	}
	for _, test := range tests {
		idx, ok := face.lookupUTF8([]byte(test.seq))
		if ok != test.found || (ok && idx != test.index) {
			t.Errorf("lookupUTF8(%q) = %d, %v, want %d, %v", test.seq, idx, ok, test.index, test.found)
		}
	}
}

func TestSharedGlyphIndex(t *testing.T) {
	f := newFixture()
	// 你 in both encodings resolves to the same glyph index, so the
	// bitmap is stored once.
	f.putGBK([2]uint16{0xC4E3, 5})
	f.putUTF8(utf8Rec{"\xE4\xBD\xA0", 5})
	face := f.open(t)

	gbk := Classify(GBK, "\xC4\xE3")
	utf := Classify(UTF8, "你")
	gi, ok1 := face.Lookup(gbk)
	ui, ok2 := face.Lookup(utf)
	if !ok1 || !ok2 || gi != ui {
		t.Fatalf("Lookup GBK = %d, %v; UTF-8 = %d, %v; want same index", gi, ok1, ui, ok2)
	}
	for _, size := range Sizes() {
		goff, _, err1 := GlyphAddress(gi, size)
		uoff, _, err2 := GlyphAddress(ui, size)
		if err1 != nil || err2 != nil || goff != uoff {
			t.Errorf("size %d: address %#x vs %#x", size, goff, uoff)
		}
	}
}

func TestGlyphAddressLinear(t *testing.T) {
	for _, size := range Sizes() {
		_, stride, _ := SizeRegion(size)
		for _, i := range []int{0, 1, 100, MaxGlyphs - 2} {
			a0, n, err := GlyphAddress(i, size)
			if err != nil || n != stride {
				t.Fatalf("GlyphAddress(%d, %d) = %d, %v", i, size, n, err)
			}
			a1, _, err := GlyphAddress(i+1, size)
			if err != nil {
				t.Fatalf("GlyphAddress(%d, %d): %v", i+1, size, err)
			}
			if a1-a0 != int64(stride) {
				t.Errorf("size %d: address(%d)-address(%d) = %d, want %d", size, i+1, i, a1-a0, stride)
			}
		}
	}
}

func TestGlyphAddressErrors(t *testing.T) {
	if _, _, err := GlyphAddress(0, 14); !errors.Is(err, ErrFontSize) {
		t.Errorf("GlyphAddress(0, 14) = %v, want ErrFontSize", err)
	}
	if _, _, err := GlyphAddress(MaxGlyphs, 16); !errors.Is(err, ErrGlyphNotFound) {
		t.Errorf("GlyphAddress(MaxGlyphs, 16) = %v, want ErrGlyphNotFound", err)
	}
	if _, _, err := GlyphAddress(-1, 16); !errors.Is(err, ErrGlyphNotFound) {
		t.Errorf("GlyphAddress(-1, 16) = %v, want ErrGlyphNotFound", err)
	}
}

func TestGlyphRead(t *testing.T) {
	f := newFixture()
	off, stride, err := GlyphAddress(3, 16)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < stride; i++ {
		f.blob[off+int64(i)] = 0xA5
	}
	face := f.open(t)

	var buf [128]byte
	bm, err := face.Glyph(3, 16, buf[:])
	if err != nil {
		t.Fatalf("Glyph: %v", err)
	}
	if bm.Width != 16 || bm.Height != 16 || len(bm.Pix) != stride {
		t.Fatalf("Glyph = %dx%d, %d bytes", bm.Width, bm.Height, len(bm.Pix))
	}
	// 0xA5 = 10100101: bit 0 set, bit 1 clear.
	if !bm.Bit(0, 0) || bm.Bit(1, 0) || bm.Bit(3, 15) || !bm.Bit(2, 15) {
		t.Errorf("Bit pattern mismatch for 0xA5 rows")
	}
}

func TestGlyphUnwrittenSize(t *testing.T) {
	f := newFixture()
	f.blob[FlagOffset+4+2] = 0 // 20px region not flashed
	face := f.open(t)

	var buf [128]byte
	if _, err := face.Glyph(0, 20, buf[:]); !errors.Is(err, ErrNotFlashed) {
		t.Errorf("Glyph at unwritten size = %v, want ErrNotFlashed", err)
	}
	if _, err := face.Glyph(0, 16, buf[:]); err != nil {
		t.Errorf("Glyph at written size: %v", err)
	}
}

func TestASCIIGlyph(t *testing.T) {
	f := newFixture()
	// Fill 'A' at 16px (8x16, 16 bytes) with a known pattern.
	entry := f.blob[ASCIIOffset+8+1*16:]
	base := int64(ASCIIOffset) + int64(bo.Uint32(entry[0:]))
	aOff := base + int64('A'-0x20)*16
	for i := int64(0); i < 16; i++ {
		f.blob[aOff+i] = 0xF0
	}
	face := f.open(t)

	var buf [128]byte
	bm, err := face.ASCIIGlyph('A', 16, buf[:])
	if err != nil {
		t.Fatalf("ASCIIGlyph: %v", err)
	}
	if bm.Width != 8 || bm.Height != 16 {
		t.Fatalf("ASCIIGlyph = %dx%d, want 8x16", bm.Width, bm.Height)
	}
	if !bm.Bit(0, 0) || bm.Bit(4, 0) || !bm.Bit(3, 15) {
		t.Errorf("Bit pattern mismatch for 0xF0 rows")
	}

	for _, c := range []byte{0x1F, 0x7F} {
		if _, err := face.ASCIIGlyph(c, 16, buf[:]); !errors.Is(err, ErrGlyphNotFound) {
			t.Errorf("ASCIIGlyph(%#.2x) = %v, want ErrGlyphNotFound", c, err)
		}
	}
	if _, err := face.ASCIIGlyph('A', 15, buf[:]); !errors.Is(err, ErrFontSize) {
		t.Errorf("ASCIIGlyph at size 15 = %v, want ErrFontSize", err)
	}
}

func TestCheckDuplicates(t *testing.T) {
	f := newFixture()
	f.putGBK([2]uint16{0xB0A1, 0}, [2]uint16{0xC4E3, 1}, [2]uint16{0xB0A1, 2})
	face := f.open(t)
	if err := face.CheckDuplicates(GBK); err == nil {
		t.Error("CheckDuplicates(GBK) = nil, want duplicate error")
	}
	if err := face.CheckDuplicates(UTF8); err != nil {
		t.Errorf("CheckDuplicates(UTF8) = %v, want nil", err)
	}

	clean := newFixture()
	clean.putGBK([2]uint16{0xB0A1, 0}, [2]uint16{0xC4E3, 1})
	face = clean.open(t)
	if err := face.CheckDuplicates(GBK); err != nil {
		t.Errorf("CheckDuplicates(clean GBK) = %v, want nil", err)
	}
}
