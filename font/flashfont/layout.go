package flashfont

import "encoding/binary"

// On-flash blob layout. All offsets are relative to the blob base and
// all multi-byte fields are little-endian, matching the offline packer
// and the ARM host the blob was designed for.
const (
	FlagOffset      = 0x000000
	ASCIIOffset     = 0x000100
	GBKTableOffset  = 0x010000
	UTF8TableOffset = 0x020000

	MagicFlag  = 0x464C4147 // "FLAG"
	MagicASCII = 0x41534346 // "ASCF"
	MagicGBK   = 0x54424C47 // "TBLG"
	MagicUTF8  = 0x54424C55 // "TBLU"
	MagicCJK   = 0x47423332 // "GB23"

	// TableVersion is the record layout revision of the index tables.
	TableVersion = 1

	// MaxGlyphs bounds the glyph index space. The packer assigns
	// indices 0..MaxGlyphs-1 in insertion order.
	MaxGlyphs = 7464

	// SentinelKey terminates a table that holds fewer records than
	// its allocated capacity.
	SentinelKey = 0xFFFF

	FlagLen         = 16
	RegionHeaderLen = 16
	TableHeaderLen  = 16

	GBKRecordLen = 4
	// UTF-8 records are packed to 7 bytes: len, four sequence bytes,
	// and the 16-bit glyph index.
	UTF8RecordLen = 7

	// Flag record bits naming the index tables present in the blob.
	TableBitGBK  = 1 << 0
	TableBitUTF8 = 1 << 1

	asciiFirst = 0x20
	asciiLast  = 0x7E
	// NumASCII is the number of glyphs in each ASCII size region.
	NumASCII = asciiLast - asciiFirst + 1

	numSizes = 5
)

// ASCIIHeaderLen is the ASCII region file header: magic, font count and
// one {offset, size, width, height} entry per size.
const ASCIIHeaderLen = 8 + numSizes*16

// BlobSize is the total footprint of the blob, ending with the 32px
// CJK region.
const BlobSize = 0x1A0000 + RegionHeaderLen + MaxGlyphs*128

var bo = binary.LittleEndian

// sizeDesc describes one font size: where its CJK bitmaps live and the
// fixed per-glyph stride. Row padding differs per size, so strides are
// listed, not derived.
type sizeDesc struct {
	size   int
	offset int64
	stride int
}

var sizes = [numSizes]sizeDesc{
	{12, 0x030000, 24},
	{16, 0x060000, 32},
	{20, 0x0A0000, 60},
	{24, 0x110000, 72},
	{32, 0x1A0000, 128},
}

func descOf(size int) (sizeDesc, int, bool) {
	for i, d := range sizes {
		if d.size == size {
			return d, i, true
		}
	}
	return sizeDesc{}, 0, false
}

// Sizes lists the supported font sizes in ascending order.
func Sizes() []int {
	s := make([]int, numSizes)
	for i, d := range sizes {
		s[i] = d.size
	}
	return s
}

// ValidSize reports whether size is one of the five supported sizes.
func ValidSize(size int) bool {
	_, _, ok := descOf(size)
	return ok
}

// SizeRegion returns the CJK region base offset and per-glyph stride
// for a font size.
func SizeRegion(size int) (offset int64, stride int, ok bool) {
	d, _, ok := descOf(size)
	return d.offset, d.stride, ok
}
