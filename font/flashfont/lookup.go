package flashfont

import (
	"bytes"
	"fmt"
)

// Lookup resolves a classified character to its encoding-independent
// glyph index. The GBK and UTF-8 entries for the same ideograph resolve
// to the same index, so each bitmap is stored once regardless of the
// input encoding. ASCII characters address the ASCII region directly
// and never resolve here.
func (f *Face) Lookup(c Char) (int, bool) {
	switch c.Kind {
	case KindGBK:
		return f.lookupGBK(c.Code)
	case KindUTF8:
		return f.lookupUTF8(c.Seq[:c.Len])
	}
	return 0, false
}

// lookupGBK scans the on-flash GBK table for a big-endian GBK code. The
// scan stops at the 0xFFFF sentinel or the table's record count,
// whichever comes first; the first match wins. The tables are written
// unsorted, so this is a bounded linear scan, an explicit footprint
// trade-off for edge-triggered text draws.
func (f *Face) lookupGBK(key uint16) (int, bool) {
	if !f.hasGBK {
		return 0, false
	}
	var rec [GBKRecordLen]byte
	off := int64(GBKTableOffset) + int64(f.gbk.dataOff)
	for i := uint32(0); i < f.gbk.count; i++ {
		if _, err := f.flash.ReadAt(rec[:], off); err != nil {
			return 0, false
		}
		k := bo.Uint16(rec[0:])
		if k == SentinelKey {
			break
		}
		if k == key {
			return int(bo.Uint16(rec[2:])), true
		}
		off += GBKRecordLen
	}
	return 0, false
}

// lookupUTF8 scans the on-flash UTF-8 table for a raw sequence. A
// record matches only on equal length and equal bytes.
func (f *Face) lookupUTF8(seq []byte) (int, bool) {
	if !f.hasUTF8 {
		return 0, false
	}
	var rec [UTF8RecordLen]byte
	off := int64(UTF8TableOffset) + int64(f.utf8.dataOff)
	for i := uint32(0); i < f.utf8.count; i++ {
		if _, err := f.flash.ReadAt(rec[:], off); err != nil {
			return 0, false
		}
		n := int(rec[0])
		if n == 0xFF {
			break
		}
		if n == len(seq) && bytes.Equal(rec[1:1+n], seq) {
			return int(bo.Uint16(rec[5:])), true
		}
		off += UTF8RecordLen
	}
	return 0, false
}

// CheckDuplicates scans an index table and reports the first key that
// appears more than once. The offline tool is not trusted to guarantee
// uniqueness, and first-match lookup semantics are only sound without
// duplicates; fontcheck runs this as a conformance scan.
func (f *Face) CheckDuplicates(enc Encoding) error {
	if !f.HasTable(enc) {
		return nil
	}
	seen := make(map[string]int)
	var base int64
	var h tableHeader
	if enc == GBK {
		base, h = GBKTableOffset, f.gbk
	} else {
		base, h = UTF8TableOffset, f.utf8
	}
	off := base + int64(h.dataOff)
	for i := uint32(0); i < h.count; i++ {
		var key string
		switch enc {
		case GBK:
			var rec [GBKRecordLen]byte
			if _, err := f.flash.ReadAt(rec[:], off); err != nil {
				return err
			}
			k := bo.Uint16(rec[0:])
			if k == SentinelKey {
				return nil
			}
			key = fmt.Sprintf("%#.4x", k)
			off += GBKRecordLen
		default:
			var rec [UTF8RecordLen]byte
			if _, err := f.flash.ReadAt(rec[:], off); err != nil {
				return err
			}
			n := int(rec[0])
			if n == 0xFF {
				return nil
			}
			if n > 4 {
				return fmt.Errorf("flashfont: %s record %d: bad sequence length %d", enc, i, n)
			}
			key = string(rec[1 : 1+n])
			off += UTF8RecordLen
		}
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("flashfont: %s table: duplicate key %q at records %d and %d", enc, key, prev, i)
		}
		seen[key] = int(i)
	}
	return nil
}
