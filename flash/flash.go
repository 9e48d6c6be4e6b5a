// Package flash provides bounds-checked, read-only access to the
// memory-mapped window of an external NOR flash device. The font blob
// is written once by an offline tool; at runtime the window is never
// written, so a Region is safe for concurrent readers as long as the
// underlying reads are.
package flash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrOutOfRange = errors.New("flash: read out of range")

// Region is a read-only window into flash. Offsets are relative to the
// window start; reads that would cross the end fail without touching
// the device.
type Region struct {
	r    io.ReaderAt
	size int64
}

func NewRegion(r io.ReaderAt, size int64) *Region {
	return &Region{r: r, size: size}
}

func (r *Region) Size() int64 {
	return r.size
}

// ReadAt implements io.ReaderAt.
func (r *Region) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > r.size {
		return 0, fmt.Errorf("%w: [%#x, %#x) in window of %#x bytes", ErrOutOfRange, off, off+int64(len(p)), r.size)
	}
	n, err := r.r.ReadAt(p, off)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	return n, err
}

func (r *Region) Uint16(off int64) (uint16, error) {
	var b [2]byte
	if _, err := r.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (r *Region) Uint32(off int64) (uint32, error) {
	var b [4]byte
	if _, err := r.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
