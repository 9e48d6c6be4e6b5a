package flash

import (
	"bytes"
	"errors"
	"testing"
)

func TestRegionBounds(t *testing.T) {
	data := []byte{0x47, 0x41, 0x4C, 0x46, 0xAA, 0xBB}
	r := NewRegion(bytes.NewReader(data), int64(len(data)))

	buf := make([]byte, 2)
	if _, err := r.ReadAt(buf, 4); err != nil {
		t.Fatalf("ReadAt(4): %v", err)
	}
	if buf[0] != 0xAA || buf[1] != 0xBB {
		t.Errorf("ReadAt(4) = %x, want aabb", buf)
	}

	for _, off := range []int64{-1, 5, 7} {
		if _, err := r.ReadAt(buf, off); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ReadAt(%d) = %v, want ErrOutOfRange", off, err)
		}
	}
}

func TestRegionInts(t *testing.T) {
	data := []byte{0x47, 0x41, 0x4C, 0x46, 0x34, 0x12}
	r := NewRegion(bytes.NewReader(data), int64(len(data)))

	v32, err := r.Uint32(0)
	if err != nil || v32 != 0x464C4147 {
		t.Errorf("Uint32(0) = %#x, %v, want 0x464c4147", v32, err)
	}
	v16, err := r.Uint16(4)
	if err != nil || v16 != 0x1234 {
		t.Errorf("Uint16(4) = %#x, %v, want 0x1234", v16, err)
	}
	if _, err := r.Uint32(4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Uint32(4) = %v, want ErrOutOfRange", err)
	}
}
