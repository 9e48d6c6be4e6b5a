//go:build linux

package flash

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps size bytes of the device or file at path, starting at
// offset, and returns a Region backed by the mapping. Use it with the
// kernel-exposed read window of a memory-mapped QSPI controller; offset
// must be page aligned.
func Map(path string, offset, size int64) (*Region, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("flash: %w", err)
	}
	defer f.Close()
	mem, err := unix.Mmap(int(f.Fd()), offset, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("flash: mmap %s: %w", path, err)
	}
	closer := func() error {
		return unix.Munmap(mem)
	}
	return NewRegion(bytes.NewReader(mem), size), closer, nil
}
