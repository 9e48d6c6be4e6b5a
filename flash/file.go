package flash

import (
	"fmt"
	"io"
	"os"
)

// OpenFile returns a Region backed by ordinary file reads, for blob
// images kept on a filesystem. The region covers the file from offset
// to its end.
func OpenFile(path string, offset int64) (*Region, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("flash: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("flash: %w", err)
	}
	size := st.Size() - offset
	if size < 0 {
		f.Close()
		return nil, nil, fmt.Errorf("flash: offset %#x beyond end of %s", offset, path)
	}
	return NewRegion(io.NewSectionReader(f, offset, size), size), f.Close, nil
}
