//go:build !linux

package main

import (
	"errors"

	"inkstone.dev/flash"
)

func openRegion(path string, offset int64) (*flash.Region, func() error, error) {
	if *mmapWin > 0 {
		return nil, nil, errors.New("-mmap is only supported on Linux")
	}
	return flash.OpenFile(path, offset)
}
