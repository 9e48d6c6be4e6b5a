//go:build linux

package main

import "inkstone.dev/flash"

func openRegion(path string, offset int64) (*flash.Region, func() error, error) {
	if *mmapWin > 0 {
		return flash.Map(path, offset, *mmapWin)
	}
	return flash.OpenFile(path, offset)
}
