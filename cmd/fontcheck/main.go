// Command fontcheck validates a flash font blob image: header magics,
// per-size region headers and duplicate index keys. It exits nonzero if
// the blob would be rejected at boot.
package main

import (
	"flag"
	"fmt"
	"os"

	"inkstone.dev/flash"
	"inkstone.dev/font/flashfont"
)

var offset = flag.Int64("offset", 0, "byte offset of the blob inside the image")

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: fontcheck [-offset n] blob.bin\n")
		os.Exit(1)
	}
	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "fontcheck: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	region, close, err := flash.OpenFile(path, *offset)
	if err != nil {
		return err
	}
	defer close()

	face, err := flashfont.Open(region)
	if err != nil {
		return err
	}

	for _, enc := range []flashfont.Encoding{flashfont.GBK, flashfont.UTF8} {
		if !face.HasTable(enc) {
			fmt.Printf("%s table: absent\n", enc)
			continue
		}
		fmt.Printf("%s table: %d entries\n", enc, face.TableCount(enc))
		if err := face.CheckDuplicates(enc); err != nil {
			return err
		}
	}
	for _, size := range flashfont.Sizes() {
		state := "written"
		if !face.SizeWritten(size) {
			state = "absent"
		}
		fmt.Printf("%2dpx region: %s\n", size, state)
	}
	return nil
}
