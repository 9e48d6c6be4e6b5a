// Command fontflash writes a font blob image to the SPI NOR chip and
// verifies it by re-reading the headers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"inkstone.dev/driver/w25q"
	"inkstone.dev/font/flashfont"
)

var (
	offset = flag.Int64("offset", 0, "destination offset on the chip")
	verify = flag.Bool("verify", true, "re-read and validate the blob after writing")
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: fontflash [-offset n] blob.bin\n")
		os.Exit(1)
	}
	if err := run(flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

func run(path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if *offset%w25q.BlockSize != 0 {
		return fmt.Errorf("offset %#x is not block aligned", *offset)
	}

	dev, err := w25q.Open()
	if err != nil {
		return err
	}
	defer dev.Close()
	log.Printf("chip %#.6x, %d MiB", dev.ID(), dev.Size()>>20)

	end := *offset + int64(len(blob))
	for off := *offset; off < end; off += w25q.BlockSize {
		if err := dev.EraseBlock(off); err != nil {
			return err
		}
	}
	if _, err := dev.WriteAt(blob, *offset); err != nil {
		return err
	}
	log.Printf("wrote %d bytes at %#x", len(blob), *offset)

	if !*verify {
		return nil
	}
	region := dev.Region()
	if *offset != 0 {
		// The blob layout is base relative.
		return fmt.Errorf("verify requires -offset 0, rerun with -verify=false")
	}
	face, err := flashfont.Open(region)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	for _, enc := range []flashfont.Encoding{flashfont.GBK, flashfont.UTF8} {
		if face.HasTable(enc) {
			log.Printf("%s table: %d entries", enc, face.TableCount(enc))
		}
	}
	return nil
}
