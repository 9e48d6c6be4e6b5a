// Command textdemo draws mixed-script sample text on the panel from a
// flash font blob.
package main

import (
	"flag"
	"log"

	"inkstone.dev/font/flashfont"
	"inkstone.dev/image/rgb565"
	"inkstone.dev/lcd"
	"inkstone.dev/text"
)

var (
	blobPath = flag.String("blob", "/dev/mtd0", "font blob device or image")
	offset   = flag.Int64("offset", 0, "byte offset of the blob")
	mmapWin  = flag.Int64("mmap", 0, "map this many bytes instead of reading (Linux only)")
	dir      = flag.Int("dir", 0, "display direction, 0-3")
	size     = flag.Int("size", 16, "font size in pixels")
)

func main() {
	flag.Parse()

	region, close, err := openRegion(*blobPath, *offset)
	if err != nil {
		log.Fatal(err)
	}
	defer close()

	face, err := flashfont.Open(region)
	if err != nil {
		log.Fatal(err)
	}

	disp, err := lcd.Open()
	if err != nil {
		log.Fatal(err)
	}
	defer disp.Close()

	r := text.NewRenderer(face, disp)
	r.OnMissingGlyph = func(c flashfont.Char) {
		log.Printf("missing glyph: %+v", c)
	}
	if err := r.SetDirection(text.Direction(*dir)); err != nil {
		log.Fatal(err)
	}
	if err := r.SetFontSize(*size); err != nil {
		log.Fatal(err)
	}
	if err := disp.Clear(rgb565.From888(0x000000)); err != nil {
		log.Fatal(err)
	}

	if _, err := r.DrawText(0, 0, "Hello, 世界!\n你好 ABC 123"); err != nil {
		log.Fatal(err)
	}
	r.SetColor(0xFFD700)
	r.SetNumberMode(text.FillZero)
	if _, err := r.DrawNumber(0, 3**size, 42, 6); err != nil {
		log.Fatal(err)
	}
	r.SetNumberMode(text.FillSpace)
	if _, err := r.DrawDecimals(0, 4**size, 3.14159, 8, 3); err != nil {
		log.Fatal(err)
	}
}
