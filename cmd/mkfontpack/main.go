// Command mkfontpack builds a flash font blob from a TrueType font and
// a character list. The output image is written at the blob's base; pad
// or offset it as needed when flashing.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"inkstone.dev/font/flashfont"
	"inkstone.dev/font/packer"
)

var (
	ttfPath   = flag.String("ttf", "", "TrueType font file")
	charsPath = flag.String("chars", "", "file listing the characters to pack, UTF-8")
	outPath   = flag.String("o", "fontpack.bin", "output blob")
)

func main() {
	flag.Parse()

	if *ttfPath == "" || *charsPath == "" {
		fmt.Fprintf(os.Stderr, "usage: mkfontpack -ttf font.ttf -chars chars.txt [-o out.bin]\n")
		os.Exit(1)
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mkfontpack: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ttf, err := os.ReadFile(*ttfPath)
	if err != nil {
		return err
	}
	sfnt, err := opentype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("%s: %w", *ttfPath, err)
	}
	chars, err := os.ReadFile(*charsPath)
	if err != nil {
		return err
	}

	b := packer.NewBuilder()
	for _, size := range flashfont.Sizes() {
		face, err := opentype.NewFace(sfnt, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return fmt.Errorf("%s at %dpx: %w", *ttfPath, size, err)
		}
		b.SetFace(size, face)
	}
	b.Add(string(chars))

	blob, err := b.Build()
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outPath, blob, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %d glyphs, %d bytes\n", *outPath, b.GlyphCount(), len(blob))
	return nil
}
