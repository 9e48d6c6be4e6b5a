package flashfont

import "errors"

var (
	// ErrNotFlashed reports that the flash region does not hold a
	// valid font blob. It is permanent for the session.
	ErrNotFlashed = errors.New("flashfont: blob not flashed")
	// ErrGlyphNotFound reports a character absent from the blob.
	ErrGlyphNotFound = errors.New("flashfont: glyph not found")
	// ErrFontSize reports a size outside the five supported values.
	ErrFontSize = errors.New("flashfont: unsupported font size")
)
