package flashfont

// Encoding selects how multi-byte characters in input text are
// interpreted. A blob may carry index tables for both encodings; the
// renderer picks one at runtime.
type Encoding uint8

const (
	UTF8 Encoding = iota
	GBK
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case GBK:
		return "GBK"
	}
	return "unknown"
}

// Kind classifies one decoded character.
type Kind uint8

const (
	KindASCII Kind = iota
	KindGBK
	KindUTF8
	// KindInvalid marks an undecodable lead byte, consumed as a
	// single opaque byte so rendering can continue.
	KindInvalid
)

// Char is the result of classifying the next character of an input
// buffer: its encoding-specific key and the number of input bytes it
// spans.
type Char struct {
	Kind Kind
	// Code is the ASCII code, or the big-endian GBK code.
	Code uint16
	// Seq holds the raw sequence bytes for KindUTF8.
	Seq [4]byte
	// Len is the number of input bytes consumed.
	Len int
}

// Classify decodes the leading character of s. It never fails:
// malformed input degrades to a single consumed byte of KindInvalid.
func Classify(enc Encoding, s string) Char {
	if len(s) == 0 {
		return Char{Kind: KindInvalid}
	}
	c := s[0]
	if c < 0x80 {
		return Char{Kind: KindASCII, Code: uint16(c), Len: 1}
	}
	if enc == GBK {
		if c >= 0x81 && c <= 0xFE && len(s) >= 2 {
			return Char{Kind: KindGBK, Code: uint16(c)<<8 | uint16(s[1]), Len: 2}
		}
		return Char{Kind: KindInvalid, Code: uint16(c), Len: 1}
	}
	var n int
	switch {
	case c&0xE0 == 0xC0:
		n = 2
	case c&0xF0 == 0xE0:
		n = 3
	case c&0xF8 == 0xF0:
		n = 4
	default:
		return Char{Kind: KindInvalid, Code: uint16(c), Len: 1}
	}
	if len(s) < n {
		return Char{Kind: KindInvalid, Code: uint16(c), Len: 1}
	}
	ch := Char{Kind: KindUTF8, Len: n}
	copy(ch.Seq[:], s[:n])
	return ch
}
