package rgb565

import "testing"

func TestFrom888(t *testing.T) {
	tests := []struct {
		rgb  uint32
		want Color
	}{
		{0x000000, 0x0000},
		{0xFFFFFF, 0xFFFF},
		{0xFF0000, 0xF800},
		{0x00FF00, 0x07E0},
		{0x0000FF, 0x001F},
		{0x2C2C2C, 0x2965},
	}
	for _, test := range tests {
		if got := From888(test.rgb); got != test.want {
			t.Errorf("From888(%#.6x) = %#.4x, want %#.4x", test.rgb, got, test.want)
		}
	}
}

func TestRoundtrip(t *testing.T) {
	for c := 0; c <= 0xFFFF; c++ {
		rgb16 := Color(c)
		got := From888(rgb16.To888())
		if got != rgb16 {
			t.Errorf("%#.4x => %#.6x => %#.4x", c, rgb16.To888(), got)
		}
	}
}
