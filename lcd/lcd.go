// package lcd implements an SPI driver for ST7789 240x320 panels.
package lcd

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/bcm283x"

	"inkstone.dev/image/rgb565"
	"inkstone.dev/text"
)

type LCD struct {
	dims      image.Point
	spi       spi.PortCloser
	conn      spi.Conn
	window    image.Rectangle
	txBuf     []byte
	backlight bool
}

const (
	lcdWidth  = 240
	lcdHeight = 320
)

var (
	LCD_CS  = bcm283x.GPIO8
	LCD_RST = bcm283x.GPIO27
	LCD_DC  = bcm283x.GPIO25
	LCD_BL  = bcm283x.GPIO24
)

func Open() (*LCD, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	// Use spireg SPI port registry to find the first available SPI bus.
	p, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("lcd: %w", err)
	}
	c, err := p.Connect(40*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("lcd: %w", err)
	}

	lcd := &LCD{
		dims: image.Pt(lcdWidth, lcdHeight),
		spi:  p,
		conn: c,
	}
	maxTx := 4096
	if lim, ok := c.(conn.Limits); ok {
		maxTx = lim.MaxTxSize()
	}
	lcd.txBuf = make([]byte, maxTx)
	if err := lcd.setup(); err != nil {
		lcd.Close()
		return nil, err
	}
	return lcd, nil
}

func (l *LCD) Close() {
	l.spi.Close()
	l.spi = nil
	l.conn = nil
}

func (l *LCD) sendCommand(cmd byte, data ...byte) error {
	LCD_DC.FastOut(gpio.Low)
	if err := l.conn.Tx([]byte{cmd}, make([]byte, 1)); err != nil {
		return err
	}
	if len(data) > 0 {
		LCD_DC.FastOut(gpio.High)
		if err := l.conn.Tx(data, nil); err != nil {
			return err
		}
	}
	return nil
}

func (l *LCD) setup() error {
	for _, p := range []gpio.PinOut{LCD_CS, LCD_RST, LCD_DC} {
		if err := p.Out(gpio.High); err != nil {
			return fmt.Errorf("lcd: %w", err)
		}
	}

	// Turn off backlight during setup.
	LCD_BL.Out(gpio.Low)

	// Reset LCD.
	LCD_RST.FastOut(gpio.High)
	time.Sleep(100 * time.Millisecond)
	LCD_RST.FastOut(gpio.Low)
	time.Sleep(100 * time.Millisecond)
	LCD_RST.FastOut(gpio.High)
	time.Sleep(100 * time.Millisecond)

	var cmdErr error
	sendCommand := func(cmd byte, data ...byte) {
		if cmdErr != nil {
			return
		}
		cmdErr = l.sendCommand(cmd, data...)
	}
	sendCommand(0x36 /*MADCTL*/, madctl(text.Portrait))

	// Initialize LCD registers.
	sendCommand(0x11 /*SLPOUT*/)
	time.Sleep(120 * time.Millisecond)
	sendCommand(0x3a /*COLMOD*/, 0x05)
	sendCommand(0xb2 /*PORCTRL*/, 0x0c, 0x0c, 0x00, 0x33, 0x33)
	sendCommand(0xb7 /*GCTRL*/, 0x35)
	sendCommand(0xbb /*VCOMS*/, 0x37)
	sendCommand(0xc0 /*LCMCTRL*/, 0x2c)
	sendCommand(0xc2 /*VDVVRHEN*/, 0x01)
	sendCommand(0xc3 /*VRHS*/, 0x12)
	sendCommand(0xc4 /*VDVS*/, 0x20)
	sendCommand(0xc6 /*FRCTRL2*/, 0x0f)
	sendCommand(0xd0 /*PWCTRL1*/, 0xa4, 0xa1)
	sendCommand(0x21 /*INVON*/)
	sendCommand(0x29 /*DISPON*/)
	if cmdErr != nil {
		return fmt.Errorf("lcd: SPI command: %w", cmdErr)
	}
	return nil
}

// madctl maps a direction to the ST7789 memory access control bits.
func madctl(d text.Direction) byte {
	const (
		my = 0x80
		mx = 0x40
		mv = 0x20
	)
	switch d {
	case text.PortraitFlip:
		return mx | my
	case text.Landscape:
		return mx | mv
	case text.LandscapeFlip:
		return my | mv
	}
	return 0
}

// Size returns the panel dimensions in the current direction.
func (l *LCD) Size() image.Point {
	return l.dims
}

// SetDirection rotates the scanout. Landscape directions swap the panel
// dimensions.
func (l *LCD) SetDirection(d text.Direction) error {
	if err := l.sendCommand(0x36 /*MADCTL*/, madctl(d)); err != nil {
		return fmt.Errorf("lcd: set direction: %w", err)
	}
	switch d {
	case text.Landscape, text.LandscapeFlip:
		l.dims = image.Pt(lcdHeight, lcdWidth)
	default:
		l.dims = image.Pt(lcdWidth, lcdHeight)
	}
	l.window = image.Rectangle{}
	return nil
}

// Draw streams pix, row-major, into the window r. len(pix) must equal
// r.Dx()*r.Dy().
func (l *LCD) Draw(r image.Rectangle, pix []rgb565.Color) error {
	if !r.In(image.Rectangle{Max: l.dims}) {
		return fmt.Errorf("lcd: window %v outside %v panel", r, l.dims)
	}
	if len(pix) != r.Dx()*r.Dy() {
		return fmt.Errorf("lcd: %d pixels for %v window", len(pix), r)
	}
	if r.Empty() {
		return nil
	}
	if err := l.setWindow(r); err != nil {
		return err
	}

	LCD_DC.FastOut(gpio.High)

	// The panel expects the high byte of each pixel first.
	idx := 0
	for idx < len(pix) {
		buf := l.txBuf
		n := 0
		for n+2 <= len(buf) && idx < len(pix) {
			buf[n] = byte(pix[idx] >> 8)
			buf[n+1] = byte(pix[idx])
			n += 2
			idx++
		}
		if err := l.conn.Tx(buf[:n], nil); err != nil {
			return fmt.Errorf("lcd: blit: %w", err)
		}
	}

	// Turn on backlight if necessary.
	if !l.backlight {
		LCD_BL.Out(gpio.High)
		l.backlight = true
	}

	return nil
}

// Clear fills the whole panel with a single color.
func (l *LCD) Clear(c rgb565.Color) error {
	return l.ClearRect(image.Rectangle{Max: l.dims}, c)
}

// ClearRect fills r with a single color without buffering the whole
// area.
func (l *LCD) ClearRect(r image.Rectangle, c rgb565.Color) error {
	r = r.Intersect(image.Rectangle{Max: l.dims})
	if r.Empty() {
		return nil
	}
	if err := l.setWindow(r); err != nil {
		return err
	}

	LCD_DC.FastOut(gpio.High)

	buf := l.txBuf[:len(l.txBuf)/2*2]
	for i := 0; i < len(buf); i += 2 {
		buf[i] = byte(c >> 8)
		buf[i+1] = byte(c)
	}
	remaining := r.Dx() * r.Dy() * 2
	for remaining > 0 {
		n := len(buf)
		if n > remaining {
			n = remaining
		}
		if err := l.conn.Tx(buf[:n], nil); err != nil {
			return fmt.Errorf("lcd: clear: %w", err)
		}
		remaining -= n
	}
	return nil
}

func (l *LCD) setWindow(r image.Rectangle) error {
	if l.window == r {
		return nil
	}
	l.window = r

	var cmdErr error
	sendCommand := func(cmd byte, data ...byte) {
		if cmdErr != nil {
			return
		}
		cmdErr = l.sendCommand(cmd, data...)
	}
	sendCommand(0x2a /* CASET */, byte(r.Min.X>>8), byte(r.Min.X), byte((r.Max.X-1)>>8), byte((r.Max.X)-1))
	sendCommand(0x2b /* RASET */, byte(r.Min.Y>>8), byte(r.Min.Y), byte((r.Max.Y-1)>>8), byte((r.Max.Y)-1))
	sendCommand(0x2c /* RAMWR */)
	return cmdErr
}
