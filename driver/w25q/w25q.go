// package w25q implements a driver for Winbond W25Q serial NOR flash
// chips in 4-byte address mode.
package w25q

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"inkstone.dev/flash"
)

const (
	cmdEnableReset = 0x66
	cmdReset       = 0x99
	cmdJEDECID     = 0x9F
	cmdWriteEnable = 0x06
	cmdReadStatus1 = 0x05
	cmdRead4B      = 0x13
	cmdProgram4B   = 0x12
	cmdEraseSect4B = 0x21
	cmdEraseBlk4B  = 0xDC
	cmdEraseChip   = 0xC7

	statusBusy = 0x01

	PageSize   = 256
	SectorSize = 4 * 1024
	BlockSize  = 64 * 1024
)

// JEDEC IDs of the supported chips.
const (
	IDW25Q128 = 0xEF4018
	IDW25Q256 = 0xEF4019
)

var ErrUnknownChip = errors.New("w25q: unknown JEDEC id")

var chipSizes = map[uint32]int64{
	IDW25Q128: 16 * 1024 * 1024,
	IDW25Q256: 32 * 1024 * 1024,
}

type Device struct {
	spi  spi.PortCloser
	conn spi.Conn
	id   uint32
	size int64
	buf  []byte
}

// Open probes the first available SPI bus for a supported chip.
func Open() (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	p, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("w25q: %w", err)
	}
	d, err := New(p)
	if err != nil {
		p.Close()
		return nil, err
	}
	return d, nil
}

// New probes the chip on p. The device takes ownership of the port and
// closes it on Close.
func New(p spi.PortCloser) (*Device, error) {
	c, err := p.Connect(8*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("w25q: %w", err)
	}
	d := &Device{spi: p, conn: c}
	maxTx := 4096
	if lim, ok := c.(conn.Limits); ok {
		maxTx = lim.MaxTxSize()
	}
	d.buf = make([]byte, maxTx)
	if err := d.reset(); err != nil {
		return nil, err
	}
	id, err := d.readJEDEC()
	if err != nil {
		return nil, err
	}
	size, ok := chipSizes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %#.6x", ErrUnknownChip, id)
	}
	d.id = id
	d.size = size
	return d, nil
}

func (d *Device) Close() error {
	err := d.spi.Close()
	d.spi = nil
	d.conn = nil
	return err
}

// ID returns the chip's JEDEC id.
func (d *Device) ID() uint32 {
	return d.id
}

// Size returns the chip capacity in bytes.
func (d *Device) Size() int64 {
	return d.size
}

// Region returns a bounds-checked read-only window over the whole chip.
func (d *Device) Region() *flash.Region {
	return flash.NewRegion(d, d.size)
}

func (d *Device) reset() error {
	if err := d.conn.Tx([]byte{cmdEnableReset}, nil); err != nil {
		return fmt.Errorf("w25q: reset: %w", err)
	}
	if err := d.conn.Tx([]byte{cmdReset}, nil); err != nil {
		return fmt.Errorf("w25q: reset: %w", err)
	}
	time.Sleep(time.Millisecond)
	return nil
}

func (d *Device) readJEDEC() (uint32, error) {
	var rx [4]byte
	if err := d.conn.Tx([]byte{cmdJEDECID, 0, 0, 0}, rx[:]); err != nil {
		return 0, fmt.Errorf("w25q: JEDEC id: %w", err)
	}
	return uint32(rx[1])<<16 | uint32(rx[2])<<8 | uint32(rx[3]), nil
}

func addr4(cmd byte, off int64) [5]byte {
	return [5]byte{cmd, byte(off >> 24), byte(off >> 16), byte(off >> 8), byte(off)}
}

// ReadAt implements io.ReaderAt.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > d.size {
		return 0, fmt.Errorf("w25q: read [%#x, %#x) beyond chip size %#x", off, off+int64(len(p)), d.size)
	}
	total := 0
	for len(p) > 0 {
		n := len(d.buf) - 5
		if n > len(p) {
			n = len(p)
		}
		tx := d.buf[:5+n]
		hdr := addr4(cmdRead4B, off)
		copy(tx, hdr[:])
		for i := 5; i < len(tx); i++ {
			tx[i] = 0
		}
		rx := make([]byte, len(tx))
		if err := d.conn.Tx(tx, rx); err != nil {
			return total, fmt.Errorf("w25q: read at %#x: %w", off, err)
		}
		copy(p, rx[5:])
		p = p[n:]
		off += int64(n)
		total += n
	}
	return total, nil
}

// WriteAt implements io.WriterAt. The destination range must have been
// erased; NOR programming only clears bits.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > d.size {
		return 0, fmt.Errorf("w25q: write [%#x, %#x) beyond chip size %#x", off, off+int64(len(p)), d.size)
	}
	total := 0
	for len(p) > 0 {
		n := PageSize - int(off%PageSize)
		if n > len(p) {
			n = len(p)
		}
		if err := d.writeEnable(); err != nil {
			return total, err
		}
		tx := d.buf[:5+n]
		hdr := addr4(cmdProgram4B, off)
		copy(tx, hdr[:])
		copy(tx[5:], p[:n])
		if err := d.conn.Tx(tx, nil); err != nil {
			return total, fmt.Errorf("w25q: program at %#x: %w", off, err)
		}
		if err := d.waitIdle(10 * time.Millisecond); err != nil {
			return total, err
		}
		p = p[n:]
		off += int64(n)
		total += n
	}
	return total, nil
}

// EraseSector erases the 4 KiB sector containing off.
func (d *Device) EraseSector(off int64) error {
	return d.erase(cmdEraseSect4B, off&^int64(SectorSize-1), time.Second)
}

// EraseBlock erases the 64 KiB block containing off.
func (d *Device) EraseBlock(off int64) error {
	return d.erase(cmdEraseBlk4B, off&^int64(BlockSize-1), 3*time.Second)
}

// EraseChip erases the whole chip. This takes minutes on a real part.
func (d *Device) EraseChip() error {
	if err := d.writeEnable(); err != nil {
		return err
	}
	if err := d.conn.Tx([]byte{cmdEraseChip}, nil); err != nil {
		return fmt.Errorf("w25q: chip erase: %w", err)
	}
	return d.waitIdle(10 * time.Minute)
}

func (d *Device) erase(cmd byte, off int64, timeout time.Duration) error {
	if off < 0 || off >= d.size {
		return fmt.Errorf("w25q: erase at %#x beyond chip size %#x", off, d.size)
	}
	if err := d.writeEnable(); err != nil {
		return err
	}
	hdr := addr4(cmd, off)
	if err := d.conn.Tx(hdr[:], nil); err != nil {
		return fmt.Errorf("w25q: erase at %#x: %w", off, err)
	}
	return d.waitIdle(timeout)
}

func (d *Device) writeEnable() error {
	if err := d.conn.Tx([]byte{cmdWriteEnable}, nil); err != nil {
		return fmt.Errorf("w25q: write enable: %w", err)
	}
	return nil
}

func (d *Device) waitIdle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		var rx [2]byte
		if err := d.conn.Tx([]byte{cmdReadStatus1, 0}, rx[:]); err != nil {
			return fmt.Errorf("w25q: status: %w", err)
		}
		if rx[1]&statusBusy == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("w25q: busy after %v", timeout)
		}
		time.Sleep(time.Millisecond)
	}
}
