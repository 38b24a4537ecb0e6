// Package spidev connects a Radio to a Linux SPI port and two GPIO
// pins through periph.io.
package spidev

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Options selects the SPI port and pins. The zero value picks the
// first SPI port and leaves the pins unset, which Open rejects.
type Options struct {
	// Port is a spireg port name or alias. Empty selects the first
	// available port.
	Port string
	// CE and CSN are gpioreg pin names, e.g. "GPIO22".
	CE  string
	CSN string
	// Freq is the SPI clock. Zero selects 8 MHz, below the chip's
	// 10 MHz limit with margin for breadboard wiring.
	Freq physic.Frequency
}

// Device is a Bus backed by periph.io. Chip-select is a plain GPIO
// pin rather than the controller's own, since the driver frames
// transactions itself.
type Device struct {
	port spi.PortCloser
	conn spi.Conn
	ce   gpio.PinOut
	csn  gpio.PinOut
}

// Open claims the SPI port and pins.
func Open(opts Options) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("spidev: %w", err)
	}
	ce := gpioreg.ByName(opts.CE)
	if ce == nil {
		return nil, fmt.Errorf("spidev: no pin named %q", opts.CE)
	}
	csn := gpioreg.ByName(opts.CSN)
	if csn == nil {
		return nil, fmt.Errorf("spidev: no pin named %q", opts.CSN)
	}
	port, err := spireg.Open(opts.Port)
	if err != nil {
		return nil, fmt.Errorf("spidev: %w", err)
	}
	freq := opts.Freq
	if freq == 0 {
		freq = 8 * physic.MegaHertz
	}
	conn, err := port.Connect(freq, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("spidev: %w", err)
	}
	d := &Device{port: port, conn: conn, ce: ce, csn: csn}
	if err := ce.Out(gpio.Low); err != nil {
		port.Close()
		return nil, fmt.Errorf("spidev: %w", err)
	}
	if err := csn.Out(gpio.High); err != nil {
		port.Close()
		return nil, fmt.Errorf("spidev: %w", err)
	}
	return d, nil
}

// Transfer exchanges buf with the chip, in place.
func (d *Device) Transfer(buf []byte) error {
	if err := d.conn.Tx(buf, buf); err != nil {
		return fmt.Errorf("spidev: %w", err)
	}
	return nil
}

func (d *Device) SetCE(level bool) error {
	if err := d.ce.Out(gpio.Level(level)); err != nil {
		return fmt.Errorf("spidev: ce: %w", err)
	}
	return nil
}

func (d *Device) SetCSN(level bool) error {
	if err := d.csn.Out(gpio.Level(level)); err != nil {
		return fmt.Errorf("spidev: csn: %w", err)
	}
	return nil
}

// Close releases the SPI port. The pins stay at their last level.
func (d *Device) Close() error {
	return d.port.Close()
}
