//go:build tinygo

// Package machinedev connects a Radio to the SPI controller and pins
// of a TinyGo target.
package machinedev

import (
	"machine"

	"tinygo.org/x/drivers"
)

// Device is a Bus backed by a machine SPI and two output pins.
type Device struct {
	spi drivers.SPI
	ce  machine.Pin
	csn machine.Pin
}

// New configures the pins as outputs, chip-enable low and chip-select
// high, and returns the device. The SPI controller must already be
// configured for mode 0 at up to 10 MHz.
func New(spi drivers.SPI, ce, csn machine.Pin) *Device {
	ce.Configure(machine.PinConfig{Mode: machine.PinOutput})
	csn.Configure(machine.PinConfig{Mode: machine.PinOutput})
	ce.Low()
	csn.High()
	return &Device{spi: spi, ce: ce, csn: csn}
}

// Transfer exchanges buf with the chip, in place.
func (d *Device) Transfer(buf []byte) error {
	return d.spi.Tx(buf, buf)
}

func (d *Device) SetCE(level bool) error {
	d.ce.Set(level)
	return nil
}

func (d *Device) SetCSN(level bool) error {
	d.csn.Set(level)
	return nil
}
