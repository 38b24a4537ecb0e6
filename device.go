// Package nrf24 implements a driver for the nRF24L01+ 2.4 GHz packet
// radio transceiver.
//
// The chip is controlled over SPI framed by an active-low chip-select
// line, while a separate chip-enable line starts and stops radio
// activity. The driver owns both through the Bus interface, so the
// same core runs against periph.io on Linux (package spidev), a
// serial-attached bridge (package serialdev), a TinyGo target
// (package machinedev) or the in-memory Simulator.
//
// A Radio tracks the chip's operating mode and mirrors its
// configuration registers in a shadow, writing a register only when
// its value actually changes. The shadow can drift if the chip
// resets or a write fails; Resync rebuilds it from live reads.
//
// Datasheet: https://www.sparkfun.com/datasheets/Components/SMD/nRF24L01Pluss_Preliminary_Product_Specification_v1_0.pdf
package nrf24

import "fmt"

// Bus is the physical connection to the chip: a full-duplex byte
// exchange and the two control lines.
type Bus interface {
	// Transfer exchanges buf with the chip, in place.
	Transfer(buf []byte) error
	// SetCE drives the chip-enable line.
	SetCE(level bool) error
	// SetCSN drives the chip-select line. The line is active low.
	SetCSN(level bool) error
}

// Radio drives a single nRF24L01+. It owns the bus exclusively and
// is not safe for concurrent use.
type Radio struct {
	bus  Bus
	mode Mode
	ctl  control
	cfg  Config
	buf  [1 + MaxPayload]byte
}

// New probes and powers up the chip behind bus, leaving it in
// Standby. The control register is forced to its reset value, while
// the rest of the shadow configuration is read back from the live
// registers. It returns ErrNotConnected when the address-width
// register holds a value the chip cannot produce.
func New(bus Bus) (*Radio, error) {
	r := &Radio{bus: bus, mode: Standby}
	if err := bus.SetCE(false); err != nil {
		return nil, fmt.Errorf("nrf24: init: %w", err)
	}
	if err := bus.SetCSN(true); err != nil {
		return nil, fmt.Errorf("nrf24: init: %w", err)
	}
	_, aw, err := r.readReg1(regSetupAW)
	if err != nil {
		return nil, fmt.Errorf("nrf24: probe: %w", err)
	}
	// A missing chip floats the bus; only the two low bits of
	// SETUP_AW can read back set on a real one.
	if aw > 3 {
		return nil, ErrNotConnected
	}
	// A warm chip keeps its registers across a host restart. Force
	// the control register to its reset value so the driver starts
	// from a known state: interrupts unmasked, 1-byte CRC, powered
	// down.
	if _, err := r.writeReg(regConfig, byte(ctlReset)); err != nil {
		return nil, fmt.Errorf("nrf24: reset: %w", err)
	}
	if err := r.resync(); err != nil {
		return nil, fmt.Errorf("nrf24: init: %w", err)
	}
	if err := r.updateControl(func(c *control) { c.setPwrUp(true) }); err != nil {
		return nil, fmt.Errorf("nrf24: power up: %w", err)
	}
	return r, nil
}

// Mode reports the current operating mode.
func (r *Radio) Mode() Mode { return r.mode }

// exec runs one command as a select/transfer/deselect transaction.
// Chip-select is released even when the transfer fails; the error is
// reported only after the release. The response slice aliases the
// scratch buffer and is valid until the next command.
func (r *Radio) exec(c command) (status, []byte, error) {
	buf := c.encode(r.buf[:])
	if err := r.bus.SetCSN(false); err != nil {
		return 0, nil, err
	}
	err := r.bus.Transfer(buf)
	if cserr := r.bus.SetCSN(true); err == nil {
		err = cserr
	}
	if err != nil {
		return 0, nil, err
	}
	return status(buf[0]), buf[1 : 1+c.resp], nil
}

func (r *Radio) readReg(reg regAddr, width int) (status, []byte, error) {
	return r.exec(readRegisterCmd(reg, width))
}

func (r *Radio) readReg1(reg regAddr) (status, byte, error) {
	st, b, err := r.exec(readRegisterCmd(reg, 1))
	if err != nil {
		return 0, 0, err
	}
	return st, b[0], nil
}

func (r *Radio) writeReg(reg regAddr, value ...byte) (status, error) {
	st, _, err := r.exec(writeRegisterCmd(reg, value))
	return st, err
}

// updateControl applies f to the shadow control register, writing
// the result back only when it differs from the previous value. The
// control register is touched on every mode transition, so the
// dirty-check is what keeps transitions cheap.
func (r *Radio) updateControl(f func(*control)) error {
	old := r.ctl
	f(&r.ctl)
	if r.ctl == old {
		return nil
	}
	_, err := r.writeReg(regConfig, byte(r.ctl))
	return err
}
