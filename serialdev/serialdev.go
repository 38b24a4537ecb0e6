// Package serialdev connects a Radio to a transceiver wired to a
// helper MCU, reached over a serial port. The MCU runs a small
// pass-through firmware: it answers every frame, so a short or
// malformed reply means the bridge is gone.
//
// Frames, one per bus operation:
//
//	'T' len payload -> the len exchanged bytes
//	'C' level       -> 'C'
//	'S' level       -> 'S'
package serialdev

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

const (
	frameTransfer = 'T'
	frameCE       = 'C'
	frameCSN      = 'S'
)

// Device is a Bus bridged over a serial port.
type Device struct {
	port io.ReadWriteCloser
}

// Open opens the serial port at dev. A zero baud rate selects 115200.
func Open(dev string, baud int) (*Device, error) {
	if baud == 0 {
		baud = 115200
	}
	port, err := serial.OpenPort(&serial.Config{Name: dev, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("serialdev: %w", err)
	}
	return &Device{port: port}, nil
}

// NewDevice wraps an already open port. Tests use it with a scripted
// port.
func NewDevice(port io.ReadWriteCloser) *Device {
	return &Device{port: port}
}

// Transfer sends buf to the bridge and replaces it with the bytes the
// chip shifted back.
func (d *Device) Transfer(buf []byte) error {
	if len(buf) > 0xff {
		return fmt.Errorf("serialdev: transfer of %d bytes exceeds frame limit", len(buf))
	}
	frame := make([]byte, 0, 2+len(buf))
	frame = append(frame, frameTransfer, byte(len(buf)))
	frame = append(frame, buf...)
	if _, err := d.port.Write(frame); err != nil {
		return fmt.Errorf("serialdev: transfer: %w", err)
	}
	if _, err := io.ReadFull(d.port, buf); err != nil {
		return fmt.Errorf("serialdev: transfer reply: %w", err)
	}
	return nil
}

func (d *Device) SetCE(level bool) error {
	return d.setLine(frameCE, level)
}

func (d *Device) SetCSN(level bool) error {
	return d.setLine(frameCSN, level)
}

func (d *Device) setLine(frame byte, level bool) error {
	lvl := byte(0)
	if level {
		lvl = 1
	}
	if _, err := d.port.Write([]byte{frame, lvl}); err != nil {
		return fmt.Errorf("serialdev: set line %c: %w", frame, err)
	}
	var ack [1]byte
	if _, err := io.ReadFull(d.port, ack[:]); err != nil {
		return fmt.Errorf("serialdev: line ack: %w", err)
	}
	if ack[0] != frame {
		return fmt.Errorf("serialdev: bad ack %#x for %c frame", ack[0], frame)
	}
	return nil
}

func (d *Device) Close() error {
	return d.port.Close()
}
