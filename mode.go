package nrf24

import "fmt"

// Mode is an operating state of the transceiver.
type Mode uint8

const (
	// Standby keeps the oscillator running and the radio idle.
	Standby Mode = iota
	// PowerDown shuts the chip down to register-retention current.
	PowerDown
	// Rx receives into the RX FIFO while chip-enable stays high.
	Rx
	// Tx transmits queued packets whenever chip-enable is raised.
	Tx
)

func (m Mode) String() string {
	switch m {
	case Standby:
		return "standby"
	case PowerDown:
		return "powerdown"
	case Rx:
		return "rx"
	case Tx:
		return "tx"
	}
	return "invalid"
}

// modeVia[from][to] is the mode to enter next on the way from from
// to to. Only Standby borders every other state, so all indirect
// routes hop through it.
var modeVia = [4][4]Mode{
	Standby:   {Standby, PowerDown, Rx, Tx},
	PowerDown: {Standby, PowerDown, Standby, Standby},
	Rx:        {Standby, Standby, Rx, Standby},
	Tx:        {Standby, Standby, Standby, Tx},
}

// setMode walks the transition table until target is reached. Each
// hop performs the single state change bordering the current mode.
func (r *Radio) setMode(target Mode) error {
	for r.mode != target {
		next := modeVia[r.mode][target]
		if err := r.enter(next); err != nil {
			return err
		}
		r.mode = next
	}
	return nil
}

func (r *Radio) enter(next Mode) error {
	switch next {
	case Standby:
		if r.mode == PowerDown {
			return r.updateControl(func(c *control) { c.setPwrUp(true) })
		}
		// Dropping chip-enable stops an active receiver or
		// transmitter.
		return r.bus.SetCE(false)
	case PowerDown:
		return r.updateControl(func(c *control) { c.setPwrUp(false) })
	case Rx:
		if err := r.updateControl(func(c *control) { c.setPrimRx(true) }); err != nil {
			return err
		}
		return r.bus.SetCE(true)
	case Tx:
		// Chip-enable stays low: selecting the transmitter role
		// does not start a transmission.
		return r.updateControl(func(c *control) { c.setPrimRx(false) })
	}
	return nil
}

// SetStandby idles the radio, leaving it powered.
func (r *Radio) SetStandby() error {
	if err := r.setMode(Standby); err != nil {
		return fmt.Errorf("nrf24: standby: %w", err)
	}
	return nil
}

// SetPowerDown powers the chip down. Registers are retained.
func (r *Radio) SetPowerDown() error {
	if err := r.setMode(PowerDown); err != nil {
		return fmt.Errorf("nrf24: power down: %w", err)
	}
	return nil
}

// SetRx enters receive mode and starts the radio.
func (r *Radio) SetRx() error {
	if err := r.setMode(Rx); err != nil {
		return fmt.Errorf("nrf24: rx mode: %w", err)
	}
	return nil
}

// SetTx selects the transmitter role. The radio stays idle until a
// packet is sent.
func (r *Radio) SetTx() error {
	if err := r.setMode(Tx); err != nil {
		return fmt.Errorf("nrf24: tx mode: %w", err)
	}
	return nil
}
