package nrf24

import "fmt"

// CanRead reports the pipe number of the packet at the top of the RX
// FIFO, entering receive mode first. It clears all three latched
// status flags as a side effect, so after waiting on an interrupt the
// caller must keep calling until ok is false before waiting again.
func (r *Radio) CanRead() (pipe int, ok bool, err error) {
	if err := r.setMode(Rx); err != nil {
		return 0, false, fmt.Errorf("nrf24: can read: %w", err)
	}
	st, err := r.writeReg(regStatus, byte(stClearAll))
	if err != nil {
		return 0, false, fmt.Errorf("nrf24: can read: %w", err)
	}
	_, fifo, err := r.readReg1(regFIFOStatus)
	if err != nil {
		return 0, false, fmt.Errorf("nrf24: can read: %w", err)
	}
	if fifoStatus(fifo).rxEmpty() {
		return 0, false, nil
	}
	return int(st.rxPipe()), true, nil
}

// HasCarrier reports whether a carrier is detected on the configured
// channel. The radio must listen for it, so receive mode is forced.
func (r *Radio) HasCarrier() (bool, error) {
	if err := r.setMode(Rx); err != nil {
		return false, fmt.Errorf("nrf24: carrier: %w", err)
	}
	_, cd, err := r.readReg1(regCD)
	if err != nil {
		return false, fmt.Errorf("nrf24: carrier: %w", err)
	}
	return cd&1 != 0, nil
}

// RxEmpty reports whether the RX FIFO holds no packets.
func (r *Radio) RxEmpty() (bool, error) {
	fifo, err := r.rxFIFO()
	if err != nil {
		return false, err
	}
	return fifo.rxEmpty(), nil
}

// RxFull reports whether the RX FIFO is at its three-packet capacity.
func (r *Radio) RxFull() (bool, error) {
	fifo, err := r.rxFIFO()
	if err != nil {
		return false, err
	}
	return fifo.rxFull(), nil
}

func (r *Radio) rxFIFO() (fifoStatus, error) {
	if err := r.setMode(Rx); err != nil {
		return 0, fmt.Errorf("nrf24: rx fifo: %w", err)
	}
	_, fifo, err := r.readReg1(regFIFOStatus)
	if err != nil {
		return 0, fmt.Errorf("nrf24: rx fifo: %w", err)
	}
	return fifoStatus(fifo), nil
}

// Read removes the packet at the top of the RX FIFO and returns it.
// The length is read from the chip first; a value above MaxPayload
// cannot come from a working transceiver and is reported as an error.
func (r *Radio) Read() (Payload, error) {
	if err := r.setMode(Rx); err != nil {
		return Payload{}, fmt.Errorf("nrf24: read: %w", err)
	}
	_, w, err := r.exec(readRxPayloadWidthCmd())
	if err != nil {
		return Payload{}, fmt.Errorf("nrf24: read width: %w", err)
	}
	width := int(w[0])
	if width > MaxPayload {
		return Payload{}, fmt.Errorf("nrf24: read: implausible payload width %d", width)
	}
	_, b, err := r.exec(readRxPayloadCmd(width))
	if err != nil {
		return Payload{}, fmt.Errorf("nrf24: read: %w", err)
	}
	return newPayload(b), nil
}
