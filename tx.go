package nrf24

import "fmt"

// SendStatus is the outcome of one PollSend call.
type SendStatus uint8

const (
	// SendPending means the TX FIFO still holds packets and no
	// retry limit was hit; poll again.
	SendPending SendStatus = iota
	// SendDone means the TX FIFO drained: every queued packet went
	// out (and, with auto-acknowledge, was acknowledged).
	SendDone
	// SendFailed means the retransmit count was exhausted. The
	// failed packet has been flushed from the FIFO.
	SendFailed
)

func (s SendStatus) String() string {
	switch s {
	case SendPending:
		return "pending"
	case SendDone:
		return "done"
	case SendFailed:
		return "failed"
	}
	return "invalid"
}

// TxEmpty reports whether the TX FIFO holds no packets.
func (r *Radio) TxEmpty() (bool, error) {
	fifo, err := r.txFIFO()
	if err != nil {
		return false, err
	}
	return fifo.txEmpty(), nil
}

// TxFull reports whether the TX FIFO is at its three-packet capacity.
func (r *Radio) TxFull() (bool, error) {
	fifo, err := r.txFIFO()
	if err != nil {
		return false, err
	}
	return fifo.txFull(), nil
}

// CanSend reports whether the TX FIFO has room for another packet.
func (r *Radio) CanSend() (bool, error) {
	full, err := r.TxFull()
	return !full, err
}

func (r *Radio) txFIFO() (fifoStatus, error) {
	if err := r.setMode(Tx); err != nil {
		return 0, fmt.Errorf("nrf24: tx fifo: %w", err)
	}
	_, fifo, err := r.readReg1(regFIFOStatus)
	if err != nil {
		return 0, fmt.Errorf("nrf24: tx fifo: %w", err)
	}
	return fifoStatus(fifo), nil
}

// Send queues packet for transmission and raises chip-enable to start
// it, returning immediately. Completion is observed through PollSend
// or WaitEmpty.
func (r *Radio) Send(packet []byte) error {
	if len(packet) > MaxPayload {
		return fmt.Errorf("nrf24: send: packet is %d bytes, max %d", len(packet), MaxPayload)
	}
	if err := r.setMode(Tx); err != nil {
		return fmt.Errorf("nrf24: send: %w", err)
	}
	if _, _, err := r.exec(writeTxPayloadCmd(packet)); err != nil {
		return fmt.Errorf("nrf24: send: %w", err)
	}
	if err := r.bus.SetCE(true); err != nil {
		return fmt.Errorf("nrf24: send: %w", err)
	}
	return nil
}

// PollSend checks on an in-flight transmission without blocking. On
// SendFailed the chip has given up after the configured retries; the
// dead packet is flushed since the hardware would otherwise keep it
// at the head of the FIFO and block every later send. On SendPending
// chip-enable is raised again and the caller is expected to poll
// until a terminal status; there is no internal scheduler.
func (r *Radio) PollSend() (SendStatus, error) {
	if err := r.setMode(Tx); err != nil {
		return SendPending, fmt.Errorf("nrf24: poll send: %w", err)
	}
	st, fifo, err := r.readReg1(regFIFOStatus)
	if err != nil {
		return SendPending, fmt.Errorf("nrf24: poll send: %w", err)
	}
	switch {
	case st.maxRetries():
		if _, _, err := r.exec(flushTxCmd()); err != nil {
			return SendPending, fmt.Errorf("nrf24: poll send: %w", err)
		}
		if err := r.clearTxInterrupts(); err != nil {
			return SendPending, fmt.Errorf("nrf24: poll send: %w", err)
		}
		return SendFailed, nil
	case fifoStatus(fifo).txEmpty():
		if err := r.clearTxInterrupts(); err != nil {
			return SendPending, fmt.Errorf("nrf24: poll send: %w", err)
		}
		return SendDone, nil
	}
	if err := r.bus.SetCE(true); err != nil {
		return SendPending, fmt.Errorf("nrf24: poll send: %w", err)
	}
	return SendPending, nil
}

// WaitEmpty blocks until the TX FIFO drains, flushing any packet that
// exhausts its retries along the way, then lowers chip-enable. An
// unresponsive bus blocks forever; use PollSend where that matters.
func (r *Radio) WaitEmpty() error {
	if err := r.setMode(Tx); err != nil {
		return fmt.Errorf("nrf24: wait empty: %w", err)
	}
	for {
		st, fifo, err := r.readReg1(regFIFOStatus)
		if err != nil {
			return fmt.Errorf("nrf24: wait empty: %w", err)
		}
		if st.maxRetries() {
			if _, _, err := r.exec(flushTxCmd()); err != nil {
				return fmt.Errorf("nrf24: wait empty: %w", err)
			}
			if _, err := r.writeReg(regStatus, byte(stClearTx)); err != nil {
				return fmt.Errorf("nrf24: wait empty: %w", err)
			}
			continue
		}
		if fifoStatus(fifo).txEmpty() {
			if err := r.clearTxInterrupts(); err != nil {
				return fmt.Errorf("nrf24: wait empty: %w", err)
			}
			return nil
		}
		if err := r.bus.SetCE(true); err != nil {
			return fmt.Errorf("nrf24: wait empty: %w", err)
		}
	}
}

// ClearTxInterrupts clears the transmit status flags and stops the
// radio, for callers abandoning a send they no longer care about.
func (r *Radio) ClearTxInterrupts() error {
	if err := r.setMode(Tx); err != nil {
		return fmt.Errorf("nrf24: clear tx interrupts: %w", err)
	}
	if err := r.clearTxInterrupts(); err != nil {
		return fmt.Errorf("nrf24: clear tx interrupts: %w", err)
	}
	return nil
}

func (r *Radio) clearTxInterrupts() error {
	if _, err := r.writeReg(regStatus, byte(stClearTx)); err != nil {
		return err
	}
	return r.bus.SetCE(false)
}

// Observe reads the transmit telemetry counters: packets lost since
// the channel was last set and retransmissions of the latest packet.
func (r *Radio) Observe() (ObserveTx, error) {
	if err := r.setMode(Tx); err != nil {
		return 0, fmt.Errorf("nrf24: observe: %w", err)
	}
	_, o, err := r.readReg1(regObserveTx)
	if err != nil {
		return 0, fmt.Errorf("nrf24: observe: %w", err)
	}
	return ObserveTx(o), nil
}
