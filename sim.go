package nrf24

import "errors"

// Simulator models an nRF24L01+ behind the Bus interface: the
// register file, both FIFOs and the chip-enable/chip-select lines.
// It backs the package tests and the CLI's loopback mode.
//
// Air time is modeled in bus transactions: an in-flight packet
// resolves after TxSteps transfers, successfully unless LinkDown is
// set, in which case the retransmit count is exhausted and the
// max-retry flag latches. With Loopback set, delivered packets arrive
// on the simulator's own pipe 0.
type Simulator struct {
	// LinkDown makes every transmission run out of retries.
	LinkDown bool
	// Loopback delivers transmitted packets to the own RX FIFO.
	Loopback bool
	// TxSteps is the number of transfers an in-flight packet takes
	// to resolve. Zero resolves it on the next transfer.
	TxSteps int
	// Err, when set, fails every Transfer.
	Err error
	// Transfers counts completed bus transactions.
	Transfers int

	regs    [regFeature + 1]byte
	pipe0   [5]byte
	pipe1   [5]byte
	txAddr  [5]byte
	carrier bool

	ce, csn bool
	latched status
	rx      []simPacket
	tx      [][]byte

	inflight  bool
	countdown int
	plos, arc uint8
}

type simPacket struct {
	pipe uint8
	data []byte
}

// fifoDepth is the chip's per-direction FIFO capacity.
const fifoDepth = 3

// NewSimulator returns a simulator holding the chip's reset values.
func NewSimulator() *Simulator {
	s := &Simulator{csn: true}
	s.regs[regConfig] = 0b0000_1000
	s.regs[regEnAA] = 0b0011_1111
	s.regs[regEnRxAddr] = 0b0000_0011
	s.regs[regSetupAW] = 0b11
	s.regs[regSetupRetr] = 0b0000_0011
	s.regs[regRFChannel] = 2
	s.regs[regRFSetup] = 0b0000_1110
	s.pipe0 = [5]byte{0xe7, 0xe7, 0xe7, 0xe7, 0xe7}
	s.pipe1 = [5]byte{0xc2, 0xc2, 0xc2, 0xc2, 0xc2}
	for i, lo := range []byte{0xc3, 0xc4, 0xc5, 0xc6} {
		s.regs[regRxAddrP1+1+regAddr(i)] = lo
	}
	s.txAddr = [5]byte{0xe7, 0xe7, 0xe7, 0xe7, 0xe7}
	return s
}

// Receive queues a packet as if it had arrived over the air on pipe.
// It reports false when the RX FIFO is full and the packet was
// dropped, as the chip drops packets arriving into a full FIFO.
func (s *Simulator) Receive(pipe int, data []byte) bool {
	checkPipe(pipe)
	if len(s.rx) == fifoDepth {
		return false
	}
	p := simPacket{pipe: uint8(pipe)}
	p.data = append(p.data, data...)
	s.rx = append(s.rx, p)
	s.latched |= stRxDR
	return true
}

// SetCarrier sets the carrier-detect bit.
func (s *Simulator) SetCarrier(on bool) { s.carrier = on }

func (s *Simulator) SetCE(level bool) error {
	s.ce = level
	if !level {
		s.inflight = false
	}
	return nil
}

func (s *Simulator) SetCSN(level bool) error {
	s.csn = level
	return nil
}

func (s *Simulator) Transfer(buf []byte) error {
	if s.Err != nil {
		return s.Err
	}
	if s.csn {
		return errors.New("nrf24: simulator: transfer with chip-select high")
	}
	if len(buf) == 0 {
		return errors.New("nrf24: simulator: empty transfer")
	}
	s.Transfers++
	s.step()

	op := buf[0]
	buf[0] = byte(s.status())
	switch {
	case op < opWriteRegister:
		s.readRegister(regAddr(op), buf[1:])
	case op < 0x40:
		s.writeRegister(regAddr(op&0x1f), buf[1:])
	case op == opReadRxPayloadWidth:
		if len(buf) > 1 {
			if len(s.rx) > 0 {
				buf[1] = byte(len(s.rx[0].data))
			} else {
				buf[1] = 0
			}
		}
	case op == opReadRxPayload:
		if len(s.rx) > 0 {
			copy(buf[1:], s.rx[0].data)
			s.rx = s.rx[1:]
		}
	case op == opWriteTxPayload:
		if len(s.tx) < fifoDepth {
			p := make([]byte, len(buf)-1)
			copy(p, buf[1:])
			s.tx = append(s.tx, p)
		}
	case op == opFlushTx:
		s.tx = nil
		s.inflight = false
	case op == opFlushRx:
		s.rx = nil
	default:
		return errors.New("nrf24: simulator: unknown opcode")
	}
	return nil
}

// step advances the transmit model by one bus transaction.
func (s *Simulator) step() {
	cfg := control(s.regs[regConfig])
	transmitting := s.ce && cfg&ctlPwrUp != 0 && cfg&ctlPrimRx == 0 &&
		s.latched&stMaxRT == 0 && len(s.tx) > 0
	if !transmitting {
		s.inflight = false
		return
	}
	if !s.inflight {
		s.inflight = true
		s.countdown = s.TxSteps
	} else if s.countdown > 0 {
		s.countdown--
	}
	if s.countdown > 0 {
		return
	}
	s.inflight = false
	if s.LinkDown {
		// The packet stays at the head of the FIFO; only a flush
		// removes it.
		s.latched |= stMaxRT
		if s.plos < 15 {
			s.plos++
		}
		s.arc = s.regs[regSetupRetr] & 0x0f
		return
	}
	p := s.tx[0]
	s.tx = s.tx[1:]
	s.latched |= stTxDS
	s.arc = 0
	if s.Loopback {
		s.Receive(0, p)
	}
}

func (s *Simulator) status() status {
	st := s.latched
	pipe := status(7)
	if len(s.rx) > 0 {
		pipe = status(s.rx[0].pipe)
	}
	st |= pipe << 1
	if len(s.tx) == fifoDepth {
		st |= stTxFull
	}
	return st
}

func (s *Simulator) fifo() fifoStatus {
	var f fifoStatus
	if len(s.rx) == 0 {
		f |= fifoRxEmpty
	}
	if len(s.rx) == fifoDepth {
		f |= fifoRxFull
	}
	if len(s.tx) == 0 {
		f |= fifoTxEmpty
	}
	if len(s.tx) == fifoDepth {
		f |= fifoTxFull
	}
	return f
}

func (s *Simulator) readRegister(reg regAddr, out []byte) {
	for i := range out {
		out[i] = 0
	}
	switch reg {
	case regRxAddrP0:
		copy(out, s.pipe0[:])
	case regRxAddrP1:
		copy(out, s.pipe1[:])
	case regTxAddr:
		copy(out, s.txAddr[:])
	case regStatus:
		if len(out) > 0 {
			out[0] = byte(s.status())
		}
	case regFIFOStatus:
		if len(out) > 0 {
			out[0] = byte(s.fifo())
		}
	case regObserveTx:
		if len(out) > 0 {
			out[0] = s.plos<<4 | s.arc&0x0f
		}
	case regCD:
		if len(out) > 0 && s.carrier {
			out[0] = 1
		}
	default:
		if len(out) > 0 && int(reg) < len(s.regs) {
			out[0] = s.regs[reg]
		}
	}
}

func (s *Simulator) writeRegister(reg regAddr, in []byte) {
	if len(in) == 0 {
		return
	}
	switch reg {
	case regRxAddrP0:
		copy(s.pipe0[:], in)
	case regRxAddrP1:
		copy(s.pipe1[:], in)
	case regTxAddr:
		copy(s.txAddr[:], in)
	case regStatus:
		// Writing 1 clears a latched flag.
		s.latched &^= status(in[0]) & stClearAll
	case regRFChannel:
		s.regs[reg] = in[0]
		// Lost-packet telemetry resets on a channel change.
		s.plos = 0
	default:
		if int(reg) < len(s.regs) {
			s.regs[reg] = in[0]
		}
	}
}
