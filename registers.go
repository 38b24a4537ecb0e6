package nrf24

// Register addresses. The pipe address and payload-width registers
// for pipes 1 through 5 follow their pipe-0 register consecutively.
type regAddr uint8

const (
	regConfig     regAddr = 0x00
	regEnAA       regAddr = 0x01
	regEnRxAddr   regAddr = 0x02
	regSetupAW    regAddr = 0x03
	regSetupRetr  regAddr = 0x04
	regRFChannel  regAddr = 0x05
	regRFSetup    regAddr = 0x06
	regStatus     regAddr = 0x07
	regObserveTx  regAddr = 0x08
	regCD         regAddr = 0x09
	regRxAddrP0   regAddr = 0x0a
	regRxAddrP1   regAddr = 0x0b
	regTxAddr     regAddr = 0x10
	regRxPwP0     regAddr = 0x11
	regFIFOStatus regAddr = 0x17
	regDynPD      regAddr = 0x1c
	regFeature    regAddr = 0x1d
)

// regRxAddr returns the receive address register of pipe.
func regRxAddr(pipe int) regAddr {
	checkPipe(pipe)
	return regRxAddrP0 + regAddr(pipe)
}

// regRxPw returns the payload-width register of pipe.
func regRxPw(pipe int) regAddr {
	checkPipe(pipe)
	return regRxPwP0 + regAddr(pipe)
}

func checkPipe(pipe int) {
	if pipe < 0 || pipe >= PipeCount {
		panic("nrf24: invalid pipe index")
	}
}

// regWidth returns the byte width of a register. The pipe-0, pipe-1
// and transmit address registers hold a full address; every other
// register, including the remaining pipe addresses, is one byte.
func regWidth(reg regAddr, addrWidth uint8) int {
	switch reg {
	case regRxAddrP0, regRxAddrP1, regTxAddr:
		return int(addrWidth)
	}
	return 1
}

// control mirrors the CONFIG register: power state, radio role, CRC
// and interrupt masking.
type control uint8

const (
	ctlPrimRx    control = 1 << 0
	ctlPwrUp     control = 1 << 1
	ctlCRCO      control = 1 << 2
	ctlEnCRC     control = 1 << 3
	ctlMaskMaxRT control = 1 << 4
	ctlMaskTxDS  control = 1 << 5
	ctlMaskRxDR  control = 1 << 6

	// Register value after a chip reset.
	ctlReset control = 0b0000_1000
)

func (c *control) set(bit control, on bool) {
	if on {
		*c |= bit
	} else {
		*c &^= bit
	}
}

func (c *control) setPwrUp(on bool)  { c.set(ctlPwrUp, on) }
func (c *control) setPrimRx(on bool) { c.set(ctlPrimRx, on) }

func (c *control) setCRC(m CRCMode) {
	c.set(ctlEnCRC, m != CRCNone)
	c.set(ctlCRCO, m == CRC2Bytes)
}

func (c control) crc() CRCMode {
	switch {
	case c&ctlEnCRC == 0:
		return CRCNone
	case c&ctlCRCO != 0:
		return CRC2Bytes
	}
	return CRC1Byte
}

// setMask updates the interrupt mask bits. A mask bit of 1 keeps the
// event off the IRQ pin, so enabled flags clear their bit.
func (c *control) setMask(m IRQMask) {
	c.set(ctlMaskRxDR, !m.RxDataReady)
	c.set(ctlMaskTxDS, !m.TxDataSent)
	c.set(ctlMaskMaxRT, !m.MaxRetries)
}

func (c control) mask() IRQMask {
	return IRQMask{
		RxDataReady: c&ctlMaskRxDR == 0,
		TxDataSent:  c&ctlMaskTxDS == 0,
		MaxRetries:  c&ctlMaskMaxRT == 0,
	}
}

// status is the STATUS register, shifted out as the first byte of
// every transaction. Writing 1 to a latched flag clears it.
type status uint8

const (
	stTxFull status = 1 << 0
	stMaxRT  status = 1 << 4
	stTxDS   status = 1 << 5
	stRxDR   status = 1 << 6

	// Write values clearing latched flags.
	stClearAll status = stRxDR | stTxDS | stMaxRT
	stClearTx  status = stTxDS | stMaxRT
)

func (s status) rxReady() bool    { return s&stRxDR != 0 }
func (s status) txSent() bool     { return s&stTxDS != 0 }
func (s status) maxRetries() bool { return s&stMaxRT != 0 }
func (s status) txFull() bool     { return s&stTxFull != 0 }

// rxPipe returns the pipe number of the payload at the top of the RX
// FIFO; 7 means the FIFO is empty.
func (s status) rxPipe() uint8 { return uint8(s>>1) & 0b111 }

// fifoStatus is the FIFO_STATUS register.
type fifoStatus uint8

const (
	fifoRxEmpty fifoStatus = 1 << 0
	fifoRxFull  fifoStatus = 1 << 1
	fifoTxEmpty fifoStatus = 1 << 4
	fifoTxFull  fifoStatus = 1 << 5
	fifoTxReuse fifoStatus = 1 << 6
)

func (f fifoStatus) rxEmpty() bool { return f&fifoRxEmpty != 0 }
func (f fifoStatus) rxFull() bool  { return f&fifoRxFull != 0 }
func (f fifoStatus) txEmpty() bool { return f&fifoTxEmpty != 0 }
func (f fifoStatus) txFull() bool  { return f&fifoTxFull != 0 }

// ObserveTx is the OBSERVE_TX register: transmit link telemetry.
type ObserveTx uint8

// Lost counts packets lost since the RF channel was last written,
// saturating at 15.
func (o ObserveTx) Lost() uint8 { return uint8(o) >> 4 }

// Retries counts retransmissions of the most recent packet.
func (o ObserveTx) Retries() uint8 { return uint8(o) & 0x0f }

// FEATURE register bits.
const featEnDPL = 1 << 2

// encodeRFSetup packs the air data rate and PA level into the
// RF_SETUP register. The two couple: neither can be written without
// the other.
func encodeRFSetup(rate DataRate, power PALevel) byte {
	var v byte
	switch rate {
	case Rate250Kbps:
		v |= 1 << 5 // RF_DR_LOW
	case Rate2Mbps:
		v |= 1 << 3 // RF_DR_HIGH
	}
	v |= byte(power&0b11) << 1
	return v
}

func decodeRFSetup(v byte) (DataRate, PALevel) {
	rate := Rate1Mbps
	switch {
	case v&(1<<5) != 0:
		rate = Rate250Kbps
	case v&(1<<3) != 0:
		rate = Rate2Mbps
	}
	return rate, PALevel(v>>1) & 0b11
}

// encodeAW converts an address width in bytes to the SETUP_AW
// register value.
func encodeAW(width uint8) byte { return width - 2 }

func decodeAW(v byte) uint8 { return v&0b11 + 2 }

func encodeRetr(rc Retransmit) byte { return rc.Delay<<4 | rc.Count&0x0f }

func decodeRetr(v byte) Retransmit { return Retransmit{Delay: v >> 4, Count: v & 0x0f} }
