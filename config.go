package nrf24

import "fmt"

// PipeCount is the number of receive pipes.
const PipeCount = 6

// DataRate is the on-air data rate.
type DataRate uint8

const (
	Rate1Mbps DataRate = iota
	Rate2Mbps
	Rate250Kbps
)

func (d DataRate) String() string {
	switch d {
	case Rate1Mbps:
		return "1Mbps"
	case Rate2Mbps:
		return "2Mbps"
	case Rate250Kbps:
		return "250kbps"
	}
	return "invalid"
}

// CRCMode selects the on-air checksum length.
type CRCMode uint8

const (
	CRCNone CRCMode = iota
	CRC1Byte
	CRC2Bytes
)

// PALevel is the transmit power-amplifier level. The names give the
// attenuation below 0 dBm.
type PALevel uint8

const (
	PA18dBm PALevel = iota // -18 dBm, the weakest
	PA12dBm                // -12 dBm
	PA6dBm                 // -6 dBm
	PA0dBm                 // 0 dBm, the strongest
)

// IRQMask selects which events are reflected on the chip's IRQ pin.
// An enabled flag lets its event pull the pin low.
type IRQMask struct {
	RxDataReady bool
	TxDataSent  bool
	MaxRetries  bool
}

// Retransmit configures automatic retransmission: Delay in steps of
// 250 µs above the minimum, Count attempts. Both range 0-15; a zero
// count disables retransmission.
type Retransmit struct {
	Delay uint8
	Count uint8
}

// Addr is a radio address of 3 to 5 bytes, stored least significant
// byte first as it travels on air.
type Addr struct {
	b [5]byte
	n uint8
}

// NewAddr builds an address from b, least significant byte first.
func NewAddr(b ...byte) (Addr, error) {
	if len(b) < 3 || len(b) > 5 {
		return Addr{}, fmt.Errorf("nrf24: address must be 3-5 bytes, got %d", len(b))
	}
	var a Addr
	a.n = uint8(copy(a.b[:], b))
	return a, nil
}

func mustAddr(b ...byte) Addr {
	a, err := NewAddr(b...)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns the address bytes, least significant first.
func (a Addr) Bytes() []byte { return a.b[:a.n] }

// Len returns the address length in bytes.
func (a Addr) Len() int { return int(a.n) }

// String formats the address as hex, most significant byte first.
func (a Addr) String() string {
	r := make([]byte, a.n)
	for i := range r {
		r[i] = a.b[int(a.n)-1-i]
	}
	return fmt.Sprintf("%X", r)
}

// Config is the logical configuration of the transceiver. The driver
// keeps a shadow of it that mirrors the hardware registers.
type Config struct {
	Rate       DataRate
	CRC        CRCMode
	Channel    uint8
	Power      PALevel
	Mask       IRQMask
	RxEnabled  [PipeCount]bool
	RxAddrs    [PipeCount]Addr
	TxAddr     Addr
	Retransmit Retransmit
	AutoAck    [PipeCount]bool
	AddrWidth  uint8
	// PayloadWidths holds the expected packet length per pipe.
	// Zero selects dynamic payload length for the pipe.
	PayloadWidths [PipeCount]uint8
}

// Validate checks the configuration invariants: channel below 126,
// address width 3-5, every address as long as the width, payload
// widths at most 32 and retransmit fields at most 15.
func (c Config) Validate() error {
	if err := checkChannel(c.Channel); err != nil {
		return err
	}
	if c.AddrWidth < 3 || c.AddrWidth > 5 {
		return fmt.Errorf("nrf24: address width %d out of range 3-5", c.AddrWidth)
	}
	for i, a := range c.RxAddrs {
		if a.Len() != int(c.AddrWidth) {
			return fmt.Errorf("nrf24: pipe %d address is %d bytes, width is %d", i, a.Len(), c.AddrWidth)
		}
	}
	if c.TxAddr.Len() != int(c.AddrWidth) {
		return fmt.Errorf("nrf24: tx address is %d bytes, width is %d", c.TxAddr.Len(), c.AddrWidth)
	}
	if c.Retransmit.Delay > 15 || c.Retransmit.Count > 15 {
		return fmt.Errorf("nrf24: retransmit %d/%d out of range 0-15", c.Retransmit.Delay, c.Retransmit.Count)
	}
	for i, w := range c.PayloadWidths {
		if w > MaxPayload {
			return fmt.Errorf("nrf24: pipe %d payload width %d exceeds %d", i, w, MaxPayload)
		}
	}
	if c.Rate > Rate250Kbps {
		return fmt.Errorf("nrf24: invalid data rate %d", c.Rate)
	}
	if c.CRC > CRC2Bytes {
		return fmt.Errorf("nrf24: invalid crc mode %d", c.CRC)
	}
	if c.Power > PA0dBm {
		return fmt.Errorf("nrf24: invalid pa level %d", c.Power)
	}
	return nil
}

func checkChannel(ch uint8) error {
	if ch > 125 {
		return fmt.Errorf("nrf24: channel %d out of range 0-125", ch)
	}
	return nil
}

// DefaultConfig returns a conservative configuration: 1 Mbps, CRC
// off, channel 0, the weakest transmit power, all interrupts enabled
// and no pipes active. Addresses are the chip's reset defaults.
func DefaultConfig() Config {
	return Config{
		Rate:    Rate1Mbps,
		CRC:     CRCNone,
		Channel: 0,
		Power:   PA18dBm,
		Mask:    IRQMask{RxDataReady: true, TxDataSent: true, MaxRetries: true},
		RxAddrs: [PipeCount]Addr{
			mustAddr(0xe7, 0xe7, 0xe7, 0xe7, 0xe7),
			mustAddr(0xc2, 0xc2, 0xc2, 0xc2, 0xc2),
			mustAddr(0xc3, 0xc2, 0xc2, 0xc2, 0xc2),
			mustAddr(0xc4, 0xc2, 0xc2, 0xc2, 0xc2),
			mustAddr(0xc5, 0xc2, 0xc2, 0xc2, 0xc2),
			mustAddr(0xc6, 0xc2, 0xc2, 0xc2, 0xc2),
		},
		TxAddr:    mustAddr(0xe7, 0xe7, 0xe7, 0xe7, 0xe7),
		AddrWidth: 5,
	}
}

// SetDataRate sets the air data rate. RF_SETUP couples the rate with
// the PA level, so the level is taken from the shadow.
func (r *Radio) SetDataRate(rate DataRate) error {
	if rate > Rate250Kbps {
		return fmt.Errorf("nrf24: invalid data rate %d", rate)
	}
	if _, err := r.writeReg(regRFSetup, encodeRFSetup(rate, r.cfg.Power)); err != nil {
		return fmt.Errorf("nrf24: set data rate: %w", err)
	}
	r.cfg.Rate = rate
	return nil
}

// SetPALevel sets the transmit power, keeping the shadowed data rate
// in the shared RF_SETUP register.
func (r *Radio) SetPALevel(power PALevel) error {
	if power > PA0dBm {
		return fmt.Errorf("nrf24: invalid pa level %d", power)
	}
	if _, err := r.writeReg(regRFSetup, encodeRFSetup(r.cfg.Rate, power)); err != nil {
		return fmt.Errorf("nrf24: set pa level: %w", err)
	}
	r.cfg.Power = power
	return nil
}

// SetCRC sets the on-air checksum mode.
func (r *Radio) SetCRC(mode CRCMode) error {
	if mode > CRC2Bytes {
		return fmt.Errorf("nrf24: invalid crc mode %d", mode)
	}
	if err := r.updateControl(func(c *control) { c.setCRC(mode) }); err != nil {
		return fmt.Errorf("nrf24: set crc: %w", err)
	}
	r.cfg.CRC = mode
	return nil
}

// SetIRQMask selects the events reflected on the IRQ pin.
func (r *Radio) SetIRQMask(m IRQMask) error {
	if err := r.updateControl(func(c *control) { c.setMask(m) }); err != nil {
		return fmt.Errorf("nrf24: set irq mask: %w", err)
	}
	r.cfg.Mask = m
	return nil
}

// SetChannel tunes the radio to RF channel ch (0-125).
func (r *Radio) SetChannel(ch uint8) error {
	if err := checkChannel(ch); err != nil {
		return err
	}
	if _, err := r.writeReg(regRFChannel, ch); err != nil {
		return fmt.Errorf("nrf24: set channel: %w", err)
	}
	r.cfg.Channel = ch
	return nil
}

// SetRxEnabled opens and closes the receive pipes.
func (r *Radio) SetRxEnabled(pipes [PipeCount]bool) error {
	if _, err := r.writeReg(regEnRxAddr, pipeBits(pipes)); err != nil {
		return fmt.Errorf("nrf24: set rx enabled: %w", err)
	}
	r.cfg.RxEnabled = pipes
	return nil
}

// SetAutoAck selects which pipes acknowledge received packets.
func (r *Radio) SetAutoAck(pipes [PipeCount]bool) error {
	if _, err := r.writeReg(regEnAA, pipeBits(pipes)); err != nil {
		return fmt.Errorf("nrf24: set auto ack: %w", err)
	}
	r.cfg.AutoAck = pipes
	return nil
}

// SetAddrWidth sets the address width (3-5 bytes) shared by all
// pipes and the transmitter. Changing it reinterprets the configured
// addresses; set them again afterwards.
func (r *Radio) SetAddrWidth(width uint8) error {
	if width < 3 || width > 5 {
		return fmt.Errorf("nrf24: address width %d out of range 3-5", width)
	}
	if _, err := r.writeReg(regSetupAW, encodeAW(width)); err != nil {
		return fmt.Errorf("nrf24: set address width: %w", err)
	}
	r.cfg.AddrWidth = width
	return nil
}

// SetRxAddr sets the receive address of pipe. The address must be as
// long as the configured width. Pipes 2 to 5 share all but their
// lowest byte with pipe 1, so only the low byte reaches the chip for
// them.
func (r *Radio) SetRxAddr(pipe int, a Addr) error {
	checkPipe(pipe)
	if a.Len() != int(r.cfg.AddrWidth) {
		return fmt.Errorf("nrf24: pipe %d address is %d bytes, width is %d", pipe, a.Len(), r.cfg.AddrWidth)
	}
	v := a.Bytes()
	if pipe >= 2 {
		v = v[:1]
	}
	if _, err := r.writeReg(regRxAddr(pipe), v...); err != nil {
		return fmt.Errorf("nrf24: set rx address: %w", err)
	}
	r.cfg.RxAddrs[pipe] = a
	return nil
}

// SetTxAddr sets the address new packets are sent to.
func (r *Radio) SetTxAddr(a Addr) error {
	if a.Len() != int(r.cfg.AddrWidth) {
		return fmt.Errorf("nrf24: tx address is %d bytes, width is %d", a.Len(), r.cfg.AddrWidth)
	}
	if _, err := r.writeReg(regTxAddr, a.Bytes()...); err != nil {
		return fmt.Errorf("nrf24: set tx address: %w", err)
	}
	r.cfg.TxAddr = a
	return nil
}

// SetRetransmit configures automatic retransmission; see Retransmit.
func (r *Radio) SetRetransmit(delay, count uint8) error {
	if delay > 15 || count > 15 {
		return fmt.Errorf("nrf24: retransmit %d/%d out of range 0-15", delay, count)
	}
	rc := Retransmit{Delay: delay, Count: count}
	if _, err := r.writeReg(regSetupRetr, encodeRetr(rc)); err != nil {
		return fmt.Errorf("nrf24: set retransmit: %w", err)
	}
	r.cfg.Retransmit = rc
	return nil
}

// SetPayloadWidths configures the expected packet length per pipe;
// zero selects dynamic payload length. The feature enable must reach
// the chip before the dynamic-payload bitmap, and static widths are
// written even for pipes currently dynamic since the chip ignores
// them until the pipe leaves dynamic mode.
func (r *Radio) SetPayloadWidths(widths [PipeCount]uint8) error {
	var dyn byte
	for i, w := range widths {
		if w > MaxPayload {
			return fmt.Errorf("nrf24: pipe %d payload width %d exceeds %d", i, w, MaxPayload)
		}
		if w == 0 {
			dyn |= 1 << i
		}
	}
	var feature byte
	if dyn != 0 {
		feature = featEnDPL
	}
	if _, err := r.writeReg(regFeature, feature); err != nil {
		return fmt.Errorf("nrf24: set payload widths: %w", err)
	}
	if _, err := r.writeReg(regDynPD, dyn); err != nil {
		return fmt.Errorf("nrf24: set payload widths: %w", err)
	}
	for i, w := range widths {
		if w == 0 {
			continue
		}
		if _, err := r.writeReg(regRxPw(i), w); err != nil {
			return fmt.Errorf("nrf24: set payload widths: %w", err)
		}
	}
	r.cfg.PayloadWidths = widths
	return nil
}

// The getters answer from the shadow without bus traffic.

func (r *Radio) DataRate() DataRate { return r.cfg.Rate }

func (r *Radio) CRC() CRCMode { return r.cfg.CRC }

func (r *Radio) Channel() uint8 { return r.cfg.Channel }

func (r *Radio) PALevel() PALevel { return r.cfg.Power }

func (r *Radio) IRQMask() IRQMask { return r.cfg.Mask }

func (r *Radio) RxEnabled() [PipeCount]bool { return r.cfg.RxEnabled }

func (r *Radio) RxAddr(pipe int) Addr {
	checkPipe(pipe)
	return r.cfg.RxAddrs[pipe]
}

func (r *Radio) TxAddr() Addr { return r.cfg.TxAddr }

func (r *Radio) Retransmit() Retransmit { return r.cfg.Retransmit }

func (r *Radio) AutoAck() [PipeCount]bool { return r.cfg.AutoAck }

func (r *Radio) AddrWidth() uint8 { return r.cfg.AddrWidth }

func (r *Radio) PayloadWidths() [PipeCount]uint8 { return r.cfg.PayloadWidths }

// Config returns the shadow configuration.
func (r *Radio) Config() Config { return r.cfg }

// SetConfig applies cfg field by field, diffing against the shadow
// so unchanged fields cost no bus traffic. The address width goes
// first since the addresses depend on it.
func (r *Radio) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.AddrWidth != r.cfg.AddrWidth {
		if err := r.SetAddrWidth(cfg.AddrWidth); err != nil {
			return err
		}
	}
	if cfg.Rate != r.cfg.Rate {
		if err := r.SetDataRate(cfg.Rate); err != nil {
			return err
		}
	}
	if cfg.Power != r.cfg.Power {
		if err := r.SetPALevel(cfg.Power); err != nil {
			return err
		}
	}
	if cfg.CRC != r.cfg.CRC {
		if err := r.SetCRC(cfg.CRC); err != nil {
			return err
		}
	}
	if cfg.Mask != r.cfg.Mask {
		if err := r.SetIRQMask(cfg.Mask); err != nil {
			return err
		}
	}
	if cfg.Channel != r.cfg.Channel {
		if err := r.SetChannel(cfg.Channel); err != nil {
			return err
		}
	}
	if cfg.RxEnabled != r.cfg.RxEnabled {
		if err := r.SetRxEnabled(cfg.RxEnabled); err != nil {
			return err
		}
	}
	if cfg.AutoAck != r.cfg.AutoAck {
		if err := r.SetAutoAck(cfg.AutoAck); err != nil {
			return err
		}
	}
	if cfg.Retransmit != r.cfg.Retransmit {
		if err := r.SetRetransmit(cfg.Retransmit.Delay, cfg.Retransmit.Count); err != nil {
			return err
		}
	}
	for i, a := range cfg.RxAddrs {
		if a != r.cfg.RxAddrs[i] {
			if err := r.SetRxAddr(i, a); err != nil {
				return err
			}
		}
	}
	if cfg.TxAddr != r.cfg.TxAddr {
		if err := r.SetTxAddr(cfg.TxAddr); err != nil {
			return err
		}
	}
	if cfg.PayloadWidths != r.cfg.PayloadWidths {
		if err := r.SetPayloadWidths(cfg.PayloadWidths); err != nil {
			return err
		}
	}
	return nil
}

// Resync rebuilds the shadow control register and configuration from
// the live registers, discarding what the driver believed. Use it
// after a suspected chip reset or a failed write.
func (r *Radio) Resync() error {
	if err := r.resync(); err != nil {
		return fmt.Errorf("nrf24: resync: %w", err)
	}
	return nil
}

func (r *Radio) resync() error {
	_, ctl, err := r.readReg1(regConfig)
	if err != nil {
		return err
	}
	r.ctl = control(ctl)
	cfg := Config{
		CRC:  r.ctl.crc(),
		Mask: r.ctl.mask(),
	}
	_, aw, err := r.readReg1(regSetupAW)
	if err != nil {
		return err
	}
	cfg.AddrWidth = decodeAW(aw)
	_, rf, err := r.readReg1(regRFSetup)
	if err != nil {
		return err
	}
	cfg.Rate, cfg.Power = decodeRFSetup(rf)
	_, ch, err := r.readReg1(regRFChannel)
	if err != nil {
		return err
	}
	cfg.Channel = ch
	_, retr, err := r.readReg1(regSetupRetr)
	if err != nil {
		return err
	}
	cfg.Retransmit = decodeRetr(retr)
	_, enRx, err := r.readReg1(regEnRxAddr)
	if err != nil {
		return err
	}
	cfg.RxEnabled = pipeBools(enRx)
	_, enAA, err := r.readReg1(regEnAA)
	if err != nil {
		return err
	}
	cfg.AutoAck = pipeBools(enAA)

	width := regWidth(regRxAddrP0, cfg.AddrWidth)
	for pipe := 0; pipe < 2; pipe++ {
		_, b, err := r.readReg(regRxAddr(pipe), width)
		if err != nil {
			return err
		}
		a, err := NewAddr(b...)
		if err != nil {
			return err
		}
		cfg.RxAddrs[pipe] = a
	}
	// Pipes 2-5 hold only their low byte; the rest comes from
	// pipe 1.
	for pipe := 2; pipe < PipeCount; pipe++ {
		_, lo, err := r.readReg1(regRxAddr(pipe))
		if err != nil {
			return err
		}
		a := cfg.RxAddrs[1]
		a.b[0] = lo
		cfg.RxAddrs[pipe] = a
	}
	_, tx, err := r.readReg(regTxAddr, width)
	if err != nil {
		return err
	}
	cfg.TxAddr, err = NewAddr(tx...)
	if err != nil {
		return err
	}

	_, dyn, err := r.readReg1(regDynPD)
	if err != nil {
		return err
	}
	for pipe := 0; pipe < PipeCount; pipe++ {
		if dyn&(1<<pipe) != 0 {
			continue
		}
		_, w, err := r.readReg1(regRxPw(pipe))
		if err != nil {
			return err
		}
		cfg.PayloadWidths[pipe] = w
	}
	r.cfg = cfg
	return nil
}

// FlushRx discards every received packet still in the RX FIFO.
func (r *Radio) FlushRx() error {
	if _, _, err := r.exec(flushRxCmd()); err != nil {
		return fmt.Errorf("nrf24: flush rx: %w", err)
	}
	return nil
}

// FlushTx discards unsent packets from the TX FIFO.
func (r *Radio) FlushTx() error {
	if _, _, err := r.exec(flushTxCmd()); err != nil {
		return fmt.Errorf("nrf24: flush tx: %w", err)
	}
	return nil
}

func pipeBits(pipes [PipeCount]bool) byte {
	var v byte
	for i, on := range pipes {
		if on {
			v |= 1 << i
		}
	}
	return v
}

func pipeBools(v byte) [PipeCount]bool {
	var pipes [PipeCount]bool
	for i := range pipes {
		pipes[i] = v&(1<<i) != 0
	}
	return pipes
}
