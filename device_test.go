package nrf24

import (
	"errors"
	"testing"
)

// recordingBus logs the opcode of every transaction passing through
// the simulator.
type recordingBus struct {
	*Simulator
	ops []byte
}

func (b *recordingBus) Transfer(buf []byte) error {
	b.ops = append(b.ops, buf[0])
	return b.Simulator.Transfer(buf)
}

// traceBus fails every transfer and records line activity.
type traceBus struct {
	events []string
	err    error
}

func (b *traceBus) Transfer(buf []byte) error {
	b.events = append(b.events, "transfer")
	return b.err
}

func (b *traceBus) SetCE(level bool) error {
	if level {
		b.events = append(b.events, "ce high")
	} else {
		b.events = append(b.events, "ce low")
	}
	return nil
}

func (b *traceBus) SetCSN(level bool) error {
	if level {
		b.events = append(b.events, "csn high")
	} else {
		b.events = append(b.events, "csn low")
	}
	return nil
}

// floatingBus is a bus with nothing on it: reads float high.
type floatingBus struct{}

func (floatingBus) Transfer(buf []byte) error {
	for i := range buf {
		buf[i] = 0xff
	}
	return nil
}

func (floatingBus) SetCE(level bool) error  { return nil }
func (floatingBus) SetCSN(level bool) error { return nil }

func TestNew(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	if r.Mode() != Standby {
		t.Errorf("mode after construction = %v, want standby", r.Mode())
	}
	if sim.regs[regConfig]&byte(ctlPwrUp) == 0 {
		t.Error("chip not powered up")
	}
	if sim.ce {
		t.Error("chip-enable high after construction")
	}
	// The shadow reflects the chip's reset values.
	cfg := r.Config()
	if cfg.AddrWidth != 5 {
		t.Errorf("address width = %d, want 5", cfg.AddrWidth)
	}
	if cfg.Channel != 2 {
		t.Errorf("channel = %d, want 2", cfg.Channel)
	}
	if cfg.AutoAck != [PipeCount]bool{true, true, true, true, true, true} {
		t.Errorf("auto-ack = %v, want all pipes", cfg.AutoAck)
	}
	if cfg.RxEnabled != [PipeCount]bool{true, true, false, false, false, false} {
		t.Errorf("rx enabled = %v, want pipes 0 and 1", cfg.RxEnabled)
	}
	if got, want := cfg.RxAddrs[0], mustAddr(0xe7, 0xe7, 0xe7, 0xe7, 0xe7); got != want {
		t.Errorf("pipe 0 address = %v, want %v", got, want)
	}
	if got, want := cfg.RxAddrs[3], mustAddr(0xc4, 0xc2, 0xc2, 0xc2, 0xc2); got != want {
		t.Errorf("pipe 3 address = %v, want %v", got, want)
	}
}

func TestNewResetsWarmChip(t *testing.T) {
	sim := NewSimulator()
	// A chip that stayed powered across a host restart: all IRQs
	// masked, 16-bit CRC, receiver role.
	sim.regs[regConfig] = 0b0111_1101
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	want := byte(ctlReset | ctlPwrUp)
	if got := sim.regs[regConfig]; got != want {
		t.Errorf("CONFIG after construction = %#08b, want %#08b", got, want)
	}
	if got := r.IRQMask(); got != (IRQMask{RxDataReady: true, TxDataSent: true, MaxRetries: true}) {
		t.Errorf("IRQ mask = %+v, want all events unmasked", got)
	}
	if got := r.CRC(); got != CRC1Byte {
		t.Errorf("crc mode = %v, want the 1-byte reset default", got)
	}
}

func TestNewNotConnected(t *testing.T) {
	_, err := New(floatingBus{})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("New on a floating bus = %v, want ErrNotConnected", err)
	}
}

func TestNewTransportFailure(t *testing.T) {
	boom := errors.New("boom")
	bus := &traceBus{err: boom}
	_, err := New(bus)
	if !errors.Is(err, boom) {
		t.Fatalf("New = %v, want wrapped transport error", err)
	}
}

func TestCSNReleasedOnTransferFailure(t *testing.T) {
	bus := &traceBus{err: errors.New("boom")}
	r := &Radio{bus: bus}
	_, _, err := r.exec(flushTxCmd())
	if err == nil {
		t.Fatal("exec did not surface the transfer error")
	}
	last := bus.events[len(bus.events)-1]
	if last != "csn high" {
		t.Errorf("last line event %q, want chip-select released", last)
	}
}

func TestUpdateControlDirtyCheck(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	before := sim.Transfers
	if err := r.updateControl(func(c *control) { c.setCRC(CRC2Bytes) }); err != nil {
		t.Fatal(err)
	}
	if got := sim.Transfers - before; got != 1 {
		t.Fatalf("changing write issued %d transfers, want 1", got)
	}
	before = sim.Transfers
	if err := r.updateControl(func(c *control) { c.setCRC(CRC2Bytes) }); err != nil {
		t.Fatal(err)
	}
	if got := sim.Transfers - before; got != 0 {
		t.Errorf("unchanged write issued %d transfers, want 0", got)
	}
}

func TestExecStatusByte(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	sim.Receive(2, []byte{1, 2, 3})
	st, _, err := r.readReg1(regRFChannel)
	if err != nil {
		t.Fatal(err)
	}
	if !st.rxReady() {
		t.Error("data-ready flag not shifted out")
	}
	if st.rxPipe() != 2 {
		t.Errorf("status pipe = %d, want 2", st.rxPipe())
	}
}
