package nrf24

import (
	"bytes"
	"testing"
)

func TestReceiveScenario(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetAddrWidth(5); err != nil {
		t.Fatal(err)
	}
	if err := r.SetRxAddr(0, mustAddr(0x11, 0x22, 0x33, 0x44, 0x55)); err != nil {
		t.Fatal(err)
	}
	widths := r.PayloadWidths()
	widths[0] = 4
	if err := r.SetPayloadWidths(widths); err != nil {
		t.Fatal(err)
	}
	if err := r.SetRx(); err != nil {
		t.Fatal(err)
	}
	sim.Receive(0, []byte{0xca, 0xfe, 0xba, 0xbe})

	pipe, ok, err := r.CanRead()
	if err != nil {
		t.Fatal(err)
	}
	if !ok || pipe != 0 {
		t.Fatalf("CanRead = (%d, %v), want (0, true)", pipe, ok)
	}
	p, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p.Bytes(), []byte{0xca, 0xfe, 0xba, 0xbe}) {
		t.Errorf("payload = % x, want ca fe ba be", p.Bytes())
	}
	if p.Len() != 4 {
		t.Errorf("payload length = %d, want 4", p.Len())
	}
	// And the FIFO is empty again.
	if _, ok, err := r.CanRead(); err != nil || ok {
		t.Errorf("CanRead on empty FIFO = (%v, %v)", ok, err)
	}
}

func TestCanReadClearsLatchedFlags(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	sim.Receive(1, []byte{1})
	sim.latched |= stTxDS | stMaxRT
	if _, _, err := r.CanRead(); err != nil {
		t.Fatal(err)
	}
	if sim.latched != 0 {
		t.Errorf("latched flags %#08b survive CanRead", sim.latched)
	}
}

func TestRxFIFOState(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	empty, err := r.RxEmpty()
	if err != nil || !empty {
		t.Errorf("RxEmpty = (%v, %v), want (true, nil)", empty, err)
	}
	for i := 0; i < fifoDepth; i++ {
		if !sim.Receive(1, []byte{byte(i)}) {
			t.Fatalf("simulator dropped packet %d", i)
		}
	}
	if sim.Receive(1, []byte{9}) {
		t.Error("simulator accepted a fourth packet")
	}
	full, err := r.RxFull()
	if err != nil || !full {
		t.Errorf("RxFull = (%v, %v), want (true, nil)", full, err)
	}
	if r.Mode() != Rx {
		t.Errorf("mode = %v, want rx", r.Mode())
	}
}

func TestHasCarrier(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.HasCarrier()
	if err != nil || got {
		t.Errorf("HasCarrier = (%v, %v), want (false, nil)", got, err)
	}
	sim.SetCarrier(true)
	got, err = r.HasCarrier()
	if err != nil || !got {
		t.Errorf("HasCarrier = (%v, %v), want (true, nil)", got, err)
	}
}

// widthBus lets the payload-width command report an impossible value.
type widthBus struct {
	*Simulator
}

func (b *widthBus) Transfer(buf []byte) error {
	if buf[0] == opReadRxPayloadWidth {
		buf[1] = 33
		return nil
	}
	return b.Simulator.Transfer(buf)
}

func TestReadImplausibleWidth(t *testing.T) {
	bus := &widthBus{Simulator: NewSimulator()}
	r, err := New(bus)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Read(); err == nil {
		t.Fatal("width 33 not rejected")
	}
}

func TestFlushRx(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	sim.Receive(0, []byte{1, 2})
	if err := r.FlushRx(); err != nil {
		t.Fatal(err)
	}
	if len(sim.rx) != 0 {
		t.Error("RX FIFO not flushed")
	}
}
