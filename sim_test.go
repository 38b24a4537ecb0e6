package nrf24

import (
	"errors"
	"testing"
)

func TestSimulatorFraming(t *testing.T) {
	sim := NewSimulator()
	// Chip-select frames every transaction; a transfer outside a
	// frame is a driver bug the simulator must catch.
	if err := sim.Transfer([]byte{byte(opFlushTx)}); err == nil {
		t.Error("transfer with chip-select high accepted")
	}
	sim.SetCSN(false)
	if err := sim.Transfer([]byte{byte(opFlushTx)}); err != nil {
		t.Errorf("framed transfer failed: %v", err)
	}
}

func TestSimulatorInjectedFault(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	sim.Err = boom
	if _, err := r.Observe(); !errors.Is(err, boom) {
		t.Errorf("Observe = %v, want wrapped fault", err)
	}
}

func TestSimulatorRegisterFile(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	// SETUP_AW reset value makes the connectivity probe pass and
	// decodes to the chip's 5-byte default.
	if got := r.AddrWidth(); got != 5 {
		t.Errorf("reset address width = %d, want 5", got)
	}
	_, ch, err := r.readReg1(regRFChannel)
	if err != nil {
		t.Fatal(err)
	}
	if ch != 2 {
		t.Errorf("reset channel = %d, want 2", ch)
	}
}
