package nrf24

import (
	"bytes"
	"testing"
)

func TestSendSuccess(t *testing.T) {
	sim := NewSimulator()
	sim.Loopback = true
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Send([]byte("ping")); err != nil {
		t.Fatal(err)
	}
	st, err := r.PollSend()
	if err != nil {
		t.Fatal(err)
	}
	if st != SendDone {
		t.Fatalf("PollSend = %v, want done", st)
	}
	if sim.ce {
		t.Error("chip-enable still high after completed send")
	}
	// The loopback delivered the packet.
	pipe, ok, err := r.CanRead()
	if err != nil || !ok || pipe != 0 {
		t.Fatalf("CanRead = (%d, %v, %v), want packet on pipe 0", pipe, ok, err)
	}
	p, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p.Bytes(), []byte("ping")) {
		t.Errorf("looped payload = %q", p.Bytes())
	}
}

func TestPollSendMaxRetries(t *testing.T) {
	bus := &recordingBus{Simulator: NewSimulator()}
	bus.LinkDown = true
	bus.TxSteps = 2
	r, err := New(bus)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Send([]byte("lost")); err != nil {
		t.Fatal(err)
	}
	pending := 0
	var st SendStatus
	for {
		st, err = r.PollSend()
		if err != nil {
			t.Fatal(err)
		}
		if st != SendPending {
			break
		}
		pending++
		if pending > 10 {
			t.Fatal("PollSend never resolved")
		}
	}
	if st != SendFailed {
		t.Fatalf("PollSend = %v, want failed", st)
	}
	if pending == 0 {
		t.Error("PollSend never reported pending")
	}
	flushes := 0
	for _, op := range bus.ops {
		if op == opFlushTx {
			flushes++
		}
	}
	if flushes != 1 {
		t.Errorf("%d TX flushes, want exactly 1", flushes)
	}
	if len(bus.tx) != 0 {
		t.Error("failed packet still in TX FIFO")
	}
	if bus.latched&stMaxRT != 0 {
		t.Error("max-retry flag not cleared")
	}
	if bus.ce {
		t.Error("chip-enable still high after failed send")
	}
	// The FIFO is usable again.
	if err := r.Send([]byte("x")); err != nil {
		t.Fatal(err)
	}
}

func TestWaitEmpty(t *testing.T) {
	sim := NewSimulator()
	sim.TxSteps = 3
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Send([]byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := r.WaitEmpty(); err != nil {
		t.Fatal(err)
	}
	if len(sim.tx) != 0 || sim.ce {
		t.Error("WaitEmpty returned with packets queued or chip-enable high")
	}
}

func TestWaitEmptyFlushesFailures(t *testing.T) {
	sim := NewSimulator()
	sim.LinkDown = true
	sim.TxSteps = 1
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Send([]byte("doomed")); err != nil {
		t.Fatal(err)
	}
	if err := r.WaitEmpty(); err != nil {
		t.Fatal(err)
	}
	if len(sim.tx) != 0 || sim.ce {
		t.Error("failed packet not flushed")
	}
}

func TestTxFIFOState(t *testing.T) {
	sim := NewSimulator()
	sim.TxSteps = 1000 // keep packets in flight
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	empty, err := r.TxEmpty()
	if err != nil || !empty {
		t.Errorf("TxEmpty = (%v, %v), want (true, nil)", empty, err)
	}
	for i := 0; i < fifoDepth; i++ {
		if err := r.Send([]byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	full, err := r.TxFull()
	if err != nil || !full {
		t.Errorf("TxFull = (%v, %v), want (true, nil)", full, err)
	}
	ok, err := r.CanSend()
	if err != nil || ok {
		t.Errorf("CanSend = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestSendTooLong(t *testing.T) {
	r, err := New(NewSimulator())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Send(make([]byte, MaxPayload+1)); err == nil {
		t.Error("33-byte packet accepted")
	}
}

func TestClearTxInterrupts(t *testing.T) {
	sim := NewSimulator()
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	sim.latched |= stTxDS | stMaxRT
	if err := r.ClearTxInterrupts(); err != nil {
		t.Fatal(err)
	}
	if sim.latched&(stTxDS|stMaxRT) != 0 {
		t.Errorf("latched flags %#08b survive ClearTxInterrupts", sim.latched)
	}
	if sim.ce {
		t.Error("chip-enable high after ClearTxInterrupts")
	}
}

func TestObserveAfterFailure(t *testing.T) {
	sim := NewSimulator()
	sim.LinkDown = true
	r, err := New(sim)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetRetransmit(2, 7); err != nil {
		t.Fatal(err)
	}
	if err := r.Send([]byte("a")); err != nil {
		t.Fatal(err)
	}
	for {
		st, err := r.PollSend()
		if err != nil {
			t.Fatal(err)
		}
		if st == SendFailed {
			break
		}
		if st == SendDone {
			t.Fatal("send succeeded with the link down")
		}
	}
	o, err := r.Observe()
	if err != nil {
		t.Fatal(err)
	}
	if o.Lost() != 1 || o.Retries() != 7 {
		t.Errorf("observe = lost %d retries %d, want 1 and 7", o.Lost(), o.Retries())
	}
	// A channel change resets the lost counter.
	if err := r.SetChannel(42); err != nil {
		t.Fatal(err)
	}
	o, err = r.Observe()
	if err != nil {
		t.Fatal(err)
	}
	if o.Lost() != 0 {
		t.Errorf("lost counter %d after channel change, want 0", o.Lost())
	}
}
