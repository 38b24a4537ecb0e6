package nrf24

import "testing"

func TestControlCRC(t *testing.T) {
	for _, mode := range []CRCMode{CRCNone, CRC1Byte, CRC2Bytes} {
		var c control
		c.setCRC(mode)
		if got := c.crc(); got != mode {
			t.Errorf("crc mode %d decoded as %d", mode, got)
		}
	}
}

func TestControlMask(t *testing.T) {
	masks := []IRQMask{
		{},
		{RxDataReady: true},
		{TxDataSent: true},
		{MaxRetries: true},
		{RxDataReady: true, TxDataSent: true, MaxRetries: true},
	}
	for _, m := range masks {
		var c control
		c.setMask(m)
		if got := c.mask(); got != m {
			t.Errorf("mask %+v decoded as %+v", m, got)
		}
	}
}

func TestRFSetup(t *testing.T) {
	tests := []struct {
		rate  DataRate
		power PALevel
		want  byte
	}{
		{Rate1Mbps, PA18dBm, 0b0000_0000},
		{Rate1Mbps, PA0dBm, 0b0000_0110},
		{Rate2Mbps, PA12dBm, 0b0000_1010},
		{Rate250Kbps, PA6dBm, 0b0010_0100},
	}
	for _, test := range tests {
		got := encodeRFSetup(test.rate, test.power)
		if got != test.want {
			t.Errorf("RF_SETUP(%v, %v) = %#08b, want %#08b", test.rate, test.power, got, test.want)
		}
		rate, power := decodeRFSetup(got)
		if rate != test.rate || power != test.power {
			t.Errorf("RF_SETUP %#08b decoded as (%v, %v), want (%v, %v)",
				got, rate, power, test.rate, test.power)
		}
	}
}

func TestAddressWidth(t *testing.T) {
	for width := uint8(3); width <= 5; width++ {
		if got := decodeAW(encodeAW(width)); got != width {
			t.Errorf("address width %d round-tripped as %d", width, got)
		}
	}
}

func TestRetransmitEncoding(t *testing.T) {
	rc := Retransmit{Delay: 5, Count: 3}
	v := encodeRetr(rc)
	if v != 0x53 {
		t.Errorf("SETUP_RETR = %#x, want 0x53", v)
	}
	if got := decodeRetr(v); got != rc {
		t.Errorf("SETUP_RETR decoded as %+v, want %+v", got, rc)
	}
}

func TestStatusBits(t *testing.T) {
	s := status(0b0100_1101)
	if !s.rxReady() || s.txSent() || !s.txFull() {
		t.Errorf("status %#08b misdecoded", s)
	}
	if got := s.rxPipe(); got != 6 {
		t.Errorf("rx pipe = %d, want 6", got)
	}
	if status(0b0000_1110).rxPipe() != 7 {
		t.Error("empty FIFO pipe number not 7")
	}
}

func TestObserveTx(t *testing.T) {
	o := ObserveTx(0xa7)
	if o.Lost() != 10 || o.Retries() != 7 {
		t.Errorf("OBSERVE_TX %#x = lost %d retries %d, want 10 and 7", byte(o), o.Lost(), o.Retries())
	}
}

func TestRegWidth(t *testing.T) {
	if got := regWidth(regTxAddr, 4); got != 4 {
		t.Errorf("TX_ADDR width = %d, want 4", got)
	}
	if got := regWidth(regRxAddr(3), 5); got != 1 {
		t.Errorf("RX_ADDR_P3 width = %d, want 1", got)
	}
	if got := regWidth(regRFChannel, 5); got != 1 {
		t.Errorf("RF_CH width = %d, want 1", got)
	}
}

func TestInvalidPipePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("pipe 6 did not panic")
		}
	}()
	regRxAddr(6)
}
