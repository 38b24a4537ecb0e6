package main

import (
	"testing"

	"nrf24.dev"
)

func testProfileConfig() nrf24.Config {
	mustAddr := func(b ...byte) nrf24.Addr {
		a, err := nrf24.NewAddr(b...)
		if err != nil {
			panic(err)
		}
		return a
	}
	return nrf24.Config{
		Rate:      nrf24.Rate250Kbps,
		CRC:       nrf24.CRC2Bytes,
		Channel:   76,
		Power:     nrf24.PA6dBm,
		Mask:      nrf24.IRQMask{RxDataReady: true, MaxRetries: true},
		RxEnabled: [nrf24.PipeCount]bool{true, true, false, false, false, false},
		RxAddrs: [nrf24.PipeCount]nrf24.Addr{
			mustAddr(0x01, 0x02, 0x03, 0x04, 0x05),
			mustAddr(0xb0, 0xaa, 0xaa, 0xaa, 0xaa),
			mustAddr(0xb1, 0xaa, 0xaa, 0xaa, 0xaa),
			mustAddr(0xb2, 0xaa, 0xaa, 0xaa, 0xaa),
			mustAddr(0xb3, 0xaa, 0xaa, 0xaa, 0xaa),
			mustAddr(0xb4, 0xaa, 0xaa, 0xaa, 0xaa),
		},
		TxAddr:        mustAddr(0x01, 0x02, 0x03, 0x04, 0x05),
		Retransmit:    nrf24.Retransmit{Delay: 5, Count: 3},
		AutoAck:       [nrf24.PipeCount]bool{true, false, true, false, false, false},
		AddrWidth:     5,
		PayloadWidths: [nrf24.PipeCount]uint8{4, 0, 8, 0, 0, 0},
	}
}

func TestProfileRoundTrip(t *testing.T) {
	cfg := testProfileConfig()
	data, err := marshalProfile(cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := unmarshalProfile(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("profile round trip:\ngot  %+v\nwant %+v", got, cfg)
	}
	// The IRQ mask travels too, including disabled events.
	if got.Mask != (nrf24.IRQMask{RxDataReady: true, MaxRetries: true}) {
		t.Errorf("mask round trip = %+v", got.Mask)
	}
}

func TestProfileRejectsInvalid(t *testing.T) {
	cfg := testProfileConfig()
	cfg.Channel = 126
	data, err := marshalProfile(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := unmarshalProfile(data); err == nil {
		t.Error("profile with channel 126 accepted")
	}
}
