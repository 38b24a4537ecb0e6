package nrf24

import "errors"

// ErrNotConnected is returned by New when no transceiver answers on
// the bus.
var ErrNotConnected = errors.New("nrf24: not connected")
