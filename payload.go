package nrf24

// MaxPayload is the largest packet the chip can carry.
const MaxPayload = 32

// Payload is one received packet.
type Payload struct {
	buf [MaxPayload]byte
	n   uint8
}

func newPayload(b []byte) Payload {
	var p Payload
	p.n = uint8(copy(p.buf[:], b))
	return p
}

// Bytes returns the packet contents.
func (p *Payload) Bytes() []byte { return p.buf[:p.n] }

// Len returns the packet length.
func (p *Payload) Len() int { return int(p.n) }
