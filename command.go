package nrf24

// Wire command opcodes.
const (
	opReadRegister       = 0x00 // ors the register address
	opWriteRegister      = 0x20 // ors the register address
	opReadRxPayloadWidth = 0x60
	opReadRxPayload      = 0x61
	opWriteTxPayload     = 0xa0
	opFlushTx            = 0xe1
	opFlushRx            = 0xe2
)

// command is a single bus transaction: one opcode byte, the bytes
// written after it, and the number of response bytes expected back.
// The exchange is full duplex, so response placeholders go out as
// zeroes and double as the clock source for the bytes read back.
type command struct {
	opcode byte
	data   []byte
	resp   int
}

func readRegisterCmd(reg regAddr, width int) command {
	return command{opcode: opReadRegister | byte(reg), resp: width}
}

func writeRegisterCmd(reg regAddr, value []byte) command {
	return command{opcode: opWriteRegister | byte(reg), data: value}
}

func readRxPayloadWidthCmd() command {
	return command{opcode: opReadRxPayloadWidth, resp: 1}
}

func readRxPayloadCmd(width int) command {
	return command{opcode: opReadRxPayload, resp: width}
}

func writeTxPayloadCmd(p []byte) command {
	return command{opcode: opWriteTxPayload, data: p}
}

func flushTxCmd() command { return command{opcode: opFlushTx} }

func flushRxCmd() command { return command{opcode: opFlushRx} }

// wireLen is the transaction length on the bus.
func (c command) wireLen() int {
	return 1 + max(len(c.data), c.resp)
}

// encode serializes the transaction into buf and returns the framed
// slice.
func (c command) encode(buf []byte) []byte {
	b := buf[:c.wireLen()]
	for i := range b {
		b[i] = 0
	}
	b[0] = c.opcode
	copy(b[1:], c.data)
	return b
}
