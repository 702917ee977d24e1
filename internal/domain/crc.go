package domain

import "github.com/sigurn/crc16"

const (
	// CRCPolynomial is the reflected form of the Modbus polynomial 0x8005.
	CRCPolynomial uint16 = 0xA001

	// CRCInitial is the register value before the first byte is processed.
	CRCInitial uint16 = 0xFFFF

	// CRCSize is the number of trailing checksum bytes in a frame.
	CRCSize = 2

	// MinFrameSize is one payload byte plus the checksum.
	MinFrameSize = CRCSize + 1
)

var modbusTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// ComputeCRC16 returns the CRC16-MODBUS checksum of data[offset:offset+length].
// The range is clamped to the bounds of data, so a malformed range never panics.
func ComputeCRC16(data []byte, offset, length int) uint16 {
	if offset < 0 {
		offset = 0
	}
	end := offset + length
	if end > len(data) {
		end = len(data)
	}
	if end <= offset {
		return CRCInitial
	}
	return crc16.Checksum(data[offset:end], modbusTable)
}

// ExpectedCRC reconstructs the checksum carried in the last two bytes of data,
// low byte first. The second return value is false when data is too short.
func ExpectedCRC(data []byte) (uint16, bool) {
	n := len(data)
	if n < CRCSize {
		return 0, false
	}
	return uint16(data[n-1])<<8 | uint16(data[n-2]), true
}

// IsValidFrame reports whether data holds at least one payload byte followed by
// a matching CRC16-MODBUS checksum.
func IsValidFrame(data []byte) bool {
	if len(data) < MinFrameSize {
		return false
	}
	expected, _ := ExpectedCRC(data)
	return ComputeCRC16(data, 0, len(data)-CRCSize) == expected
}

// AppendCRC returns a new slice holding payload followed by its checksum,
// low byte first.
func AppendCRC(payload []byte) []byte {
	crc := ComputeCRC16(payload, 0, len(payload))
	out := make([]byte, len(payload), len(payload)+CRCSize)
	copy(out, payload)
	return append(out, byte(crc), byte(crc>>8))
}
