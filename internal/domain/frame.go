package domain

import "fmt"

// Frame is one chunk of bytes produced by a single transport read.
// A frame is never reassembled with, or split across, other reads.
type Frame []byte

// NewFrame copies the first n bytes of buf into a freshly allocated frame.
func NewFrame(buf []byte, n int) Frame {
	f := make(Frame, n)
	copy(f, buf[:n])
	return f
}

// Valid reports whether the frame passes CRC16-MODBUS validation.
func (f Frame) Valid() bool {
	return IsValidFrame(f)
}

// Payload returns the bytes preceding the checksum, or nil for undersized frames.
func (f Frame) Payload() []byte {
	if len(f) < MinFrameSize {
		return nil
	}
	return f[:len(f)-CRCSize]
}

// Hex renders the frame as space separated upper-case hex, e.g. "01 03 02".
func (f Frame) Hex() string {
	return fmt.Sprintf("% X", []byte(f))
}

// Placement describes where the sink stored a delivered frame.
type Placement struct {
	Topic     string `json:"topic"`
	Partition int32  `json:"partition"`
	Offset    int64  `json:"offset"`
}
