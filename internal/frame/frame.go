package frame

import (
	"errors"
	"fmt"
)

// Message type selectors carried in byte 1 of every uplink.
const (
	MsgReset       byte = 0x00
	MsgSupervisory byte = 0x01
	MsgTamper      byte = 0x02
	MsgSensor      byte = 0x0D
	MsgLinkQuality byte = 0xFB
)

const headerLength = 2

var (
	// ErrEmpty is returned for a zero length buffer.
	ErrEmpty = errors.New("uplink payload is empty")
	// ErrTooShort matches every *ShortError through errors.Is.
	ErrTooShort = errors.New("uplink payload too short")
)

// ShortError reports a buffer that ends before the last offset the selected
// message layout reads.
type ShortError struct {
	MsgType  byte
	Required int
	Actual   int
}

func (e *ShortError) Error() string {
	if e.Required <= headerLength {
		return fmt.Sprintf("uplink payload too short for header: need %d bytes, got %d", e.Required, e.Actual)
	}
	return fmt.Sprintf("uplink payload too short for msgtype 0x%02X: need %d bytes, got %d", e.MsgType, e.Required, e.Actual)
}

// Is lets errors.Is(err, ErrTooShort) match.
func (e *ShortError) Is(target error) bool {
	return target == ErrTooShort
}

// Uplink is the common header of a temperature/humidity sensor uplink.
type Uplink struct {
	Raw           []byte
	Port          int
	Version       byte
	PacketCounter byte
	MsgType       byte
}

// Parse extracts the two byte header shared by every message type.
func Parse(raw []byte, port int) (Uplink, error) {
	if len(raw) == 0 {
		return Uplink{}, ErrEmpty
	}
	if len(raw) < headerLength {
		return Uplink{}, &ShortError{Required: headerLength, Actual: len(raw)}
	}
	return Uplink{
		Raw:           raw,
		Port:          port,
		Version:       raw[0] >> 4,
		PacketCounter: raw[0] & 0x0F,
		MsgType:       raw[1],
	}, nil
}

// MinLength returns the number of bytes the layout of msgType reads.
func MinLength(msgType byte) int {
	switch msgType {
	case MsgSupervisory:
		return 5
	case MsgSensor:
		return 6
	default:
		return headerLength
	}
}

// Require fails unless the buffer holds at least n bytes.
func (u Uplink) Require(n int) error {
	if len(u.Raw) < n {
		return &ShortError{MsgType: u.MsgType, Required: n, Actual: len(u.Raw)}
	}
	return nil
}
