package thsensor

import (
	"github.com/yotFEIG17907/ttn-explore/internal/frame"
)

var (
	// ErrEmpty is returned when the payload has no bytes at all.
	ErrEmpty = frame.ErrEmpty
	// ErrTooShort matches any *ShortError.
	ErrTooShort = frame.ErrTooShort
)

// ShortError carries the byte count the selected message layout needs.
type ShortError = frame.ShortError

// Decode turns a raw uplink payload into a typed message. The buffer length is
// checked against the layout selected by byte 1 before any field is read.
func Decode(raw []byte, port int) (Message, error) {
	up, err := frame.Parse(raw, port)
	if err != nil {
		return nil, err
	}
	if err := up.Require(frame.MinLength(up.MsgType)); err != nil {
		return nil, err
	}
	h := Header{
		Version:       int(up.Version),
		PacketCounter: int(up.PacketCounter),
		MsgType:       int(up.MsgType),
		Port:          up.Port,
	}
	b := up.Raw
	switch up.MsgType {
	case frame.MsgReset:
		return Reset{h}, nil
	case frame.MsgSupervisory:
		return Supervisory{
			Header:       h,
			ErrorCodes:   int(b[2]),
			SensorState:  int(b[3]),
			BatteryLevel: float64(b[4]>>4) + float64(b[4]&0x0F)/10.0,
		}, nil
	case frame.MsgTamper:
		return Tamper{h}, nil
	case frame.MsgSensor:
		return decodeSensor(h, b), nil
	case frame.MsgLinkQuality:
		return LinkQuality{h}, nil
	default:
		return Unknown{h}, nil
	}
}

// decodeSensor reads a SENSOR layout. Temperature is sign-magnitude in byte 3
// with tenths in the high nibble of byte 4. Humidity takes its tenths from
// that same nibble.
func decodeSensor(h Header, b []byte) Sensor {
	fraction := float64(b[4]>>4) / 10.0
	tempC := float64(b[3]&0x7F) + fraction
	if b[3]&0x80 == 0x80 {
		tempC = -tempC
	}
	return Sensor{
		Header:          h,
		SensorEventType: int(b[2]),
		Event:           EventLabel(b[2]),
		TempC:           tempC,
		TempF:           tempC*9/5 + 32.0,
		HumidityPercent: float64(b[5]) + fraction,
	}
}

// DecodeRecord decodes raw and flattens the result into a Record.
func DecodeRecord(raw []byte, port int) (Record, error) {
	msg, err := Decode(raw, port)
	if err != nil {
		return nil, err
	}
	return ToRecord(msg), nil
}
