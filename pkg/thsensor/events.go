package thsensor

import "strconv"

// eventTypes is indexed by the sensor event code in byte 2 of a SENSOR uplink.
var eventTypes = [...]string{
	"Periodic Report",
	"Temp above upper threshold",
	"Temp below lower threshold",
	"Temp report on change increase",
	"Temp report on change decrease",
	"Humidity above upper threshold",
	"Humidity below lower threshold",
	"Humidity report on change increase",
	"Humidity report on change decrease",
}

// Sensor event codes.
const (
	EventPeriodic byte = iota
	EventTempAboveUpper
	EventTempBelowLower
	EventTempChangeIncrease
	EventTempChangeDecrease
	EventHumidityAboveUpper
	EventHumidityBelowLower
	EventHumidityChangeIncrease
	EventHumidityChangeDecrease
)

// EventLabel returns the human readable name of a sensor event code. Codes
// newer than this decoder map to "OOB_<code>".
func EventLabel(code byte) string {
	if int(code) >= len(eventTypes) {
		return "OOB_" + strconv.Itoa(int(code))
	}
	return eventTypes[code]
}

// KnownEvent reports whether code is present in the event table.
func KnownEvent(code byte) bool {
	return int(code) < len(eventTypes)
}

// EventTypes returns a copy of the event table in code order.
func EventTypes() []string {
	out := make([]string, len(eventTypes))
	copy(out, eventTypes[:])
	return out
}
