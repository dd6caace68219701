package thsensor

// Message descriptions as reported in the msgdesc field.
const (
	DescReset       = "RESET"
	DescSupervisory = "SUPERVISORY"
	DescTamper      = "TAMPER"
	DescSensor      = "SENSOR"
	DescLinkQuality = "LINKQ"
	DescUnknown     = "UNKNOWN"
)

// Header holds the fields present in every uplink.
type Header struct {
	Version       int
	PacketCounter int
	MsgType       int
	// Port is the LoRaWAN FPort the uplink arrived on. It does not influence
	// decoding.
	Port int
}

// Message is one decoded uplink. The concrete type is one of Reset,
// Supervisory, Tamper, Sensor, LinkQuality or Unknown.
type Message interface {
	Head() Header
	MsgDesc() string
	EventType() string
	appendFields(Record)
}

// Reset is sent after the device restarts.
type Reset struct{ Header }

// Supervisory is the periodic health report.
type Supervisory struct {
	Header
	ErrorCodes  int
	SensorState int
	// BatteryLevel is in volts: high nibble of byte 4 plus tenths from the low
	// nibble.
	BatteryLevel float64
}

// Tamper is sent when the enclosure is opened.
type Tamper struct{ Header }

// Sensor carries a temperature/humidity measurement.
type Sensor struct {
	Header
	SensorEventType int
	Event           string
	TempC           float64
	TempF           float64
	HumidityPercent float64
}

// LinkQuality follows every downlink configuration change.
type LinkQuality struct{ Header }

// Unknown is any message type this decoder does not recognise.
type Unknown struct{ Header }

func (h Header) Head() Header { return h }

func (Reset) MsgDesc() string       { return DescReset }
func (Supervisory) MsgDesc() string { return DescSupervisory }
func (Tamper) MsgDesc() string      { return DescTamper }
func (Sensor) MsgDesc() string      { return DescSensor }
func (LinkQuality) MsgDesc() string { return DescLinkQuality }
func (Unknown) MsgDesc() string     { return DescUnknown }

func (Reset) EventType() string       { return "Reset" }
func (Supervisory) EventType() string { return "Supervisory" }
func (Tamper) EventType() string      { return "Tamper" }
func (s Sensor) EventType() string    { return s.Event }
func (LinkQuality) EventType() string { return "Link Quality" }
func (Unknown) EventType() string     { return "Unknown" }

func (Reset) appendFields(Record)       {}
func (Tamper) appendFields(Record)      {}
func (LinkQuality) appendFields(Record) {}
func (Unknown) appendFields(Record)     {}

func (s Supervisory) appendFields(r Record) {
	r["errorcodes"] = s.ErrorCodes
	r["sensor_state"] = s.SensorState
	r["batlevel"] = s.BatteryLevel
}

func (s Sensor) appendFields(r Record) {
	r["sensor_event_type"] = s.SensorEventType
	r["temp_c"] = s.TempC
	r["temp_f"] = s.TempF
	r["humidity_percent"] = s.HumidityPercent
}

// ToRecord flattens a message into the field mapping consumed downstream.
func ToRecord(m Message) Record {
	h := m.Head()
	r := Record{
		"version":    h.Version,
		"pktcnt":     h.PacketCounter,
		"msgtype":    h.MsgType,
		"msgdesc":    m.MsgDesc(),
		"event_type": m.EventType(),
	}
	m.appendFields(r)
	return r
}
