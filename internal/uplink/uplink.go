package uplink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Envelope is an uplink document as published by The Things Network v2 MQTT
// API on <AppID>/devices/<DevID>/up.
type Envelope struct {
	AppID          string         `json:"app_id"`
	DevID          string         `json:"dev_id"`
	HardwareSerial string         `json:"hardware_serial,omitempty"`
	Port           int            `json:"port"`
	Counter        int            `json:"counter"`
	PayloadRaw     string         `json:"payload_raw"`
	Metadata       Metadata       `json:"metadata"`
	// Topic is set when the line was captured with its MQTT topic.
	Topic string `json:"-"`
}

// Metadata carries reception details. Only the fields used downstream are
// decoded.
type Metadata struct {
	Time       time.Time `json:"time"`
	Frequency  float64   `json:"frequency,omitempty"`
	Modulation string    `json:"modulation,omitempty"`
	DataRate   string    `json:"data_rate,omitempty"`
}

// ParseLine decodes a message file line. A line is either a bare JSON document
// or "<topic> <json>" as printed by mosquitto_sub -v; with a topic, app_id and
// dev_id missing from the document are taken from it.
func ParseLine(line []byte) (Envelope, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] == '{' {
		return ParseEnvelope(line)
	}
	i := bytes.IndexAny(line, " \t")
	if i < 0 {
		return Envelope{}, fmt.Errorf("parse uplink line: no JSON document after topic")
	}
	topic := string(line[:i])
	appID, devID, ok := DeviceFromTopic(topic)
	if !ok {
		return Envelope{}, fmt.Errorf("parse uplink line: %q is not an uplink topic", topic)
	}
	env, err := ParseEnvelope(bytes.TrimSpace(line[i:]))
	if err != nil {
		return Envelope{}, err
	}
	env.Topic = topic
	if env.AppID == "" {
		env.AppID = appID
	}
	if env.DevID == "" {
		env.DevID = devID
	}
	return env, nil
}

// ParseEnvelope decodes one JSON uplink document.
func ParseEnvelope(line []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse uplink envelope: %w", err)
	}
	if env.PayloadRaw == "" {
		return Envelope{}, fmt.Errorf("uplink from %q has no payload_raw", env.DevID)
	}
	return env, nil
}

// Payload returns the base64 decoded payload bytes.
func (e Envelope) Payload() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(e.PayloadRaw)
	if err != nil {
		return nil, fmt.Errorf("decode payload_raw of %q: %w", e.DevID, err)
	}
	return data, nil
}

// Line is one entry of a message file.
type Line struct {
	No       int
	Envelope Envelope
	// Err is set when the line could not be parsed; Envelope is then empty.
	Err error
}

// ReadAll calls fn for every non-blank line of r, including lines that fail to
// parse. Lines are read with ParseLine. Iteration stops at the first error returned by fn or when ctx is done.
func ReadAll(ctx context.Context, r io.Reader, fn func(Line) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		line := Line{No: lineNo}
		line.Envelope, line.Err = ParseLine(text)
		if line.Err != nil {
			line.Err = fmt.Errorf("line %d: %w", lineNo, line.Err)
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// DeviceFromTopic splits an uplink topic of the form <AppID>/devices/<DevID>/up.
func DeviceFromTopic(topic string) (appID, devID string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[1] != "devices" || parts[3] != "up" {
		return "", "", false
	}
	if parts[0] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[0], parts[2], true
}
