package thsensor

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	internalopts "github.com/yotFEIG17907/ttn-explore/internal/options"
)

// Port returns a pointer to port for AnalyzeOptions.Port.
func Port(port int) *int {
	return &port
}

// DefaultPort is used when neither the options nor the context name a port.
const DefaultPort = 1

// AnalyzeOptions configures Analyze.
type AnalyzeOptions struct {
	// Port overrides the port stored in the context. Nil means unset; 0 is a
	// valid port.
	Port *int
	// Encoding is "auto", "hex" or "base64". Empty means auto.
	Encoding string
}

func (opts AnalyzeOptions) toInternal(ctx context.Context) (int, internalopts.Encoding, error) {
	enc, err := internalopts.ParseEncoding(opts.Encoding)
	if err != nil {
		return 0, "", err
	}
	if opts.Port != nil {
		return *opts.Port, enc, nil
	}
	if port, ok := internalopts.Port(ctx); ok {
		return port, enc, nil
	}
	return DefaultPort, enc, nil
}

// Result captures the outcome of Analyze.
type Result struct {
	RawHex    string
	ByteCount int
	Port      int
	Message   Message
	Fields    Record
}

func (r Result) summary() map[string]any {
	summary := map[string]any{
		"byte_count": r.ByteCount,
		"raw_hex":    r.RawHex,
		"port":       r.Port,
	}
	if len(r.Fields) > 0 {
		summary["fields"] = map[string]any(r.Fields)
	}
	return summary
}

// String renders the result as indented JSON.
func (r Result) String() string {
	data, err := json.MarshalIndent(r.summary(), "", "  ")
	if err != nil {
		return fmt.Sprintf("bytes:%d raw:%s (marshal error: %v)", r.ByteCount, r.RawHex, err)
	}
	return string(data)
}

// YAML renders the result as a YAML document.
func (r Result) YAML() (string, error) {
	data, err := yaml.Marshal(r.summary())
	if err != nil {
		return "", fmt.Errorf("marshal yaml: %w", err)
	}
	return string(data), nil
}

// Analyze decodes a textual payload (hex or base64) and returns the decoded
// message together with its flattened record.
func Analyze(ctx context.Context, input string, opts AnalyzeOptions) (Result, error) {
	port, enc, err := opts.toInternal(ctx)
	if err != nil {
		return Result{}, err
	}
	data, err := internalopts.ParsePayload(input, enc)
	if err != nil {
		return Result{}, err
	}
	return AnalyzeBytes(data, port)
}

// AnalyzeBytes is Analyze for an already decoded payload.
func AnalyzeBytes(data []byte, port int) (Result, error) {
	result := Result{
		RawHex:    strings.ToUpper(hex.EncodeToString(data)),
		ByteCount: len(data),
		Port:      port,
	}
	msg, err := Decode(data, port)
	if err != nil {
		return result, fmt.Errorf("decode %s: %w", result.RawHex, err)
	}
	result.Message = msg
	result.Fields = ToRecord(msg)
	return result, nil
}
