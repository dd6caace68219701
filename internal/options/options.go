package options

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// Encoding names the textual representation of an uplink payload.
type Encoding string

const (
	EncodingAuto   Encoding = "auto"
	EncodingHex    Encoding = "hex"
	EncodingBase64 Encoding = "base64"
)

// ParseEncoding validates an encoding name. The empty string means auto.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case "", EncodingAuto:
		return EncodingAuto, nil
	case EncodingHex:
		return EncodingHex, nil
	case EncodingBase64:
		return EncodingBase64, nil
	default:
		return "", fmt.Errorf("unknown payload encoding %q (want auto, hex or base64)", s)
	}
}

type portKey struct{}

// WithPort stores the uplink port inside the context.
func WithPort(ctx context.Context, port int) context.Context {
	return context.WithValue(ctx, portKey{}, port)
}

// Port retrieves the uplink port from context if present.
func Port(ctx context.Context) (int, bool) {
	if v := ctx.Value(portKey{}); v != nil {
		if port, ok := v.(int); ok {
			return port, true
		}
	}
	return 0, false
}

// ParsePayload decodes a hex or base64 payload string.
func ParsePayload(input string, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingHex:
		return decodeHex(input)
	case EncodingBase64:
		return decodeBase64(input)
	case EncodingAuto, "":
		clean := cleanHex(input)
		if clean != "" && len(clean)%2 == 0 && isHex(clean) {
			return decodeHex(input)
		}
		return decodeBase64(input)
	default:
		return nil, fmt.Errorf("unknown payload encoding %q", enc)
	}
}

func decodeHex(input string) ([]byte, error) {
	clean := cleanHex(input)
	if clean == "" {
		return nil, fmt.Errorf("hex payload is empty")
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex payload must contain an even number of digits, got %d", len(clean))
	}
	decoded := make([]byte, len(clean)/2)
	if _, err := hex.Decode(decoded, []byte(clean)); err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded, nil
}

func decodeBase64(input string) ([]byte, error) {
	clean := stripWhitespace(input)
	if clean == "" {
		return nil, fmt.Errorf("base64 payload is empty")
	}
	decoded, err := base64.StdEncoding.DecodeString(clean)
	if err == nil {
		return decoded, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(clean); rawErr == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("decode base64: %w", err)
}

func cleanHex(input string) string {
	clean := strings.ToUpper(stripSeparators(input))
	return strings.TrimPrefix(clean, "0X")
}

func isHex(s string) bool {
	for _, r := range s {
		if !unicode.Is(unicode.ASCII_Hex_Digit, r) {
			return false
		}
	}
	return true
}

func stripSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '|' || r == '_' || r == ':' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
