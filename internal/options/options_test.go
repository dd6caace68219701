package options

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePayloadHex(t *testing.T) {
	data, err := ParsePayload(" |10_0D 00:05| 30 2D ", EncodingAuto)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0x0D, 0x00, 0x05, 0x30, 0x2D}, data)
}

func TestParsePayloadHexPrefix(t *testing.T) {
	data, err := ParsePayload("0x10fb", EncodingHex)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0xFB}, data)
}

func TestParsePayloadHexOddLength(t *testing.T) {
	_, err := ParsePayload("ABC", EncodingHex)
	require.Error(t, err)
}

func TestParsePayloadBase64(t *testing.T) {
	// "EA0ABTAt" is the TTN payload_raw rendering of 100D0005302D.
	data, err := ParsePayload("EA0ABTAt", EncodingAuto)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0x0D, 0x00, 0x05, 0x30, 0x2D}, data)

	forced, err := ParsePayload("EA0ABTAt", EncodingBase64)
	require.NoError(t, err)
	require.Equal(t, data, forced)
}

func TestParsePayloadBase64Unpadded(t *testing.T) {
	data, err := ParsePayload("EPs", EncodingBase64)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0xFB}, data)
}

func TestParsePayloadEmpty(t *testing.T) {
	_, err := ParsePayload("   ", EncodingAuto)
	require.Error(t, err)
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("")
	require.NoError(t, err)
	require.Equal(t, EncodingAuto, enc)

	enc, err = ParseEncoding("HEX")
	require.NoError(t, err)
	require.Equal(t, EncodingHex, enc)

	_, err = ParseEncoding("ascii85")
	require.Error(t, err)
}

func TestPortContext(t *testing.T) {
	_, ok := Port(context.Background())
	require.False(t, ok)

	port, ok := Port(WithPort(context.Background(), 5))
	require.True(t, ok)
	require.Equal(t, 5, port)
}
