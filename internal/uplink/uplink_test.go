package uplink

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yotFEIG17907/ttn-explore/internal/testutil"
)

func TestParseEnvelope(t *testing.T) {
	line := `{"app_id":"skybar-sensors","dev_id":"sky-bar-chill-room","port":1,"counter":10,"payload_raw":"EA0ABTAt","metadata":{"time":"2020-06-01T10:00:00.000Z"}}`
	env, err := ParseEnvelope([]byte(line))
	require.NoError(t, err)
	require.Equal(t, "skybar-sensors", env.AppID)
	require.Equal(t, "sky-bar-chill-room", env.DevID)
	require.Equal(t, 1, env.Port)
	require.Equal(t, 10, env.Counter)
	require.True(t, env.Metadata.Time.Equal(time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)))

	payload, err := env.Payload()
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0x0D, 0x00, 0x05, 0x30, 0x2D}, payload)
}

func TestParseEnvelopeMissingPayload(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"dev_id":"x","port":1}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "payload_raw")
}

func TestEnvelopeBadBase64(t *testing.T) {
	env := Envelope{DevID: "x", PayloadRaw: "!!"}
	_, err := env.Payload()
	require.Error(t, err)
}

func TestReadAll(t *testing.T) {
	f := testutil.Open(t, "uplink/messages.jsonl")
	var lines []Line
	err := ReadAll(context.Background(), f, func(l Line) error {
		lines = append(lines, l)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, lines, 5)
	require.Equal(t, []int{1, 2, 3, 5, 6}, []int{lines[0].No, lines[1].No, lines[2].No, lines[3].No, lines[4].No})
	for _, l := range lines {
		require.NoError(t, l.Err)
	}
	require.Equal(t, "sky-bar-freezer", lines[2].Envelope.DevID)
}

func TestReadAllReportsBadLines(t *testing.T) {
	f := testutil.Open(t, "uplink/mixed.jsonl")
	var failed []int
	total := 0
	err := ReadAll(context.Background(), f, func(l Line) error {
		total++
		if l.Err != nil {
			failed = append(failed, l.No)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, []int{2}, failed)
}

func TestReadAllStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	input := strings.Repeat(`{"dev_id":"a","payload_raw":"FQA="}`+"\n", 3)
	calls := 0
	err := ReadAll(context.Background(), strings.NewReader(input), func(Line) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}

func TestReadAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ReadAll(ctx, strings.NewReader(`{"dev_id":"a","payload_raw":"FQA="}`+"\n"), func(Line) error {
		t.Fatal("callback must not run")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDeviceFromTopic(t *testing.T) {
	app, dev, ok := DeviceFromTopic("skybar-sensors/devices/sky-bar-chill-room/up")
	require.True(t, ok)
	require.Equal(t, "skybar-sensors", app)
	require.Equal(t, "sky-bar-chill-room", dev)

	for _, topic := range []string{"", "a/b/c/up", "a/devices/b/down", "/devices/b/up", "a/devices//up"} {
		_, _, ok := DeviceFromTopic(topic)
		require.False(t, ok, topic)
	}
}

func TestParseLineWithTopic(t *testing.T) {
	line := "skybar-sensors/devices/sky-bar-freezer/up {\"port\":1,\"counter\":4,\"payload_raw\":\"FQA=\"}"
	env, err := ParseLine([]byte(line))
	require.NoError(t, err)
	require.Equal(t, "skybar-sensors/devices/sky-bar-freezer/up", env.Topic)
	require.Equal(t, "skybar-sensors", env.AppID)
	require.Equal(t, "sky-bar-freezer", env.DevID)
	require.Equal(t, 4, env.Counter)
}

func TestParseLineDocumentWins(t *testing.T) {
	line := "app/devices/from-topic/up\t{\"dev_id\":\"from-doc\",\"payload_raw\":\"FQA=\"}"
	env, err := ParseLine([]byte(line))
	require.NoError(t, err)
	require.Equal(t, "from-doc", env.DevID)
	require.Equal(t, "app", env.AppID)
}

func TestParseLineBare(t *testing.T) {
	env, err := ParseLine([]byte(`  {"dev_id":"a","payload_raw":"FQA=","hardware_serial":"A81758FFFE030004"}`))
	require.NoError(t, err)
	require.Empty(t, env.Topic)
	require.Equal(t, "A81758FFFE030004", env.HardwareSerial)
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{
		"skybar-sensors/devices/sky-bar-freezer/up",
		"skybar-sensors/devices/sky-bar-freezer/down {\"payload_raw\":\"FQA=\"}",
		"skybar-sensors/devices/sky-bar-freezer/up {\"payload_raw\":",
	} {
		_, err := ParseLine([]byte(line))
		require.Error(t, err, line)
	}
}
