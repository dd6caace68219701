package thsensor

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yotFEIG17907/ttn-explore/internal/testutil"
)

func TestGolden(t *testing.T) {
	fixtures := []string{
		"sensor_periodic",
		"sensor_negative",
		"sensor_oob",
		"sensor_humidity_increase",
		"supervisory",
		"reset",
		"tamper",
		"link_quality",
		"unknown",
	}
	for _, name := range fixtures {
		name := name
		t.Run(name, func(t *testing.T) {
			hexStr := testutil.LoadHex(t, "thsensor/"+name+".hex")
			result, err := Analyze(context.Background(), hexStr, AnalyzeOptions{Encoding: "hex"})
			require.NoError(t, err)

			var expected map[string]any
			testutil.LoadJSON(t, "thsensor/"+name+".json", &expected)
			require.Equal(t, "", diffRecords(expected, result.Fields))
		})
	}
}

func diffRecords(expected map[string]any, actual Record) string {
	if len(expected) != len(actual) {
		return fmt.Sprintf("len mismatch expected %d actual %d", len(expected), len(actual))
	}
	fields := actual.Fields()
	for k, v := range expected {
		if !fields.Has(k) {
			return fmt.Sprintf("missing key %s", k)
		}
		switch ev := v.(type) {
		case float64:
			af, err := fields.Float(k)
			if err != nil || math.Abs(ev-af) > 1e-6 {
				return fmt.Sprintf("key %s mismatch expected %v got %v", k, v, actual[k])
			}
		default:
			if fmt.Sprintf("%v", v) != fmt.Sprintf("%v", actual[k]) {
				return fmt.Sprintf("key %s mismatch expected %v got %v", k, v, actual[k])
			}
		}
	}
	return ""
}
