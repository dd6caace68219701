package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yotFEIG17907/ttn-explore/internal/config"
	"github.com/yotFEIG17907/ttn-explore/internal/uplink"
	"github.com/yotFEIG17907/ttn-explore/pkg/thsensor"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file|->",
	Short: "Decode a file of stored TTN uplink messages",
	Long: "replay decodes a file holding one The Things Network uplink JSON document per line,\n" +
		"as captured from <AppID>/devices/<DevID>/up. Use - to read stdin.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open message file: %w", err)
			}
			defer f.Close()
			in = f
		}
		return runReplay(cmd.Context(), in, cmd.OutOrStdout())
	},
}

// replayRecord is one decoded uplink annotated with its delivery metadata.
type replayRecord struct {
	DevID          string          `json:"dev_id" yaml:"dev_id"`
	HardwareSerial string          `json:"hardware_serial,omitempty" yaml:"hardware_serial,omitempty"`
	Counter        int             `json:"counter" yaml:"counter"`
	Port           int             `json:"port" yaml:"port"`
	Time           string          `json:"time,omitempty" yaml:"time,omitempty"`
	Fields         thsensor.Record `json:"fields" yaml:"fields"`
}

type replayStats struct {
	total   int
	failed  int
	gaps    int
	byDesc  map[string]int
	tracker *uplink.GapTracker
}

func runReplay(ctx context.Context, in io.Reader, out io.Writer) error {
	stats := replayStats{byDesc: make(map[string]int), tracker: uplink.NewGapTracker()}
	err := uplink.ReadAll(ctx, in, func(line uplink.Line) error {
		stats.total++
		log := logrus.WithField("line", line.No)
		if line.Err != nil {
			stats.failed++
			log.WithError(line.Err).Error("failed to parse uplink")
			return nil
		}
		env := line.Envelope
		stats.tracker.Add(env)
		log = log.WithFields(logrus.Fields{"dev_id": env.DevID, "counter": env.Counter})
		data, err := env.Payload()
		if err != nil {
			stats.failed++
			log.WithError(err).Error("failed to decode payload_raw")
			return nil
		}
		result, err := thsensor.AnalyzeBytes(data, env.Port)
		if err != nil {
			stats.failed++
			log.WithError(err).Error("failed to decode uplink")
			return nil
		}
		stats.byDesc[result.Message.MsgDesc()]++
		rec := replayRecord{
			DevID:          env.DevID,
			HardwareSerial: env.HardwareSerial,
			Counter:        env.Counter,
			Port:           env.Port,
			Time:           formatTime(env.Metadata.Time),
			Fields:         result.Fields,
		}
		return writeReplayRecord(out, rec)
	})
	if err != nil {
		return err
	}
	stats.checkGaps()
	stats.log()
	if stats.failed > 0 {
		return fmt.Errorf("%d of %d uplinks failed to decode", stats.failed, stats.total)
	}
	return nil
}

func writeReplayRecord(out io.Writer, rec replayRecord) error {
	if cfg.Output == config.OutputYAML {
		data, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = fmt.Fprintf(out, "---\n%s", data)
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// checkGaps warns about frame counter jumps that point at lost uplinks.
func (s *replayStats) checkGaps() {
	for _, gap := range s.tracker.Gaps() {
		s.gaps++
		logrus.WithFields(logrus.Fields{
			"dev_id":       gap.DevID,
			"gap":          gap.Gap,
			"missing":      gap.Missing(),
			"run":          gap.Run,
			"prev_counter": gap.Prev.Counter,
			"prev_time":    formatTime(gap.Prev.Time),
			"counter":      gap.Next.Counter,
			"time":         formatTime(gap.Next.Time),
		}).Warn("frame counter gap, uplinks lost")
	}
}

func (s replayStats) log() {
	fields := logrus.Fields{
		"total":   s.total,
		"failed":  s.failed,
		"devices": s.tracker.Devices(),
		"gaps":    s.gaps,
	}
	for desc, n := range s.byDesc {
		fields[desc] = n
	}
	logrus.WithFields(fields).Info("replay finished")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
