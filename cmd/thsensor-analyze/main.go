package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yotFEIG17907/ttn-explore/internal/config"
	"github.com/yotFEIG17907/ttn-explore/internal/logging"
	"github.com/yotFEIG17907/ttn-explore/pkg/thsensor"
)

var (
	rootCmd = &cobra.Command{
		Use:   "thsensor-analyze [payload]",
		Short: "Decode temperature/humidity sensor uplinks",
		Long: "thsensor-analyze decodes LoRaWAN temperature/humidity sensor payloads given as hex or base64.\n" +
			"Without arguments it reads one payload per line from stdin.",
		Args:               cobra.MaximumNArgs(1),
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				return runInteractive(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return runAnalyze(ctx, cmd.OutOrStdout(), args[0])
		},
	}

	configPath string
	v          = config.New()
	cfg        config.Config
	logCloser  io.Closer
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file (default: ./thsensor.yaml or $HOME/.config/thsensor/thsensor.yaml)")
	flags.Int("port", 1, "LoRaWAN FPort the payload arrived on")
	flags.String("encoding", "auto", "payload encoding: auto, hex or base64")
	flags.String("output", config.OutputJSON, "output format: json or yaml")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this file, rotated by size")

	for key, name := range map[string]string{
		"port":      "port",
		"encoding":  "encoding",
		"output":    "output",
		"log.level": "log-level",
		"log.file":  "log-file",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	rootCmd.AddCommand(replayCmd)
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}

func setup(*cobra.Command, []string) error {
	if err := config.ReadFile(v, configPath); err != nil {
		return err
	}
	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded
	logCloser, err = logging.Setup(logrus.StandardLogger(), cfg.Log)
	if err != nil {
		return err
	}
	if used := v.ConfigFileUsed(); used != "" {
		logrus.WithField("path", used).Debug("loaded config file")
	}
	return nil
}

func teardown(*cobra.Command, []string) error {
	if logCloser == nil {
		return nil
	}
	return logCloser.Close()
}

func analyzeOptions() thsensor.AnalyzeOptions {
	return thsensor.AnalyzeOptions{Port: thsensor.Port(cfg.Port), Encoding: string(cfg.Encoding)}
}

func runInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	logrus.Info("thsensor analyze mode. Paste a hex or base64 payload and press Enter (Ctrl+D to exit).")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := runAnalyze(ctx, out, line); err != nil {
			logrus.WithError(err).Error("failed to decode payload")
		}
	}
	return scanner.Err()
}

func runAnalyze(ctx context.Context, out io.Writer, payload string) error {
	result, err := thsensor.Analyze(ctx, payload, analyzeOptions())
	if err != nil {
		return err
	}
	event, err := result.Fields.Fields().String("event_type")
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"msgdesc":    result.Message.MsgDesc(),
		"event_type": event,
		"bytes":      result.ByteCount,
	}).Debug("decoded payload")
	return writeResult(out, result)
}

func writeResult(out io.Writer, result thsensor.Result) error {
	if cfg.Output == config.OutputYAML {
		doc, err := result.YAML()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, doc)
		return err
	}
	_, err := fmt.Fprintln(out, result.String())
	return err
}
