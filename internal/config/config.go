package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/yotFEIG17907/ttn-explore/internal/options"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "THSENSOR"

// Output formats.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config is the resolved CLI configuration.
type Config struct {
	Port     int              `mapstructure:"port"`
	Encoding options.Encoding `mapstructure:"encoding"`
	Output   string           `mapstructure:"output"`
	Log      LogConfig        `mapstructure:"log"`
}

// LogConfig configures logrus and optional file rotation.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`    // megabytes
	MaxBackups int    `mapstructure:"max_backups"` // files
	MaxAge     int    `mapstructure:"max_age"`     // days
	Compress   bool   `mapstructure:"compress"`
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", 1)
	v.SetDefault("encoding", string(options.EncodingAuto))
	v.SetDefault("output", OutputJSON)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile loads path, or searches thsensor.yaml in the working directory and
// $HOME/.config/thsensor when path is empty. A missing search result is not an
// error; a missing explicit path is.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
	v.SetConfigName("thsensor")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "thsensor"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	enc, err := options.ParseEncoding(string(cfg.Encoding))
	if err != nil {
		return Config{}, err
	}
	cfg.Encoding = enc
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	switch cfg.Output {
	case OutputJSON, OutputYAML:
	default:
		return Config{}, fmt.Errorf("unknown output format %q (want json or yaml)", cfg.Output)
	}
	if cfg.Port < 0 || cfg.Port > 255 {
		return Config{}, fmt.Errorf("port %d out of range 0-255", cfg.Port)
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}
	return cfg, nil
}
