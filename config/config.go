// Package config loads the fractview configuration file and builds the
// logger described by it.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	fverrors "github.com/wippyai/fractview/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "fractview.yaml"

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config is the root configuration structure.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Favorites FavoritesConfig `yaml:"favorites"`
	Session   SessionConfig   `yaml:"session"`
	Exclusive []string        `yaml:"exclusive"`
	Watch     WatchConfig     `yaml:"watch"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// FavoritesConfig locates the favorites database.
type FavoritesConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig locates the session snapshot.
type SessionConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig configures `fractview watch`.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads the YAML file at path. Environment variables in the file are
// expanded and FRACTVIEW_* variables override file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseConfig, fverrors.KindNotFound, err, "read config")
	}
	return Parse(bytes.NewReader(data))
}

// LoadWithFallback loads path if it exists and returns the defaults
// otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fverrors.Wrap(fverrors.PhaseConfig, fverrors.KindInvalidInput, err, "stat config")
	}
	return Load(path)
}

// Parse decodes a configuration from r. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseConfig, fverrors.KindInvalidData, err, "read config")
	}
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fverrors.Wrap(fverrors.PhaseConfig, fverrors.KindInvalidData, err, "parse config")
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FRACTVIEW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FRACTVIEW_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("FRACTVIEW_FAVORITES"); v != "" {
		cfg.Favorites.Path = v
	}
	if v := os.Getenv("FRACTVIEW_SESSION"); v != "" {
		cfg.Session.Path = v
	}
	if v := os.Getenv("FRACTVIEW_EXCLUSIVE"); v != "" {
		cfg.Exclusive = strings.Split(v, ",")
	}
}

func setDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = FormatConsole
	}
	if cfg.Favorites.Path == "" {
		cfg.Favorites.Path = "favorites.db"
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = "session.cbor"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 200 * time.Millisecond
	}
}

func validate(cfg *Config) error {
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fverrors.New(fverrors.PhaseConfig, fverrors.KindInvalidInput).
			Param("log.level").Value(cfg.Log.Level).Cause(err).Detail("unknown log level").Build()
	}
	switch cfg.Log.Format {
	case FormatConsole, FormatJSON:
	default:
		return fverrors.New(fverrors.PhaseConfig, fverrors.KindInvalidInput).
			Param("log.format").Value(cfg.Log.Format).Detail("format must be console or json").Build()
	}
	if cfg.Watch.Debounce < 0 {
		return fverrors.New(fverrors.PhaseConfig, fverrors.KindInvalidInput).
			Param("watch.debounce").Value(cfg.Watch.Debounce).Detail("debounce must not be negative").Build()
	}
	for i, key := range cfg.Exclusive {
		key = strings.TrimSpace(key)
		if key == "" {
			return fverrors.New(fverrors.PhaseConfig, fverrors.KindInvalidInput).
				Param("exclusive").Detail("empty key at position %d", i).Build()
		}
		cfg.Exclusive[i] = key
	}
	return nil
}

// NewLogger builds a zap logger writing to stderr. The json format uses the
// production encoder, console the development one.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseConfig, fverrors.KindInvalidInput, err, "log level")
	}

	var zc zap.Config
	if cfg.Format == FormatJSON {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, fverrors.Wrap(fverrors.PhaseConfig, fverrors.KindInvalidInput, err, "build logger")
	}
	return l, nil
}
