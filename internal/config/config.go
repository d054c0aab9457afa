// Package config loads masterylens settings from defaults, an optional
// .masterylens.yaml file and MASTERYLENS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
)

// Default values.
const (
	DefaultBaseMasteryPercent = 21.0
	DefaultRatingPerPercent   = 133.33
	DefaultArchivePath        = "masterylens.db"
	DefaultOutputFormat       = "text"
	DefaultLanguage           = "en"
	DefaultLogLevel           = "info"
)

// Sentinel validation errors.
var (
	ErrInvalidRatingPerPercent = errors.New("mastery.rating_per_percent must be positive")
	ErrInvalidBasePercent      = errors.New("mastery.base_percent must be between 0 and 100")
	ErrInvalidFormat           = errors.New("output.format must be text or json")
	ErrInvalidLanguage         = errors.New("output.language is not a valid BCP 47 tag")
	ErrInvalidLogLevel         = errors.New("log.level must be debug, info, warn or error")
)

// Config is the top-level configuration. Field tags use mapstructure for
// viper unmarshalling.
type Config struct {
	Mastery MasteryConfig `mapstructure:"mastery"`
	Catalog string        `mapstructure:"catalog"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
}

// MasteryConfig holds the rating-to-percent conversion constants.
type MasteryConfig struct {
	BasePercent      float64 `mapstructure:"base_percent"`
	RatingPerPercent float64 `mapstructure:"rating_per_percent"`
}

// ArchiveConfig locates the SQLite event archive.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format   string `mapstructure:"format"`
	Color    bool   `mapstructure:"color"`
	Language string `mapstructure:"language"`
}

// LogConfig controls stderr logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Mastery: MasteryConfig{
			BasePercent:      DefaultBaseMasteryPercent,
			RatingPerPercent: DefaultRatingPerPercent,
		},
		Archive: ArchiveConfig{Path: DefaultArchivePath},
		Output: OutputConfig{
			Format:   DefaultOutputFormat,
			Color:    true,
			Language: DefaultLanguage,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !(c.Mastery.RatingPerPercent > 0) {
		return ErrInvalidRatingPerPercent
	}
	if c.Mastery.BasePercent < 0 || c.Mastery.BasePercent > 100 {
		return ErrInvalidBasePercent
	}

	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	if _, err := language.Parse(c.Output.Language); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.Output.Language)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Tag returns the parsed output language, falling back to English.
func (o OutputConfig) Tag() language.Tag {
	tag, err := language.Parse(o.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
}
