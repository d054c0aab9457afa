package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".masterylens"
	configType      = "yaml"
	envPrefix       = "MASTERYLENS"
	envKeySeparator = "_"
)

// Load reads configuration from file, env vars and defaults.
// If configPath is non-empty it names the config file explicitly; otherwise
// .masterylens.yaml is searched in the working directory and $HOME.
// A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("mastery.base_percent", d.Mastery.BasePercent)
	v.SetDefault("mastery.rating_per_percent", d.Mastery.RatingPerPercent)

	v.SetDefault("catalog", d.Catalog)
	v.SetDefault("archive.path", d.Archive.Path)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("output.language", d.Output.Language)

	v.SetDefault("log.level", d.Log.Level)
}
