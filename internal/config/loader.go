package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables. Order of precedence (low -> high):
//  1. Default()
//  2. file (YAML) if OUTBOUND_CONFIG is set
//  3. env (prefix OUTBOUND_, "__" maps to nesting: OUTBOUND_SMTP__HOST)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("OUTBOUND_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("OUTBOUND_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "OUTBOUND_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.Dispatcher.DailyLimit <= 0 || c.Dispatcher.HourlyLimit <= 0 {
		return errors.New("dispatcher limits must be positive")
	}
	if c.Dispatcher.HourlyLimit > c.Dispatcher.DailyLimit {
		return errors.New("hourly limit must not exceed daily limit")
	}
	if len(c.Composer.Campaigns) == 0 {
		return errors.New("at least one campaign must be configured")
	}
	return nil
}
