package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/snapwise/rotation/internal/domain/formation"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if ROTATION_CONFIG is set
//  3. env (prefix ROTATION_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("ROTATION_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: ROTATION_TOTAL_SERIES, ROTATION_VARIANT, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("ROTATION_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "rotation_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.TotalSeries < 1 {
		return fmt.Errorf("%w: total_series must be at least 1", ErrInvalidConfig)
	}
	if _, ok := formation.VariantByName(cfg.Variant); !ok {
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, cfg.Variant)
	}
	if len(cfg.PreferenceWeights) == 0 {
		return fmt.Errorf("%w: preference_weights must not be empty", ErrInvalidConfig)
	}
	return nil
}
