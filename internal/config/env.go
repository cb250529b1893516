package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from the environment. Unset variables stay nil.
type EnvConfig struct {
	Seed    *int64  `env:"RISK_SEED"`
	Trials  *int    `env:"RISK_TRIALS"`
	Workers *int    `env:"RISK_WORKERS"`
	DBPath  *string `env:"RISK_DB"`
}

// LoadEnv parses RISK_* environment variables.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
