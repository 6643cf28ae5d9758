package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// watchConfig holds configuration of the watch command.
type watchConfig struct {
	RPCEndpoint    string `mapstructure:"RPC_ENDPOINT"`
	Contract       string `mapstructure:"CONTRACT"`
	Schedule       string `mapstructure:"SCHEDULE"`
	MetricsAddress string `mapstructure:"METRICS_ADDRESS"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
}

// loadWatchConfig reads configuration from the optional YAML file and VAULT_*
// environment variables, the latter take precedence.
func loadWatchConfig(file string) (*watchConfig, error) {
	v := viper.New()

	v.SetDefault("SCHEDULE", "@every 1m")
	v.SetDefault("METRICS_ADDRESS", ":9090")
	v.SetDefault("LOG_LEVEL", "info")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("VAULT")
	for _, key := range []string{"RPC_ENDPOINT", "CONTRACT", "SCHEDULE", "METRICS_ADDRESS", "LOG_LEVEL"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s environment variable: %w", key, err)
		}
	}

	var cfg watchConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	switch {
	case cfg.RPCEndpoint == "":
		return nil, errors.New("missing Neo RPC endpoint")
	case cfg.Contract == "":
		return nil, errors.New("missing vault contract address")
	}

	return &cfg, nil
}
