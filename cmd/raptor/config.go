package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"practiceraptor/internal/executor"
	"practiceraptor/pkg/utils/logger"
)

// AppConfig holds raptor CLI configuration.
type AppConfig struct {
	Logger   logger.Config   `yaml:"logger"`
	Executor executor.Config `yaml:"executor"`
}

func loadConfig(path string) (AppConfig, error) {
	cfg := AppConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file failed: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "console"
	}
	if cfg.Executor.HelperPath == "" {
		cfg.Executor.HelperPath = "raptor-worker"
	}
}
