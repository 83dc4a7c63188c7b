package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the scoperun.toml shape. Globals are installed into the script's
// context before evaluation.
type Config struct {
	LogLevel string         `toml:"log_level"`
	Context  string         `toml:"context"`
	Globals  map[string]any `toml:"globals"`
}

func defaultConfig() Config {
	return Config{Context: "main"}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("scoperun: loading config %s: %w", path, err)
	}
	if cfg.Context == "" {
		cfg.Context = "main"
	}
	return cfg, nil
}
