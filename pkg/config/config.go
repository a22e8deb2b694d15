// Package config loads buffer pool manager configuration from a YAML
// file via viper, following the shape of the original NovaSqlConfig this
// is adapted from.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the knobs the buffer pool manager and its storage layer
// need at startup.
type Config struct {
	AppName string `mapstructure:"app_name"`

	Buffer struct {
		NumFrames int `mapstructure:"num_frames"`
	} `mapstructure:"buffer"`

	Storage struct {
		Workdir  string `mapstructure:"workdir"`
		PageSize int    `mapstructure:"page_size"`
	} `mapstructure:"storage"`
}

// Default returns the built-in configuration. bpmctl always starts from it
// and reads no config file.
func Default() *Config {
	cfg := &Config{AppName: "bufmgr"}
	cfg.Buffer.NumFrames = 128
	cfg.Storage.Workdir = "./data"
	cfg.Storage.PageSize = 8192
	return cfg
}

// Load reads a YAML config file at path into a Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
