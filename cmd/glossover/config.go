package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/twellen/glossover/host/browser"
	"github.com/twellen/glossover/wiki"
)

// Config holds all glossover configuration.
type Config struct {
	DBPath  string         `yaml:"db_path"`
	Addr    string         `yaml:"addr"`
	Wiki    wiki.Config    `yaml:"wiki"`
	Browser browser.Config `yaml:"browser"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "glossover.db"
	}
	if c.Addr == "" {
		c.Addr = ":8480"
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
