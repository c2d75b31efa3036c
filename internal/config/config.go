// Package config provides configuration parsing and validation for snapstore.
package config

import (
	"gopkg.in/yaml.v3"
)

// Config holds the complete snapstore configuration.
type Config struct {
	Store   StoreConfig `yaml:"store" json:"store"`
	Logging LogConfig   `yaml:"logging" json:"logging"`
	Trace   TraceConfig `yaml:"trace" json:"trace"`
}

// StoreConfig holds storage engine configuration.
type StoreConfig struct {
	// PageSize is the number of rows per storage page, a power of two.
	PageSize   int `yaml:"pageSize" json:"pageSize"`
	// BTreeOrder is the maximum fan-out of index nodes.
	BTreeOrder int `yaml:"btreeOrder" json:"btreeOrder"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// TraceConfig holds script trace output configuration.
type TraceConfig struct {
	Format string `yaml:"format" json:"format"`
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
