package duckdb

import (
	"fmt"
	"net/url"
)

// Config contains DuckDB-specific connection options.
type Config struct {
	Path     string
	ReadOnly bool
}

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{}

	path, ok := config["path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("path is required")
	}
	cfg.Path = path

	if readOnly, ok := config["read_only"].(bool); ok {
		cfg.ReadOnly = readOnly
	}
	return cfg, nil
}

// dsn returns the driver connection string of the warehouse file.
func (c *Config) dsn() string {
	if !c.ReadOnly {
		return c.Path
	}
	q := url.Values{}
	q.Set("access_mode", "READ_ONLY")
	return c.Path + "?" + q.Encode()
}
