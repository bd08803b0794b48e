package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/lostma-project/lostma-audit/pkg/models"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "config.yaml"

// WarehouseTypes lists the warehouse engines the binary ships adapters for.
var WarehouseTypes = []string{"duckdb", "postgres"}

// Config holds all configuration for lostma-audit.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Warehouse WarehouseConfig `yaml:"warehouse"`
	Schema    SchemaConfig    `yaml:"schema"`

	// JoinGraphPath optionally replaces the compiled-in join graph with a YAML file.
	JoinGraphPath string `yaml:"join_graph" env:"JOIN_GRAPH" env-default:""`

	// ValidationLogPath is the editorial validation log cross-referenced by log reports.
	ValidationLogPath string `yaml:"validation_log" env:"VALIDATION_LOG" env-default:"validation.log"`

	Tool ToolConfig `yaml:"tool"`
}

// WarehouseConfig selects and locates the analytical warehouse.
type WarehouseConfig struct {
	Type string `yaml:"type" env:"WAREHOUSE_TYPE" env-default:"duckdb"`

	// DuckDB
	Path     string `yaml:"path" env:"WAREHOUSE_PATH" env-default:"lostma.db"`
	ReadOnly bool   `yaml:"read_only" env:"WAREHOUSE_READ_ONLY" env-default:"false"`

	// PostgreSQL mirror
	Host     string `yaml:"host" env:"WAREHOUSE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"WAREHOUSE_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"WAREHOUSE_USER" env-default:""`
	Password string `yaml:"-" env:"WAREHOUSE_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"WAREHOUSE_DATABASE" env-default:""`
	Schema   string `yaml:"schema" env:"WAREHOUSE_SCHEMA" env-default:"public"`
	SSLMode  string `yaml:"ssl_mode" env:"WAREHOUSE_SSLMODE" env-default:"disable"`
}

// SchemaConfig locates the schema export and filters the requirement levels reported.
type SchemaConfig struct {
	Dir string `yaml:"dir" env:"SCHEMA_DIR" env-default:"schema"`
	// RequirementLevels restricts completeness reports to these levels. Empty means all four.
	RequirementLevels []string `yaml:"requirement_levels" env:"SCHEMA_REQUIREMENT_LEVELS" env-separator:","`

	// Levels is parsed from RequirementLevels (not from config file).
	Levels []models.RequirementLevel `yaml:"-"`
}

// ToolConfig configures the external tool that re-materializes the warehouse.
type ToolConfig struct {
	CLIPath  string `yaml:"cli_path" env:"HEURIST_CLI" env-default:"heurist"`
	Database string `yaml:"database" env:"HEURIST_DATABASE" env-default:"jbcamps_gestes"`
	Login    string `yaml:"login" env:"HEURIST_LOGIN" env-default:""`
	Password string `yaml:"-" env:"HEURIST_PASSWORD"` // Secret - not in YAML
	// WorkDir is where the schema export command runs and writes its files.
	WorkDir     string        `yaml:"work_dir" env:"HEURIST_WORK_DIR" env-default:"."`
	RecordTypes []string      `yaml:"record_types" env:"HEURIST_RECORD_TYPES" env-separator:","`
	Timeout     time.Duration `yaml:"timeout" env:"HEURIST_TIMEOUT" env-default:"30m"`
}

// Load reads configuration from path with environment variable overrides. A missing file
// is not an error: configuration then comes from the environment and defaults alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() error {
	levels, err := models.ParseRequirementLevels(c.Schema.RequirementLevels)
	if err != nil {
		return fmt.Errorf("schema.requirement_levels: %w", err)
	}
	c.Schema.Levels = levels
	c.Warehouse.Type = strings.ToLower(strings.TrimSpace(c.Warehouse.Type))
	return nil
}

func (c *Config) validate() error {
	if !slices.Contains(WarehouseTypes, c.Warehouse.Type) {
		return fmt.Errorf("warehouse.type %q is not one of %s", c.Warehouse.Type, strings.Join(WarehouseTypes, ", "))
	}
	switch c.Warehouse.Type {
	case "duckdb":
		if c.Warehouse.Path == "" {
			return fmt.Errorf("warehouse.path is required for duckdb")
		}
	case "postgres":
		if c.Warehouse.User == "" || c.Warehouse.Database == "" {
			return fmt.Errorf("warehouse.user and warehouse.database are required for postgres")
		}
	}
	if c.Schema.Dir == "" {
		return fmt.Errorf("schema.dir is required")
	}
	return nil
}

// AdapterConfig returns the generic adapter options of the configured warehouse type.
func (w *WarehouseConfig) AdapterConfig() map[string]any {
	if w.Type == "postgres" {
		return map[string]any{
			"host":     w.Host,
			"port":     w.Port,
			"user":     w.User,
			"password": w.Password,
			"database": w.Database,
			"schema":   w.Schema,
			"ssl_mode": w.SSLMode,
		}
	}
	return map[string]any{
		"path":      w.Path,
		"read_only": w.ReadOnly,
	}
}

// IsLocal reports whether the binary runs in a development or test environment.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == "test"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}
