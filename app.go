package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/config"
	"github.com/lostma-project/lostma-audit/pkg/joingraph"
	"github.com/lostma-project/lostma-audit/pkg/materialize"
	"github.com/lostma-project/lostma-audit/pkg/metrics"
	"github.com/lostma-project/lostma-audit/pkg/services"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	asJSON     bool
}

// App wires configuration, the warehouse and the services together.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	warehouse *datasource.Manager
	metrics   *metrics.Metrics

	completeness services.CompletenessService
	enums        services.EnumValidationService
	validation   services.ValidationLogService
	sync         services.SyncService
}

// NewApp loads configuration and builds the services. The warehouse opens lazily on
// first use.
func NewApp(configPath string) (*App, error) {
	cfg, err := config.Load(configPath, Version)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	if !datasource.IsRegistered(cfg.Warehouse.Type) {
		return nil, fmt.Errorf("no adapter registered for warehouse type %q", cfg.Warehouse.Type)
	}

	registry := joingraph.Default()
	if cfg.JoinGraphPath != "" {
		registry, err = joingraph.LoadFile(cfg.JoinGraphPath)
		if err != nil {
			return nil, fmt.Errorf("load join graph: %w", err)
		}
	}

	warehouse := datasource.NewManager(
		datasource.RegistryOpener(cfg.Warehouse.Type, cfg.Warehouse.AdapterConfig(), logger),
		logger,
	)
	m := metrics.New()
	catalogs := services.NewCatalogCache(cfg.Schema.Dir, logger)

	runner := materialize.NewRunner(materialize.Config{
		CLIPath:  cfg.Tool.CLIPath,
		Database: cfg.Tool.Database,
		Login:    cfg.Tool.Login,
		Password: cfg.Tool.Password,
		Timeout:  cfg.Tool.Timeout,
	}, logger)

	syncCfg := services.SyncConfig{
		SchemaWorkDir: cfg.Tool.WorkDir,
		SchemaDir:     cfg.Schema.Dir,
		RecordTypes:   cfg.Tool.RecordTypes,
	}
	// Only a file-backed warehouse can be re-materialized in place.
	if cfg.Warehouse.Type == "duckdb" {
		syncCfg.WarehousePath = cfg.Warehouse.Path
	}

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("warehouse_type", cfg.Warehouse.Type),
		zap.String("schema_dir", cfg.Schema.Dir),
		zap.Int("entities", len(registry.Entities())))

	return &App{
		cfg:          cfg,
		logger:       logger,
		warehouse:    warehouse,
		metrics:      m,
		completeness: services.NewCompletenessService(warehouse, registry, catalogs, cfg.Schema.Levels, m, logger),
		enums:        services.NewEnumValidationService(warehouse, registry, catalogs, m, logger),
		validation:   services.NewValidationLogService(cfg.ValidationLogPath, warehouse, registry, m, logger),
		sync:         services.NewSyncService(syncCfg, warehouse, runner, catalogs, m, logger),
	}, nil
}

// Close releases the warehouse handle and flushes the logger.
func (a *App) Close() {
	if err := a.warehouse.Close(); err != nil {
		a.logger.Error("Failed to close warehouse", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}

	logConfig := zap.NewProductionConfig()
	if cfg.IsLocal() {
		logConfig = zap.NewDevelopmentConfig()
	}
	logConfig.Level = zap.NewAtomicLevelAt(level)
	// Reports go to stdout; keep logs off it.
	logConfig.OutputPaths = []string{"stderr"}
	return logConfig.Build()
}
