package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/pkg/enumsync"
)

const defaultConfigFile = "enumsync.yaml"

// Config represents the enumsync.yaml configuration file.
type Config struct {
	DatabaseURL   string   `yaml:"database_url"`
	Dialect       string   `yaml:"dialect"`
	Driver        string   `yaml:"driver"`
	SchemasDir    string   `yaml:"schemas_dir"`
	MigrationsDir string   `yaml:"migrations_dir"`
	Schemas       []string `yaml:"schemas"`
	DefaultSchema string   `yaml:"default_schema"`

	DropUnusedEnums       *bool `yaml:"drop_unused_enums"`
	SyncEnumValues        *bool `yaml:"sync_enum_values"`
	IgnoreEnumValuesOrder bool  `yaml:"ignore_enum_values_order"`
	ForceDialectSupport   bool  `yaml:"force_dialect_support"`

	IncludeEnums []string `yaml:"include_enums"`
	ExcludeEnums []string `yaml:"exclude_enums"`

	LogLevel string `yaml:"log_level"`
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults.
// A missing config file is only an error when it was named explicitly.
func loadConfig(flags *globalFlags) (*Config, error) {
	cfg := &Config{
		SchemasDir:    "./schemas",
		MigrationsDir: "./migrations",
		LogLevel:      "warn",
	}

	path := flags.configFile
	if path == "" {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.DatabaseURL = expandEnvVars(cfg.DatabaseURL)
	case errors.Is(err, fs.ErrNotExist) && path == defaultConfigFile:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("ENUMSYNC_SCHEMAS_DIR"); v != "" {
		cfg.SchemasDir = v
	}
	if v := os.Getenv("ENUMSYNC_MIGRATIONS_DIR"); v != "" {
		cfg.MigrationsDir = v
	}

	if flags.databaseURL != "" {
		cfg.DatabaseURL = flags.databaseURL
	}
	if flags.schemasDir != "" {
		cfg.SchemasDir = flags.schemasDir
	}
	if flags.migrationsDir != "" {
		cfg.MigrationsDir = flags.migrationsDir
	}
	if len(flags.schemas) > 0 {
		cfg.Schemas = flags.schemas
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// decodeConfig rejects unknown keys so typos do not silently fall back to
// defaults.
func decodeConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

// Reconcile builds the comparator settings.
func (c *Config) Reconcile() (enumsync.ReconcileConfig, error) {
	rc := enumsync.DefaultReconcileConfig()
	if c.DropUnusedEnums != nil {
		rc.DropUnusedEnums = *c.DropUnusedEnums
	}
	if c.SyncEnumValues != nil {
		rc.SyncEnumValues = *c.SyncEnumValues
	}
	rc.IgnoreEnumValuesOrder = c.IgnoreEnumValuesOrder
	rc.ForceDialectSupport = c.ForceDialectSupport
	rc.DefaultSchema = c.DefaultSchema

	include, err := engine.NamePredicate(c.IncludeEnums, c.ExcludeEnums)
	if err != nil {
		return rc, err
	}
	rc.IncludeName = include
	return rc, nil
}

// Level parses log_level. Unknown values fall back to warn.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// newLogger returns the text logger the engine writes to.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

// newClient creates an enumsync client from the merged configuration.
func newClient(flags *globalFlags) (*enumsync.Client, *Config, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, enumsync.ErrMissingDatabaseURL
	}
	rc, err := cfg.Reconcile()
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	opts := []enumsync.Option{
		enumsync.WithDatabaseURL(cfg.DatabaseURL),
		enumsync.WithSchemasDir(cfg.SchemasDir),
		enumsync.WithMigrationsDir(cfg.MigrationsDir),
		enumsync.WithSchemas(cfg.Schemas...),
		enumsync.WithConfig(rc),
		enumsync.WithLogger(logger),
	}
	if cfg.Dialect != "" {
		opts = append(opts, enumsync.WithDialect(cfg.Dialect))
	}
	if cfg.Driver != "" {
		opts = append(opts, enumsync.WithDriver(cfg.Driver))
	}

	client, err := enumsync.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}
