package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "BULKOPS_"

type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Database DatabaseConfig `koanf:"database"`
	Bulk     BulkConfig     `koanf:"bulk"`
	Log      LogConfig      `koanf:"log"`
}

type HTTPConfig struct {
	Port            int           `koanf:"port"`
	BodyLimit       string        `koanf:"body_limit"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL      string `koanf:"url"`
	MaxConns int    `koanf:"max_conns"`
}

type BulkConfig struct {
	MaxBatchSize   int    `koanf:"max_batch_size"`
	MaxImportRows  int    `koanf:"max_import_rows"`
	MaxExportRows  int    `koanf:"max_export_rows"`
	ExportFileName string `koanf:"export_file_name"`
	// ImportBaseDir resolves relative paths given to bulkctl import.
	ImportBaseDir string `koanf:"import_base_dir"`
}

type LogConfig struct {
	Env   string `koanf:"env"`
	Level string `koanf:"level"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:            8080,
			BodyLimit:       "10M",
			RequestTimeout:  2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{MaxConns: 10},
		Bulk: BulkConfig{
			MaxBatchSize:   1000,
			MaxImportRows:  10000,
			MaxExportRows:  100000,
			ExportFileName: "users_export.csv",
			ImportBaseDir:  ".",
		},
		Log: LogConfig{Env: "development", Level: "info"},
	}
}

// Load layers configuration: defaults, then the YAML file at path when it
// exists, then DATABASE_URL and PORT, then BULKOPS_* variables
// (BULKOPS_HTTP__PORT sets http.port). A .env file in the working directory
// is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if err := k.Set("database.url", v); err != nil {
			return nil, fmt.Errorf("setting database url: %w", err)
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if err := k.Set("http.port", v); err != nil {
			return nil, fmt.Errorf("setting port: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

var validLogEnvs = map[string]bool{"development": true, "production": true}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d is out of range", c.HTTP.Port))
	}
	if c.HTTP.BodyLimit == "" {
		errs = append(errs, errors.New("http.body_limit is required"))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must be positive"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required (or set DATABASE_URL)"))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, errors.New("database.max_conns must be positive"))
	}
	if c.Bulk.MaxBatchSize <= 0 {
		errs = append(errs, errors.New("bulk.max_batch_size must be positive"))
	}
	if c.Bulk.MaxImportRows <= 0 {
		errs = append(errs, errors.New("bulk.max_import_rows must be positive"))
	}
	if c.Bulk.MaxExportRows <= 0 {
		errs = append(errs, errors.New("bulk.max_export_rows must be positive"))
	}
	if !strings.HasSuffix(c.Bulk.ExportFileName, ".csv") {
		errs = append(errs, fmt.Errorf("bulk.export_file_name %q must end in .csv", c.Bulk.ExportFileName))
	}
	if !validLogEnvs[c.Log.Env] {
		errs = append(errs, fmt.Errorf("invalid log.env %q: must be development or production", c.Log.Env))
	}

	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}
