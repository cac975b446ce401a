// Package config loads runtime settings from defaults, an optional config
// file and INSIGHT_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. INSIGHT_STORE_BACKEND.
const EnvPrefix = "INSIGHT"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Query  QueryConfig  `mapstructure:"query"`
	Store  StoreConfig  `mapstructure:"store"`
	Ingest IngestConfig `mapstructure:"ingest"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

type QueryConfig struct {
	// ResultLimit caps result rows; 0 disables the cap.
	ResultLimit int `mapstructure:"resultlimit"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"` // sqlite file
	DSN     string `mapstructure:"dsn"`  // postgres connection string
}

type IngestConfig struct {
	Workers int `mapstructure:"workers"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"addsource"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("query.resultlimit", 5000)
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.path", "data/insight.db")
	v.SetDefault("store.dsn", "")
	v.SetDefault("ingest.workers", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.addsource", false)
	v.SetDefault("server.addr", ":4321")
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	cfg, err := load(viper.New(), "")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration. path may be empty; when set, the file must exist
// and its format follows the extension (yaml, json, toml).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return load(v, path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Query.ResultLimit < 0 {
		errs = append(errs, fmt.Errorf("query.resultlimit must not be negative, got %d", c.Query.ResultLimit))
	}
	if c.Ingest.Workers < 0 {
		errs = append(errs, fmt.Errorf("ingest.workers must not be negative, got %d", c.Ingest.Workers))
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite backend"))
		}
	case BackendPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q (want memory, sqlite or postgres)", c.Store.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
