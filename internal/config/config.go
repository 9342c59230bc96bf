package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store backends accepted by --store.
const (
	StoreMemory   = "memory"
	StoreJSONL    = "jsonl"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// ProjectConfig holds configuration for the project command.
type ProjectConfig struct {
	In                string
	Manifest          string
	DataSources       []string
	Store             string
	StorePath         string
	PGDSN             string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	Errors            string
	MetricsAddr       string
	LogLevel          string
}

// LoadProject merges config file, environment variables, and flags into ProjectConfig.
func LoadProject(cfgFile string, flags *pflag.FlagSet) (ProjectConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"manifest":           "./subgraph.yaml",
		"store":              StoreSQLite,
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
		"errors":             "./data/project_errors.jsonl",
		"log-level":          "info",
	})
	if err != nil {
		return ProjectConfig{}, err
	}

	cfg := ProjectConfig{
		In:                v.GetString("in"),
		Manifest:          v.GetString("manifest"),
		DataSources:       getStringSlice(v, "data-source"),
		Store:             strings.ToLower(v.GetString("store")),
		StorePath:         v.GetString("store-path"),
		PGDSN:             v.GetString("pg-dsn"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		Errors:            v.GetString("errors"),
		MetricsAddr:       v.GetString("metrics-addr"),
		LogLevel:          v.GetString("log-level"),
	}
	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStorePath(cfg.Store)
	}

	return cfg, nil
}

// DefaultStorePath returns the file a store writes to when --store-path is
// not set. Stores without a file return "".
func DefaultStorePath(store string) string {
	switch store {
	case StoreJSONL:
		return "./data/entities.jsonl"
	case StoreSQLite:
		return "./data/entities.db"
	default:
		return ""
	}
}

// FileCheckpointEnabled reports whether the file checkpoint applies. A
// memory store starts empty on every run, so resuming from a file would
// skip blocks whose entities were never kept.
func (c ProjectConfig) FileCheckpointEnabled() bool {
	return c.CheckpointEnabled && c.Store != StoreMemory
}

// Validate checks required fields for the selected store.
func (c ProjectConfig) Validate() error {
	if c.In == "" {
		return fmt.Errorf("input path is required")
	}
	if c.Manifest == "" {
		return fmt.Errorf("manifest path is required")
	}
	switch c.Store {
	case StoreMemory:
	case StoreJSONL, StoreSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("store path is required for %s store", c.Store)
		}
	case StorePostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("pg dsn is required for postgres store")
		}
	default:
		return fmt.Errorf("unsupported store: %q", c.Store)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	return nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	if err := loadDotEnv(cfgFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// loadDotEnv loads a .env next to the config file, or in the working
// directory when no config file is given. Existing variables win.
func loadDotEnv(cfgFile string) error {
	dir := "."
	if cfgFile != "" {
		dir = filepath.Dir(cfgFile)
	}
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
