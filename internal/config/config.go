package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverBadger = "badger"
)

// Config holds the facetdex service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Search     SearchConfig     `yaml:"search"`
	Pagination PaginationConfig `yaml:"pagination"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds entity store settings. Addrs apply to redis and
// valkey, Dir and InMemory to badger.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, badger (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Dir              string   `yaml:"dir"`
	InMemory         bool     `yaml:"in_memory"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchFieldConfig names an attribute the fuzzy ranker scores against.
type SearchFieldConfig struct {
	Name          string `yaml:"name"`
	Preprocessing string `yaml:"preprocessing"` // none, fold_diacritics
}

// SearchConfig holds ranking and faceting settings.
type SearchConfig struct {
	Threshold *float64 `yaml:"threshold"`
	// FoldDiacritics folds every field regardless of its preprocessing.
	FoldDiacritics bool                `yaml:"fold_diacritics"`
	Fields         []SearchFieldConfig `yaml:"fields"`
	Facets         []string            `yaml:"facets"`
	HierarchyFacet *string             `yaml:"hierarchy_facet"`
	Ordering       []string            `yaml:"ordering"`
	Locale         string              `yaml:"locale"`
}

// PaginationConfig holds page size settings.
type PaginationConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, defaults and validates the configuration at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverValkey
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.Threshold == nil {
		t := 0.4
		c.Search.Threshold = &t
	}
	if len(c.Search.Fields) == 0 {
		c.Search.Fields = []SearchFieldConfig{
			{Name: "title", Preprocessing: "fold_diacritics"},
			{Name: "subtitle", Preprocessing: "fold_diacritics"},
		}
	}
	for i := range c.Search.Fields {
		if c.Search.Fields[i].Preprocessing == "" {
			c.Search.Fields[i].Preprocessing = "none"
		}
	}
	if c.Search.Facets == nil {
		c.Search.Facets = []string{"language", "topic"}
	}
	if c.Search.HierarchyFacet == nil {
		h := "work_type"
		c.Search.HierarchyFacet = &h
	}
	if len(c.Search.Ordering) == 0 {
		c.Search.Ordering = []string{"title", "subtitle"}
	}
	if c.Search.Locale == "" {
		c.Search.Locale = "de"
	}
	if c.Pagination.DefaultPageSize <= 0 {
		c.Pagination.DefaultPageSize = 20
	}
	if c.Pagination.MaxPageSize <= 0 {
		c.Pagination.MaxPageSize = 100
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "facetdex:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverBadger:
		if c.Database.Dir == "" && !c.Database.InMemory {
			return fmt.Errorf("database.dir or database.in_memory is required for driver %q", DriverBadger)
		}
	default:
		return fmt.Errorf("database.driver must be redis, valkey or badger, got %q", c.Database.Driver)
	}
	if t := *c.Search.Threshold; t < 0 || t > 1 {
		return fmt.Errorf("search.threshold must be between 0 and 1, got %v", t)
	}
	for i, f := range c.Search.Fields {
		if f.Name == "" {
			return fmt.Errorf("search.fields[%d].name is required", i)
		}
		if f.Preprocessing != "none" && f.Preprocessing != "fold_diacritics" {
			return fmt.Errorf("search.fields[%d].preprocessing must be none or fold_diacritics, got %q",
				i, f.Preprocessing)
		}
	}
	for i, name := range c.Search.Facets {
		if name == "" || slices.Contains(c.Search.Facets[:i], name) {
			return fmt.Errorf("search.facets[%d] is empty or duplicate", i)
		}
	}
	if c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("pagination.default_page_size %d exceeds max_page_size %d",
			c.Pagination.DefaultPageSize, c.Pagination.MaxPageSize)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
