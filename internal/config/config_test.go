package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Database.Driver != DriverValkey {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if *cfg.Search.Threshold != 0.4 {
		t.Errorf("threshold = %v", *cfg.Search.Threshold)
	}
	if len(cfg.Search.Fields) != 2 || cfg.Search.Fields[0].Name != "title" {
		t.Errorf("fields = %+v", cfg.Search.Fields)
	}
	if *cfg.Search.HierarchyFacet != "work_type" {
		t.Errorf("hierarchy facet = %q", *cfg.Search.HierarchyFacet)
	}
	if cfg.Pagination.DefaultPageSize != 20 || cfg.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination = %+v", cfg.Pagination)
	}
	if cfg.Storage.KeyPrefix != "facetdex:" {
		t.Errorf("key prefix = %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0.0
	off := ""
	cfg := Config{
		Database: DatabaseConfig{Driver: DriverBadger},
		Search: SearchConfig{
			Threshold:      &zero,
			Fields:         []SearchFieldConfig{{Name: "name"}},
			Facets:         []string{},
			HierarchyFacet: &off,
		},
		Pagination: PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50},
	}
	cfg.ApplyDefaults()

	if *cfg.Search.Threshold != 0 {
		t.Errorf("explicit zero threshold overridden: %v", *cfg.Search.Threshold)
	}
	if cfg.Search.Fields[0].Preprocessing != "none" {
		t.Errorf("preprocessing = %q", cfg.Search.Fields[0].Preprocessing)
	}
	if len(cfg.Search.Facets) != 0 {
		t.Errorf("explicit empty facets overridden: %v", cfg.Search.Facets)
	}
	if *cfg.Search.HierarchyFacet != "" {
		t.Errorf("disabled hierarchy facet overridden: %q", *cfg.Search.HierarchyFacet)
	}
	if cfg.Pagination.DefaultPageSize != 10 || cfg.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination = %+v", cfg.Pagination)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"redis without addrs", func(c *Config) {
			c.Database.Driver = DriverRedis
			c.Database.Addrs = nil
		}, "database.addrs"},
		{"badger without dir", func(c *Config) { c.Database.Driver = DriverBadger }, "database.dir"},
		{"badger in memory", func(c *Config) {
			c.Database.Driver = DriverBadger
			c.Database.InMemory = true
		}, ""},
		{"threshold", func(c *Config) {
			t := 1.5
			c.Search.Threshold = &t
		}, "search.threshold"},
		{"field name", func(c *Config) {
			c.Search.Fields = []SearchFieldConfig{{Preprocessing: "none"}}
		}, "search.fields[0].name"},
		{"preprocessing", func(c *Config) {
			c.Search.Fields = []SearchFieldConfig{{Name: "title", Preprocessing: "stem"}}
		}, "preprocessing"},
		{"duplicate facet", func(c *Config) { c.Search.Facets = []string{"language", "language"} }, "search.facets[1]"},
		{"page sizes", func(c *Config) { c.Pagination.DefaultPageSize = 200 }, "pagination"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("FACETDEX_TEST_PORT", "9090")
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := `
http:
  port: ${FACETDEX_TEST_PORT}
database:
  driver: badger
  dir: ${FACETDEX_TEST_DIR:-/tmp/facetdex}
search:
  threshold: 0.3
  facets: [language]
  hierarchy_facet: ""
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Database.Dir != "/tmp/facetdex" {
		t.Errorf("dir = %q", cfg.Database.Dir)
	}
	if *cfg.Search.Threshold != 0.3 {
		t.Errorf("threshold = %v", *cfg.Search.Threshold)
	}
	if *cfg.Search.HierarchyFacet != "" {
		t.Errorf("hierarchy facet = %q", *cfg.Search.HierarchyFacet)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected read error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("http: [1"), 0o600)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	_ = os.WriteFile(invalid, []byte("http:\n  port: 0\n"), 0o600)
	if _, err := LoadFile(invalid); err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.Database.Driver == "" || len(cfg.Search.Fields) == 0 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q", got)
	}
}
