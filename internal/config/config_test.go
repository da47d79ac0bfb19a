package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Sample.MaxGenomes != 1000 {
		t.Errorf("expected max_genomes 1000, got %d", cfg.Sample.MaxGenomes)
	}
	if cfg.Sample.ContigFraction != 1.0 {
		t.Errorf("expected contig_fraction 1.0, got %v", cfg.Sample.ContigFraction)
	}
	if cfg.Sample.MinGenomes != 100 {
		t.Errorf("expected min_genomes 100, got %d", cfg.Sample.MinGenomes)
	}
	if cfg.Repository.BaseURL != "https://www.bv-brc.org/api" {
		t.Errorf("unexpected base_url %q", cfg.Repository.BaseURL)
	}
	if cfg.Repository.TimeoutSec != 60 || cfg.Repository.PageSize != 25000 {
		t.Errorf("unexpected repository defaults %+v", cfg.Repository)
	}
	if cfg.Cache.Driver != CacheNone || cfg.Cache.Enabled() {
		t.Errorf("cache should default to disabled, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.TTLHours != 168 {
		t.Errorf("expected ttl_hours 168, got %d", cfg.Cache.TTLHours)
	}
	if cfg.Neighbors.Fetch != FetchRepresentative {
		t.Errorf("expected fetch %q, got %q", FetchRepresentative, cfg.Neighbors.Fetch)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Sample:     SampleConfig{MaxGenomes: 50, ContigFraction: 0.25, MinGenomes: 3, Seed: 7},
		Repository: RepositoryConfig{BaseURL: "http://localhost:9000", TimeoutSec: 5, PageSize: 100},
		Cache:      CacheConfig{Driver: CacheRedis, Addrs: []string{"localhost:6379"}, TTLHours: 1},
		Neighbors:  NeighborsConfig{Fetch: FetchNeighbor},
	}
	cfg.ApplyDefaults()

	if cfg.Sample.MaxGenomes != 50 || cfg.Sample.ContigFraction != 0.25 || cfg.Sample.MinGenomes != 3 {
		t.Errorf("sample values overridden: %+v", cfg.Sample)
	}
	if cfg.Repository.BaseURL != "http://localhost:9000" || cfg.Repository.PageSize != 100 {
		t.Errorf("repository values overridden: %+v", cfg.Repository)
	}
	if cfg.Cache.Driver != CacheRedis || cfg.Cache.TTLHours != 1 {
		t.Errorf("cache values overridden: %+v", cfg.Cache)
	}
	if cfg.Neighbors.Fetch != FetchNeighbor {
		t.Errorf("fetch overridden: %q", cfg.Neighbors.Fetch)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"fraction above one", func(c *Config) { c.Sample.ContigFraction = 1.5 }, "sample.contig_fraction"},
		{"negative fraction", func(c *Config) { c.Sample.ContigFraction = -0.1 }, "sample.contig_fraction"},
		{"unknown driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
		{"redis without addrs", func(c *Config) { c.Cache.Driver = CacheRedis }, "cache.addrs"},
		{"valkey without addrs", func(c *Config) { c.Cache.Driver = CacheValkey }, "cache.addrs"},
		{"unknown fetch", func(c *Config) { c.Neighbors.Fetch = "both" }, "neighbors.fetch"},
		{"valid redis", func(c *Config) {
			c.Cache.Driver = CacheRedis
			c.Cache.Addrs = []string{"localhost:6379"}
		}, ""},
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
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("HAMMERSYNTH_TEST_CACHE", "cache.example:6379")
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
logging:
  level: debug
sample:
  max_genomes: 25
  contig_fraction: 0.5
cache:
  driver: valkey
  addrs: ["${HAMMERSYNTH_TEST_CACHE}"]
  password: "${HAMMERSYNTH_TEST_UNSET:-fallback}"
metrics:
  addr: ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected level %q", cfg.Logging.Level)
	}
	if cfg.Sample.MaxGenomes != 25 || cfg.Sample.ContigFraction != 0.5 {
		t.Errorf("unexpected sample %+v", cfg.Sample)
	}
	if len(cfg.Cache.Addrs) != 1 || cfg.Cache.Addrs[0] != "cache.example:6379" {
		t.Errorf("env not expanded: %v", cfg.Cache.Addrs)
	}
	if cfg.Cache.Password != "fallback" {
		t.Errorf("default not applied: %q", cfg.Cache.Password)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("unexpected metrics addr %q", cfg.Metrics.Addr)
	}
	if cfg.Sample.MinGenomes != 100 {
		t.Errorf("defaults not applied after load")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  driver: redis\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestLoad_MissingEnvFileUsesDefaults(t *testing.T) {
	cfg, err := Load("no-such-environment")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sample.MaxGenomes != 1000 {
		t.Errorf("expected defaults, got %+v", cfg.Sample)
	}
}
