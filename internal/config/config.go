package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cache drivers.
const (
	CacheNone   = "none"
	CacheRedis  = "redis"
	CacheValkey = "valkey"
)

// Neighbor fetch modes.
const (
	FetchRepresentative = "representative"
	FetchNeighbor       = "neighbor"
)

// Config holds the hammersynth configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Sample     SampleConfig     `yaml:"sample"`
	Repository RepositoryConfig `yaml:"repository"`
	Cache      CacheConfig      `yaml:"cache"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Neighbors  NeighborsConfig  `yaml:"neighbors"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// SampleConfig holds the sample budget defaults.
type SampleConfig struct {
	MaxGenomes     int     `yaml:"max_genomes"`
	ContigFraction float64 `yaml:"contig_fraction"`
	MinGenomes     int     `yaml:"min_genomes"`
	Seed           uint64  `yaml:"seed"` // 0 = random
}

// RepositoryConfig holds the remote genome repository settings.
type RepositoryConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
	PageSize   int    `yaml:"page_size"`
}

// CacheConfig holds the genome fetch cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, redis, valkey (default: none)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLHours         int      `yaml:"ttl_hours"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache store is configured.
func (c CacheConfig) Enabled() bool { return c.Driver != CacheNone }

// MetricsConfig holds the optional metrics server settings.
type MetricsConfig struct {
	Addr    string   `yaml:"addr"` // empty = disabled
	APIKeys []string `yaml:"api_keys"`
}

// NeighborsConfig holds neighbor-table sampling settings.
type NeighborsConfig struct {
	Fetch string `yaml:"fetch"`
}

// Load reads configuration by environment name (local, dev, prod).
// A missing file yields the defaults.
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)
	if !fileExists(configPath) {
		var cfg Config
		cfg.ApplyDefaults()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from a YAML file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	if c.Sample.MaxGenomes <= 0 {
		c.Sample.MaxGenomes = 1000
	}
	if c.Sample.ContigFraction == 0 {
		c.Sample.ContigFraction = 1.0
	}
	if c.Sample.MinGenomes <= 0 {
		c.Sample.MinGenomes = 100
	}
	if c.Repository.BaseURL == "" {
		c.Repository.BaseURL = "https://www.bv-brc.org/api"
	}
	if c.Repository.TimeoutSec <= 0 {
		c.Repository.TimeoutSec = 60
	}
	if c.Repository.PageSize <= 0 {
		c.Repository.PageSize = 25000
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheNone
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 7 * 24
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Neighbors.Fetch == "" {
		c.Neighbors.Fetch = FetchRepresentative
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Sample.ContigFraction <= 0 || c.Sample.ContigFraction > 1 {
		return fmt.Errorf("sample.contig_fraction must be in (0,1], got %v", c.Sample.ContigFraction)
	}
	switch c.Cache.Driver {
	case CacheNone:
	case CacheRedis, CacheValkey:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be %q, %q or %q, got %q",
			CacheNone, CacheRedis, CacheValkey, c.Cache.Driver)
	}
	switch c.Neighbors.Fetch {
	case FetchRepresentative, FetchNeighbor:
	default:
		return fmt.Errorf("neighbors.fetch must be %q or %q, got %q",
			FetchRepresentative, FetchNeighbor, c.Neighbors.Fetch)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
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
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
