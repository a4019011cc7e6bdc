package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the agricarte API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Sirene   SireneConfig   `yaml:"sirene"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SireneConfig holds INSEE SIRENE API settings.
type SireneConfig struct {
	BaseURL    string      `yaml:"base_url"`
	APIKey     string      `yaml:"api_key"`
	TimeoutSec int         `yaml:"timeout_sec"`
	Quota      QuotaConfig `yaml:"quota"`
}

// QuotaConfig caps outgoing SIRENE requests.
type QuotaConfig struct {
	DailyLimit   int64  `yaml:"daily_limit"`   // 0 = unlimited
	MonthlyLimit int64  `yaml:"monthly_limit"` // 0 = unlimited
	Action       string `yaml:"action"`        // "reject" | "warn" (default)
}

// Enabled reports whether a limit is configured.
func (q QuotaConfig) Enabled() bool { return q.DailyLimit > 0 || q.MonthlyLimit > 0 }

// SearchConfig holds person autocomplete settings.
type SearchConfig struct {
	Limit int `yaml:"limit"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	SireneCacheTTLSec int `yaml:"sirene_cache_ttl_sec"` // 0 = default, -1 = cache disabled
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Sirene.BaseURL == "" {
		c.Sirene.BaseURL = "https://api.insee.fr/api-sirene/3.11"
	}
	if c.Sirene.TimeoutSec <= 0 {
		c.Sirene.TimeoutSec = 10
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = 10
	}
	if c.Storage.SireneCacheTTLSec == 0 {
		c.Storage.SireneCacheTTLSec = 86400
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Sirene.APIKey == "" {
		return fmt.Errorf("sirene.api_key is required")
	}
	if u, err := url.Parse(c.Sirene.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("sirene.base_url must be an absolute URL, got %q", c.Sirene.BaseURL)
	}
	if c.Sirene.Quota.DailyLimit < 0 || c.Sirene.Quota.MonthlyLimit < 0 {
		return fmt.Errorf("sirene.quota limits must not be negative")
	}
	switch c.Sirene.Quota.Action {
	case "", "warn", "reject":
	default:
		return fmt.Errorf("sirene.quota.action must be \"warn\" or \"reject\", got %q", c.Sirene.Quota.Action)
	}
	if c.Search.Limit > 100 {
		return fmt.Errorf("search.limit must be at most 100, got %d", c.Search.Limit)
	}
	if c.Storage.SireneCacheTTLSec < -1 {
		return fmt.Errorf("storage.sirene_cache_ttl_sec must be -1, 0 or positive, got %d", c.Storage.SireneCacheTTLSec)
	}
	return nil
}

// CacheEnabled reports whether SIRENE responses are cached.
func (s StorageConfig) CacheEnabled() bool { return s.SireneCacheTTLSec > 0 }

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
