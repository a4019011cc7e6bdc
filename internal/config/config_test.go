package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Sirene:   SireneConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port must be between 1 and 65535, got 0"},
		{"port too high", func(c *Config) { c.HTTP.Port = 70000 }, "http.port must be between 1 and 65535, got 70000"},
		{"missing addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs is required"},
		{"missing api key", func(c *Config) { c.Sirene.APIKey = "" }, "sirene.api_key is required"},
		{"relative base url", func(c *Config) { c.Sirene.BaseURL = "/siret" },
			`sirene.base_url must be an absolute URL, got "/siret"`},
		{"negative quota", func(c *Config) { c.Sirene.Quota.DailyLimit = -1 }, "sirene.quota limits must not be negative"},
		{"quota action", func(c *Config) { c.Sirene.Quota.Action = "drop" },
			`sirene.quota.action must be "warn" or "reject", got "drop"`},
		{"search limit", func(c *Config) { c.Search.Limit = 500 }, "search.limit must be at most 100, got 500"},
		{"cache ttl", func(c *Config) { c.Storage.SireneCacheTTLSec = -5 },
			"storage.sirene_cache_ttl_sec must be -1, 0 or positive, got -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), tt.want)
			}
		})
	}
}

func TestQuotaConfig_Enabled(t *testing.T) {
	if (QuotaConfig{}).Enabled() {
		t.Error("zero limits should disable the quota")
	}
	if !(QuotaConfig{MonthlyLimit: 30000}).Enabled() {
		t.Error("monthly limit should enable the quota")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Sirene.BaseURL != "https://api.insee.fr/api-sirene/3.11" {
		t.Errorf("unexpected BaseURL %q", cfg.Sirene.BaseURL)
	}
	if cfg.Sirene.TimeoutSec != 10 {
		t.Errorf("expected TimeoutSec=10, got %d", cfg.Sirene.TimeoutSec)
	}
	if cfg.Search.Limit != 10 {
		t.Errorf("expected Limit=10, got %d", cfg.Search.Limit)
	}
	if cfg.Storage.SireneCacheTTLSec != 86400 || !cfg.Storage.CacheEnabled() {
		t.Errorf("expected one day cache, got %d", cfg.Storage.SireneCacheTTLSec)
	}
}

func TestApplyDefaults_CacheDisabledKept(t *testing.T) {
	cfg := Config{Storage: StorageConfig{SireneCacheTTLSec: -1}}
	cfg.ApplyDefaults()
	if cfg.Storage.SireneCacheTTLSec != -1 || cfg.Storage.CacheEnabled() {
		t.Errorf("expected cache disabled, got %d", cfg.Storage.SireneCacheTTLSec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("AGRICARTE_TEST_KEY", "from-env")

	in := "a: ${AGRICARTE_TEST_KEY}\nb: ${AGRICARTE_TEST_UNSET:-fallback}\nc: ${AGRICARTE_TEST_UNSET}\n"
	want := "a: from-env\nb: fallback\nc: \n"
	if got := string(expandEnvVars([]byte(in))); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `http:
  port: ${AGRICARTE_TEST_PORT:-9090}
database:
  addrs: ["redis:6379"]
sirene:
  api_key: ${AGRICARTE_TEST_SIRENE_KEY}
auth:
  api_keys: ["k1"]
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AGRICARTE_TEST_SIRENE_KEY", "insee")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Port != 9090 || cfg.Sirene.APIKey != "insee" || cfg.Database.Addrs[0] != "redis:6379" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Search.Limit != 10 {
		t.Errorf("defaults or auth not applied: %+v", cfg)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}
