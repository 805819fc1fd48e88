package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "HTTP_ADDR", "METRICS_ADDR",
		"METRICS_AGENT_HOST", "METRICS_AGENT_PORT", "METRICS_PUBLISH",
		"METRICS_PUSH_INTERVAL", "VAULT_ADDR", "VAULT_TOKEN",
		"VAULT_NAMESPACE", "VAULT_SECRETS_MOUNT", "OAUTH_HTTP_TIMEOUT",
		"SHUTDOWN_GRACE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want DATABASE_URL error")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/openelt")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/openelt" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadOptionalDB()
	if err != nil {
		t.Fatalf("LoadOptionalDB() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("MetricsAddr = %q, want %q", cfg.MetricsAddr, ":9090")
	}
	if cfg.MetricsAgentHost != "localhost" || cfg.MetricsAgentPort != "9091" {
		t.Fatalf("metrics agent = %s:%s", cfg.MetricsAgentHost, cfg.MetricsAgentPort)
	}
	if cfg.MetricsPublish {
		t.Fatalf("MetricsPublish = true, want false by default")
	}
	if cfg.MetricsPushInterval != 15*time.Second {
		t.Fatalf("MetricsPushInterval = %v", cfg.MetricsPushInterval)
	}
	if cfg.VaultEnabled() {
		t.Fatalf("VaultEnabled() = true with no Vault env")
	}
	if cfg.OAuthHTTPTimeout != 30*time.Second {
		t.Fatalf("OAuthHTTPTimeout = %v", cfg.OAuthHTTPTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("METRICS_PUBLISH", "true")
	t.Setenv("METRICS_AGENT_HOST", "agent.internal")
	t.Setenv("METRICS_AGENT_PORT", "9125")
	t.Setenv("METRICS_PUSH_INTERVAL", "5s")
	t.Setenv("VAULT_ADDR", "https://vault.example.com")
	t.Setenv("VAULT_TOKEN", "s.test")

	cfg, err := LoadOptionalDB()
	if err != nil {
		t.Fatalf("LoadOptionalDB() error = %v", err)
	}
	if !cfg.MetricsPublish {
		t.Fatalf("MetricsPublish = false, want true")
	}
	if cfg.MetricsAgentHost != "agent.internal" || cfg.MetricsAgentPort != "9125" {
		t.Fatalf("metrics agent = %s:%s", cfg.MetricsAgentHost, cfg.MetricsAgentPort)
	}
	if cfg.MetricsPushInterval != 5*time.Second {
		t.Fatalf("MetricsPushInterval = %v", cfg.MetricsPushInterval)
	}
	if !cfg.VaultEnabled() {
		t.Fatalf("VaultEnabled() = false, want true")
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("METRICS_PUBLISH", "not-a-bool")
	t.Setenv("METRICS_PUSH_INTERVAL", "-3s")

	cfg, err := LoadOptionalDB()
	if err != nil {
		t.Fatalf("LoadOptionalDB() error = %v", err)
	}
	if cfg.MetricsPublish {
		t.Fatalf("MetricsPublish = true for invalid value")
	}
	if cfg.MetricsPushInterval != 15*time.Second {
		t.Fatalf("MetricsPushInterval = %v, want default", cfg.MetricsPushInterval)
	}
}
