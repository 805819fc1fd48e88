package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultMetricsAddr = ":9090"

	defaultMetricsAgentHost  = "localhost"
	defaultMetricsAgentPort  = "9091"
	defaultMetricsPushEvery  = 15 * time.Second
	defaultVaultSecretsMount = "secret"
	defaultOAuthHTTPTimeout  = 30 * time.Second
	defaultShutdownGrace     = 10 * time.Second
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string

	MetricsAddr         string
	MetricsAgentHost    string
	MetricsAgentPort    string
	MetricsPublish      bool
	MetricsPushInterval time.Duration

	VaultAddr         string
	VaultToken        string
	VaultNamespace    string
	VaultSecretsMount string

	OAuthHTTPTimeout time.Duration
	ShutdownGrace    time.Duration
}

type LoadOptions struct {
	RequireDatabaseURL bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: true})
}

func LoadOptionalDB() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: false})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		HTTPAddr:            getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:         getenvDefault("METRICS_ADDR", defaultMetricsAddr),
		MetricsAgentHost:    getenvDefault("METRICS_AGENT_HOST", defaultMetricsAgentHost),
		MetricsAgentPort:    getenvDefault("METRICS_AGENT_PORT", defaultMetricsAgentPort),
		MetricsPublish:      getenvBoolDefault("METRICS_PUBLISH", false),
		MetricsPushInterval: getenvDurationDefault("METRICS_PUSH_INTERVAL", defaultMetricsPushEvery),
		VaultAddr:           strings.TrimSpace(os.Getenv("VAULT_ADDR")),
		VaultToken:          strings.TrimSpace(os.Getenv("VAULT_TOKEN")),
		VaultNamespace:      strings.TrimSpace(os.Getenv("VAULT_NAMESPACE")),
		VaultSecretsMount:   getenvDefault("VAULT_SECRETS_MOUNT", defaultVaultSecretsMount),
		OAuthHTTPTimeout:    getenvDurationDefault("OAUTH_HTTP_TIMEOUT", defaultOAuthHTTPTimeout),
		ShutdownGrace:       getenvDurationDefault("SHUTDOWN_GRACE", defaultShutdownGrace),
	}

	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

// VaultEnabled reports whether the optional Vault secrets backend is configured.
func (c Config) VaultEnabled() bool {
	return c.VaultAddr != "" && c.VaultToken != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
