package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the Strata backend. Which storage
// backend and remote client get activated is driven purely by which of
// these values are present.
type Config struct {
	Port      int
	Version   string
	Remote    RemoteConfig
	Postgres  PostgresConfig
	Lakebase  LakebaseConfig
	Warehouse WarehouseConfig
	Telemetry TelemetryConfig
}

// RemoteConfig configures the Databricks serving-endpoints client.
type RemoteConfig struct {
	Host         string
	Token        string
	ClientID     string
	ClientSecret string
}

// Configured reports whether the remote client can authenticate: a host
// plus either a static token or OAuth client credentials.
func (c RemoteConfig) Configured() bool {
	if c.Host == "" {
		return false
	}
	return c.Token != "" || (c.ClientID != "" && c.ClientSecret != "")
}

// PostgresConfig holds the standard PG* connection variables.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// LakebaseConfig configures the managed-Postgres-with-OAuth backend.
// User defaults to the OAuth client id when PGUSER is unset.
type LakebaseConfig struct {
	Host         string
	Port         int
	Database     string
	User         string
	InstanceName string
	ClientID     string
	ClientSecret string
}

// WarehouseConfig configures the Databricks SQL warehouse backend.
type WarehouseConfig struct {
	Hostname string
	HTTPPath string
	Catalog  string
	Schema   string
	Token    string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible
// defaults. Presence or absence of the credential variables, not their
// values, decides backend selection.
func Load() *Config {
	host := normalizeHost(envStr("DATABRICKS_HOST", ""))
	clientID := envStr("DATABRICKS_CLIENT_ID", "")
	return &Config{
		Port:    envInt("PORT", 8000),
		Version: envStr("STRATA_VERSION", "1.2.0"),
		Remote: RemoteConfig{
			Host:         host,
			Token:        envStr("DATABRICKS_TOKEN", ""),
			ClientID:     clientID,
			ClientSecret: envStr("DATABRICKS_CLIENT_SECRET", ""),
		},
		Postgres: PostgresConfig{
			Host:     envStr("PGHOST", ""),
			Port:     envInt("PGPORT", 5432),
			Database: envStr("PGDATABASE", ""),
			User:     envStr("PGUSER", ""),
			Password: envStr("PGPASSWORD", ""),
			SSLMode:  envStr("PGSSLMODE", "require"),
		},
		Lakebase: LakebaseConfig{
			Host:         envStr("PGHOST", ""),
			Port:         envInt("PGPORT", 5432),
			Database:     envStr("PGDATABASE", ""),
			User:         envStr("PGUSER", clientID),
			InstanceName: envStr("LAKEBASE_INSTANCE_NAME", ""),
			ClientID:     clientID,
			ClientSecret: envStr("DATABRICKS_CLIENT_SECRET", ""),
		},
		Warehouse: WarehouseConfig{
			Hostname: stripScheme(envStr("DATABRICKS_SERVER_HOSTNAME", envStr("DATABRICKS_HOST", ""))),
			HTTPPath: envStr("DATABRICKS_HTTP_PATH", ""),
			Catalog:  envStr("DATABRICKS_CATALOG", "main"),
			Schema:   envStr("DATABRICKS_SCHEMA", "anglo_strata"),
			Token:    envStr("DATABRICKS_TOKEN", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "strata-backend"),
		},
	}
}

// normalizeHost trims a trailing slash and forces an https:// prefix so
// callers can join paths directly.
func normalizeHost(host string) string {
	host = strings.TrimRight(host, "/")
	if host != "" && !strings.HasPrefix(host, "http") {
		host = "https://" + host
	}
	return host
}

// stripScheme removes a leading http:// or https:// since the warehouse
// driver wants a bare hostname.
func stripScheme(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
