// Package config loads the process-wide Config from an optional YAML file
// layered under built-in defaults, then applies a fixed set of environment
// variable overrides, mirroring
// internal/infrastructure/db/connection.go's Config/DefaultConfig pattern
// from the teacher.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evesaga/evesaga/internal/esiclient"
	"github.com/evesaga/evesaga/internal/httpx"
	"github.com/evesaga/evesaga/internal/staticdata"
)

// SagaConfig configures the worker pool shared by the assets and market
// saga engines.
type SagaConfig struct {
	WorkersCount int `yaml:"workers_count" env:"SAGA_WORKERS_COUNT"`
	MaxRetries   int `yaml:"max_retries" env:"SAGA_MAX_RETRIES"`
}

// SnapshotConfig configures internal/snapshot's binary writer and report
// cache.
type SnapshotConfig struct {
	Dir       string        `yaml:"dir" env:"SNAPSHOT_DIR"`
	ReportTTL time.Duration `yaml:"report_ttl" env:"SNAPSHOT_REPORT_TTL"`
	RedisAddr string        `yaml:"redis_addr" env:"REDIS_ADDR"`
}

// ServerConfig configures the sketched report/health HTTP surface.
type ServerConfig struct {
	Addr    string `yaml:"addr" env:"SERVER_ADDR"`
	Enabled bool   `yaml:"enabled" env:"SERVER_ENABLED"`
}

// MetricsConfig configures the Prometheus registry's listen address.
type MetricsConfig struct {
	Addr    string `yaml:"addr" env:"METRICS_ADDR"`
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
}

// Config is the single top-level configuration object, assembled from
// every package's own Config/DefaultConfig the way the teacher's
// db.Manager composes Config with persistence.Repository.
type Config struct {
	ESI        esiclient.Config  `yaml:"esi"`
	HTTP       httpx.Config      `yaml:"http"`
	StaticData staticdata.Config `yaml:"static_data"`
	Saga       SagaConfig        `yaml:"saga"`
	Snapshot   SnapshotConfig    `yaml:"snapshot"`
	Server     ServerConfig      `yaml:"server"`
	Metrics    MetricsConfig     `yaml:"metrics"`
}

// Default returns the built-in defaults, equivalent to the teacher's
// DefaultConfig() but composed from each package's own defaults.
func Default() Config {
	return Config{
		ESI:        esiclient.DefaultConfig(),
		HTTP:       httpx.Config{Timeout: 10 * time.Second, UserAgent: "evesaga/1.0"},
		StaticData: staticdata.DefaultConfig(),
		Saga:       SagaConfig{WorkersCount: 4, MaxRetries: 3},
		Snapshot:   SnapshotConfig{Dir: "./data", ReportTTL: 5 * time.Minute},
		Server:     ServerConfig{Addr: ":8080", Enabled: false},
		Metrics:    MetricsConfig{Addr: ":9090", Enabled: false},
	}
}

// Load builds a Config starting from Default(), overlaying path's YAML
// contents (if path is non-empty and the file exists) and finally applying
// environment variable overrides. It never errors on a missing path — an
// unconfigured process runs entirely on defaults plus environment, the
// same "disabled unless configured" posture the teacher's optional
// external-store configs use.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("unmarshal config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// no file at path, defaults plus env apply
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	envFloat("ESI_COARSE_RATE_PER_SECOND", &cfg.ESI.CoarseRatePerSecond)
	envInt("ESI_COARSE_BURST", &cfg.ESI.CoarseBurst)

	envDuration("HTTP_TIMEOUT", &cfg.HTTP.Timeout)
	envString("HTTP_USER_AGENT", &cfg.HTTP.UserAgent)

	envString("STATICDATA_PATH", &cfg.StaticData.Path)
	envInt("STATICDATA_MAX_OPEN_CONNS", &cfg.StaticData.MaxOpenConns)
	envDuration("STATICDATA_QUERY_TIMEOUT", &cfg.StaticData.QueryTimeout)
	envBool("STATICDATA_ENABLED", &cfg.StaticData.Enabled)

	envInt("SAGA_WORKERS_COUNT", &cfg.Saga.WorkersCount)
	envInt("SAGA_MAX_RETRIES", &cfg.Saga.MaxRetries)

	envString("SNAPSHOT_DIR", &cfg.Snapshot.Dir)
	envDuration("SNAPSHOT_REPORT_TTL", &cfg.Snapshot.ReportTTL)
	envString("REDIS_ADDR", &cfg.Snapshot.RedisAddr)

	envString("SERVER_ADDR", &cfg.Server.Addr)
	envBool("SERVER_ENABLED", &cfg.Server.Enabled)

	envString("METRICS_ADDR", &cfg.Metrics.Addr)
	envBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func envFloat(key string, dst *float64) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
