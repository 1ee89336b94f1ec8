package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/logger"
)

// EnvPrefix is prepended to every environment override, e.g. AEWIS_DATABASE_DRIVER.
const EnvPrefix = "AEWIS"

// Loader wraps a viper instance so the running service can react to file changes.
type Loader struct {
	v   *viper.Viper
	log logger.Logger
}

// NewLoader creates a Loader with defaults, config search paths and env binding applied.
// configFile may be empty to search the default locations.
func NewLoader(configFile string, log logger.Logger) *Loader {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/aewis/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, log: log}
}

// Load reads the config file (if any), applies env overrides and validates.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		l.log.Info(context.Background(), "No config file found, using defaults and environment")
	} else {
		l.log.Info(context.Background(), "Loaded config file", logger.String("path", l.v.ConfigFileUsed()))
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// WatchLogLevel re-applies log.level to target whenever the config file changes.
func (l *Loader) WatchLogLevel(target logger.Logger) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := constants.ParseLogLevel(l.v.GetString("log.level"))
		target.SetLevel(level)
		l.log.Info(context.Background(), "Config file changed, log level re-applied",
			logger.String("file", e.Name),
			logger.String("level", logger.LevelName(level)),
		)
	})
	l.v.WatchConfig()
}

// LoadConfig is a convenience wrapper for callers that do not need to watch the file.
func LoadConfig(configFile string, log logger.Logger) (*Config, error) {
	return NewLoader(configFile, log).Load()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.api_prefix", "/api/v1")
	v.SetDefault("server.cors_origins", []string{
		"http://localhost:8501",
		"https://*.streamlit.app",
		"http://localhost:3000",
	})
	v.SetDefault("server.max_upload_bytes", 16<<20)
	v.SetDefault("server.debug", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "./aewis.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "aewis")
	v.SetDefault("database.database", "aewis")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.batch_size", 500)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.events_topic", "aewis.events")
	v.SetDefault("kafka.group_id", "aewis-cache-invalidation")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "50ms")
	v.SetDefault("kafka.write_timeout", "10s")
	v.SetDefault("kafka.required_acks", 1)

	v.SetDefault("cache.report_ttl", constants.DefaultReportCacheTTL.String())
	v.SetDefault("cache.local_ttl", constants.DefaultLocalCacheTTL.String())

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.upload_per_window", 30)
	v.SetDefault("rate_limit.ip_per_window", 0)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("idempotency.enabled", false)
	v.SetDefault("idempotency.ttl", "24h")

	v.SetDefault("scoring.risk_trend_placeholder", constants.DefaultRiskTrend)
	v.SetDefault("scoring.success_bonus", constants.DefaultSuccessBonus)
	v.SetDefault("scoring.classify_workers", 8)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.otlp_endpoint", "localhost:4318")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sampling_rate", 1.0)

	v.SetDefault("monitoring.pprof_enabled", false)
	v.SetDefault("monitoring.slow_operation_threshold", "500ms")
}

//Personal.AI order the ending
