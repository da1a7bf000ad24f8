package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Platform  PlatformSettings  `mapstructure:"platform"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Auth      AuthSettings      `mapstructure:"auth"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// PlatformSettings identifies the shared root domain tenant subdomains hang off.
type PlatformSettings struct {
	RootDomain string `mapstructure:"root_domain"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	AcquireTimeout    time.Duration `mapstructure:"acquire_timeout"`
}

// RedisSettings configures the Redis connection backing distributed rate limits.
type RedisSettings struct {
	Enabled         bool   `mapstructure:"enabled"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	DB              int    `mapstructure:"db"`
	Password        string `mapstructure:"password"`
	TLSEnabled      bool   `mapstructure:"tls_enabled"`
	RateLimitPrefix string `mapstructure:"rate_limit_prefix"`
}

// KafkaSettings configures the tenant lifecycle event producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// AuthSettings configures session token verification.
type AuthSettings struct {
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// ScopeLimitSettings overrides one scope's fixed-window budget.
type ScopeLimitSettings struct {
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int           `mapstructure:"max_requests"`
}

// RateLimitSettings configures per-scope admission budgets.
type RateLimitSettings struct {
	Storefront   ScopeLimitSettings `mapstructure:"storefront"`
	Dashboard    ScopeLimitSettings `mapstructure:"dashboard"`
	Checkout     ScopeLimitSettings `mapstructure:"checkout"`
	Cart         ScopeLimitSettings `mapstructure:"cart"`
	VisualEditor ScopeLimitSettings `mapstructure:"visual_editor"`
	Auth         ScopeLimitSettings `mapstructure:"auth"`
}

// ScopeConfigs converts configured overrides into the domain representation,
// leaving defaults in place for scopes with no override.
func (s RateLimitSettings) ScopeConfigs() map[domain.RateLimitScope]domain.RateLimitConfig {
	configs := make(map[domain.RateLimitScope]domain.RateLimitConfig)

	add := func(scope domain.RateLimitScope, settings ScopeLimitSettings) {
		if settings.Window > 0 && settings.MaxRequests > 0 {
			configs[scope] = domain.RateLimitConfig{
				Window:      settings.Window,
				MaxRequests: settings.MaxRequests,
			}
		}
	}

	add(domain.ScopeStorefront, s.Storefront)
	add(domain.ScopeDashboard, s.Dashboard)
	add(domain.ScopeCheckout, s.Checkout)
	add(domain.ScopeCart, s.Cart)
	add(domain.ScopeVisualEditor, s.VisualEditor)
	add(domain.ScopeAuth, s.Auth)

	return configs
}

// Load reads configuration from config.yaml and INDIGO_* environment overrides.
func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("INDIGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Platform.RootDomain == "" {
		return nil, fmt.Errorf("platform.root_domain is required")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "indigo-platform")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("platform.root_domain", "indigo.com")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "indigo")
	v.SetDefault("postgres.database", "indigo")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.acquire_timeout", "5s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.rate_limit_prefix", "indigo")

	v.SetDefault("auth.session_ttl", "24h")

	v.SetDefault("telemetry.service_name", "indigo-platform")
	v.SetDefault("telemetry.sampling_rate", 0.1)
}
