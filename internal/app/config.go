package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/charlesng35/collegehub/internal/database"
	"github.com/charlesng35/collegehub/internal/models"
)

// Config represents the runtime configuration for the college backend.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Realtime      RealtimeConfig      `mapstructure:"realtime"`
	Monitoring    MonitoringConfig    `mapstructure:"monitoring"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AuthConfig captures authentication settings.
type AuthConfig struct {
	JWT          JWTSettings        `mapstructure:"jwt"`
	DefaultAdmin DefaultAdminConfig `mapstructure:"default_admin"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// DefaultAdminConfig seeds the first admin account when none exists.
type DefaultAdminConfig struct {
	Email     string `mapstructure:"email"`
	Password  string `mapstructure:"password"`
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
}

// NotificationsConfig tunes the dashboard widget and read-notice retention.
type NotificationsConfig struct {
	WidgetLimit     int    `mapstructure:"widget_limit"`
	RetentionDays   int    `mapstructure:"retention_days"`
	CleanupSchedule string `mapstructure:"cleanup_schedule"`
	SystemEmail     string `mapstructure:"system_email"`
}

// RealtimeConfig configures push delivery of notifications.
type RealtimeConfig struct {
	Redis RedisRelayConfig `mapstructure:"redis"`
}

// RedisRelayConfig holds Redis connection options for the cross-instance relay.
type RedisRelayConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Channel  string        `mapstructure:"channel"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MonitoringConfig enables metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// RateLimitConfig bounds request rates per client address.
// Store selects where counters live when Redis is not configured: "memory" or "database".
type RateLimitConfig struct {
	Store         string        `mapstructure:"store"`
	LoginRequests int           `mapstructure:"login_requests"`
	LoginWindow   time.Duration `mapstructure:"login_window"`
	APIRequests   int           `mapstructure:"api_requests"`
	APIWindow     time.Duration `mapstructure:"api_window"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("COLLEGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.Notifications.WidgetLimit <= 0 {
		return fmt.Errorf("config: notifications.widget_limit must be positive, got %d", c.Notifications.WidgetLimit)
	}
	if c.Notifications.RetentionDays < 0 {
		return fmt.Errorf("config: notifications.retention_days must not be negative, got %d", c.Notifications.RetentionDays)
	}
	if strings.TrimSpace(c.Notifications.SystemEmail) == "" {
		return errors.New("config: notifications.system_email is required")
	}
	if c.Realtime.Redis.Enabled && strings.TrimSpace(c.Realtime.Redis.Address) == "" {
		return errors.New("config: realtime.redis.address is required when the relay is enabled")
	}
	switch strings.ToLower(strings.TrimSpace(c.RateLimit.Store)) {
	case "", "memory", "database":
	default:
		return fmt.Errorf("config: rate_limit.store %q is not supported", c.RateLimit.Store)
	}
	return nil
}

// DatabaseOptions converts the database section into connection options for database.Open.
func (c *Config) DatabaseOptions() database.Config {
	db := c.Database
	out := database.Config{
		Driver: db.Driver,
		Path:   db.Path,
		DSN:    db.DSN,
	}

	var host DBAuthConfig
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case "postgres", "postgresql":
		host = db.Postgres
	case "mysql":
		host = db.MySQL
	default:
		return out
	}
	out.Host = host.Host
	out.Port = host.Port
	out.Name = host.Database
	out.User = host.Username
	out.Password = host.Password
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/college.sqlite")

	v.SetDefault("auth.jwt.issuer", "collegehub")
	v.SetDefault("auth.jwt.access_token_ttl", "8h")
	v.SetDefault("auth.default_admin.email", "admin@college.local")
	v.SetDefault("auth.default_admin.first_name", "College")
	v.SetDefault("auth.default_admin.last_name", "Admin")

	v.SetDefault("notifications.widget_limit", 10)
	v.SetDefault("notifications.retention_days", 180)
	v.SetDefault("notifications.cleanup_schedule", "@daily")
	v.SetDefault("notifications.system_email", models.SystemAccountEmail)

	v.SetDefault("realtime.redis.enabled", false)
	v.SetDefault("realtime.redis.address", "127.0.0.1:6379")
	v.SetDefault("realtime.redis.db", 0)
	v.SetDefault("realtime.redis.channel", "collegehub:notifications")
	v.SetDefault("realtime.redis.timeout", "5s")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")

	v.SetDefault("rate_limit.store", "memory")
	v.SetDefault("rate_limit.login_requests", 10)
	v.SetDefault("rate_limit.login_window", "1m")
	v.SetDefault("rate_limit.api_requests", 300)
	v.SetDefault("rate_limit.api_window", "1m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
