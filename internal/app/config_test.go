package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/collegehub/internal/models"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "college-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.Equal(t, 15, cfg.Notifications.WidgetLimit)
	require.Equal(t, 90, cfg.Notifications.RetentionDays)
	require.Equal(t, "0 3 * * *", cfg.Notifications.CleanupSchedule)
	require.Equal(t, models.SystemAccountEmail, cfg.Notifications.SystemEmail)

	require.True(t, cfg.Realtime.Redis.Enabled)
	require.Equal(t, "redis.example.com:6380", cfg.Realtime.Redis.Address)
	require.Equal(t, "college:test", cfg.Realtime.Redis.Channel)
	require.Equal(t, 5*time.Second, cfg.Realtime.Redis.Timeout)

	require.Equal(t, "database", cfg.RateLimit.Store)
	require.Equal(t, 3, cfg.RateLimit.LoginRequests)
	require.Equal(t, 30*time.Second, cfg.RateLimit.LoginWindow)
	require.Equal(t, 300, cfg.RateLimit.APIRequests)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 10, cfg.Notifications.WidgetLimit)
	require.Equal(t, 180, cfg.Notifications.RetentionDays)
	require.Equal(t, "@daily", cfg.Notifications.CleanupSchedule)
	require.False(t, cfg.Realtime.Redis.Enabled)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, 8*time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, "memory", cfg.RateLimit.Store)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("COLLEGE_NOTIFICATIONS_WIDGET_LIMIT", "25")
	t.Setenv("COLLEGE_SERVER_PORT", "7070")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Notifications.WidgetLimit)
	require.Equal(t, 7070, cfg.Server.Port)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	base := func() Config {
		return Config{Notifications: NotificationsConfig{
			WidgetLimit:   10,
			RetentionDays: 180,
			SystemEmail:   models.SystemAccountEmail,
		}}
	}

	cfg := base()
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Notifications.WidgetLimit = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Notifications.RetentionDays = -1
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Notifications.SystemEmail = " "
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Realtime.Redis.Enabled = true
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.RateLimit.Store = "memcached"
	require.Error(t, cfg.Validate())
}

func TestDatabaseOptions(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{
		Driver: "mysql",
		MySQL: DBAuthConfig{
			Host:     "mysql.internal",
			Port:     3307,
			Database: "college",
			Username: "registrar",
			Password: "pw",
		},
		Postgres: DBAuthConfig{Host: "ignored"},
	}}

	opts := cfg.DatabaseOptions()
	require.Equal(t, "mysql", opts.Driver)
	require.Equal(t, "mysql.internal", opts.Host)
	require.Equal(t, 3307, opts.Port)
	require.Equal(t, "college", opts.Name)
	require.Equal(t, "registrar", opts.User)

	cfg.Database = DatabaseConfig{Driver: "sqlite", Path: "./data/x.sqlite"}
	opts = cfg.DatabaseOptions()
	require.Equal(t, "./data/x.sqlite", opts.Path)
	require.Empty(t, opts.Host)
}

func TestApplyRuntimeDefaults(t *testing.T) {
	cfg := &Config{}
	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Auth.JWT.Secret)
	require.NotEmpty(t, cfg.Auth.DefaultAdmin.Password)
	require.Contains(t, generated, "auth.jwt.secret")
	require.Empty(t, generated["auth.jwt.secret"])
	require.Equal(t, cfg.Auth.DefaultAdmin.Password, generated["auth.default_admin.password"])

	cfg = &Config{Auth: AuthConfig{
		JWT:          JWTSettings{Secret: "kept"},
		DefaultAdmin: DefaultAdminConfig{Password: "kept-too"},
	}}
	generated, err = ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.Empty(t, generated)
	require.Equal(t, "kept", cfg.Auth.JWT.Secret)

	_, err = ApplyRuntimeDefaults(nil)
	require.Error(t, err)
}
