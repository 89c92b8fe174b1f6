package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/api"
	"github.com/charlesng35/collegehub/internal/app"
	"github.com/charlesng35/collegehub/internal/app/maintenance"
	iauth "github.com/charlesng35/collegehub/internal/auth"
	"github.com/charlesng35/collegehub/internal/cache"
	"github.com/charlesng35/collegehub/internal/database"
	"github.com/charlesng35/collegehub/internal/events"
	"github.com/charlesng35/collegehub/internal/middleware"
	"github.com/charlesng35/collegehub/internal/monitoring"
	"github.com/charlesng35/collegehub/internal/monitoring/checks"
	"github.com/charlesng35/collegehub/internal/realtime"
	"github.com/charlesng35/collegehub/internal/services"
	"github.com/charlesng35/collegehub/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Hub           *realtime.Hub
	Relay         *realtime.RedisRelay
	Dispatcher    *events.Dispatcher
	Directory     *services.AccountDirectory
	Notifications *services.NotificationService
	Cleaner       *maintenance.Cleaner
	RateStore     middleware.RateStore
	Health        *monitoring.HealthManager
	Router        *gin.Engine

	stopRelay context.CancelFunc
	relayDone sync.WaitGroup
}

// bootstrapRuntime initialises the database, realtime delivery, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			_ = stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Directory, err = services.NewAccountDirectory(stack.DB, cfg.Notifications.SystemEmail)
	if err != nil {
		return nil, fmt.Errorf("initialise account directory: %w", err)
	}
	if _, err := stack.Directory.SystemAccountID(ctx); err != nil {
		// Broadcasts degrade to no-ops until the sentinel resolves; domain writes still succeed.
		log.Warn("system account unavailable", zap.Error(err))
	}

	created, err := stack.Directory.EnsureAdmin(ctx, services.CreateAccountInput{
		Email:     cfg.Auth.DefaultAdmin.Email,
		Password:  cfg.Auth.DefaultAdmin.Password,
		FirstName: cfg.Auth.DefaultAdmin.FirstName,
		LastName:  cfg.Auth.DefaultAdmin.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure default admin: %w", err)
	}
	if created {
		log.Info("default admin created", zap.String("email", cfg.Auth.DefaultAdmin.Email))
	}

	stack.Hub = realtime.NewHub()
	var publisher services.NotificationPublisher = stack.Hub

	if cfg.Realtime.Redis.Enabled {
		client, redisErr := connectRedis(ctx, cfg.Realtime.Redis)
		if redisErr != nil {
			log.Warn("redis unavailable; realtime delivery and rate limits stay local", zap.Error(redisErr))
		} else {
			stack.Redis = client
			log.Info("redis connected", zap.String("addr", cfg.Realtime.Redis.Address))

			stack.Relay, err = realtime.NewRedisRelay(client, cfg.Realtime.Redis.Channel, stack.Hub)
			if err != nil {
				return nil, fmt.Errorf("initialise realtime relay: %w", err)
			}
			publisher = stack.Relay
			stack.startRelay(log)
		}
	}

	stack.Notifications, err = services.NewNotificationService(stack.DB, stack.Directory, publisher)
	if err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}

	stack.Dispatcher = events.NewDispatcher()
	if err := services.RegisterNotificationBindings(stack.Dispatcher, stack.DB, stack.Notifications, stack.Directory); err != nil {
		return nil, fmt.Errorf("register notification bindings: %w", err)
	}

	svc := api.Services{
		Directory:     stack.Directory,
		Notifications: stack.Notifications,
		Hub:           stack.Hub,
	}
	if svc.Leaves, err = services.NewLeaveService(stack.DB, stack.Dispatcher); err != nil {
		return nil, err
	}
	if svc.Feedback, err = services.NewFeedbackService(stack.DB, stack.Dispatcher); err != nil {
		return nil, err
	}
	if svc.Results, err = services.NewResultService(stack.DB, stack.Dispatcher); err != nil {
		return nil, err
	}
	if svc.Holidays, err = services.NewHolidayService(stack.DB, stack.Dispatcher); err != nil {
		return nil, err
	}
	if svc.Announcements, err = services.NewAnnouncementService(stack.DB, stack.Dispatcher); err != nil {
		return nil, err
	}

	cleanerOpts := []maintenance.Option{
		maintenance.WithRetentionDays(cfg.Notifications.RetentionDays),
		maintenance.WithSchedule(cfg.Notifications.CleanupSchedule),
	}

	switch {
	case stack.Redis != nil:
		stack.RateStore = middleware.NewRedisRateStore(stack.Redis)
	case strings.EqualFold(strings.TrimSpace(cfg.RateLimit.Store), "database"):
		counters, err := cache.NewCounterStore(stack.DB)
		if err != nil {
			return nil, fmt.Errorf("initialise rate counters: %w", err)
		}
		stack.RateStore = counters
		cleanerOpts = append(cleanerOpts, maintenance.WithCounterPurger(counters))
	default:
		stack.RateStore = middleware.NewMemoryRateStore()
	}

	stack.Cleaner, err = maintenance.NewCleaner(stack.DB, cleanerOpts...)
	if err != nil {
		return nil, err
	}
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Health = monitoring.NewHealthManager()
	stack.Health.RegisterReadiness(checks.Database(stack.DB, 0))
	stack.Health.RegisterReadiness(checks.Redis(stack.Redis, cfg.Realtime.Redis.Enabled, cfg.Realtime.Redis.Timeout))
	stack.Health.RegisterReadiness(checks.Maintenance(stack.Cleaner, 0))
	svc.Health = stack.Health

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         cfg.Auth.JWT.Issuer,
		AccessTokenTTL: cfg.Auth.JWT.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.Router, err = api.NewRouter(stack.DB, jwtSvc, cfg, svc, stack.RateStore)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func (s *runtimeStack) startRelay(log *zap.Logger) {
	relayCtx, cancel := context.WithCancel(context.Background())
	s.stopRelay = cancel
	s.relayDone.Add(1)
	go func() {
		defer s.relayDone.Done()
		if err := s.Relay.Run(relayCtx); err != nil {
			log.Error("realtime relay stopped", zap.Error(err))
		}
	}()
}

// Shutdown stops background jobs and releases resources. Every step runs; failures are combined.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) error {
	if s == nil {
		return nil
	}

	var errs error

	if s.Cleaner != nil {
		select {
		case <-s.Cleaner.Stop().Done():
		case <-ctx.Done():
			errs = multierr.Append(errs, fmt.Errorf("maintenance stop: %w", ctx.Err()))
		}
	}

	if s.stopRelay != nil {
		s.stopRelay()
		s.relayDone.Wait()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if s.DB != nil {
		if err := closeDatabase(s.DB); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if errs != nil {
		log.Warn("shutdown completed with errors", zap.Error(errs))
	}
	return errs
}

func connectRedis(ctx context.Context, cfg app.RedisRelayConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.Timeout,
		ReadTimeout: cfg.Timeout,
	})

	pingCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Address, err)
	}
	return client, nil
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.DatabaseOptions()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
