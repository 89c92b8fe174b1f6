package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/app"
	iauth "github.com/charlesng35/collegehub/internal/auth"
	"github.com/charlesng35/collegehub/internal/handlers"
	"github.com/charlesng35/collegehub/internal/middleware"
	"github.com/charlesng35/collegehub/internal/monitoring"
	"github.com/charlesng35/collegehub/internal/monitoring/checks"
	"github.com/charlesng35/collegehub/internal/realtime"
	"github.com/charlesng35/collegehub/internal/services"
)

// Services bundles the domain services the HTTP surface delegates to.
type Services struct {
	Directory     *services.AccountDirectory
	Notifications *services.NotificationService
	Leaves        *services.LeaveService
	Feedback      *services.FeedbackService
	Results       *services.ResultService
	Holidays      *services.HolidayService
	Announcements *services.AnnouncementService
	Hub           *realtime.Hub
	// Health is optional; a database-only readiness probe is used when nil.
	Health *monitoring.HealthManager
}

func (s Services) validate() error {
	switch {
	case s.Directory == nil:
		return fmt.Errorf("account directory must be provided")
	case s.Notifications == nil:
		return fmt.Errorf("notification service must be provided")
	case s.Leaves == nil, s.Feedback == nil, s.Results == nil, s.Holidays == nil, s.Announcements == nil:
		return fmt.Errorf("all producer services must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, svc Services, rateStore middleware.RateStore) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if rateStore == nil {
		return nil, fmt.Errorf("rate limit store must be provided")
	}
	if err := svc.validate(); err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	health := svc.Health
	if health == nil {
		health = monitoring.NewHealthManager()
		health.RegisterReadiness(checks.Database(db, 0))
	}
	registerHealthRoutes(r, health)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler, err := handlers.NewAuthHandler(svc.Directory, jwt)
	if err != nil {
		return nil, err
	}
	registerAuthRoutes(r, authHandler, middleware.RateLimit(rateStore, cfg.RateLimit.LoginRequests, cfg.RateLimit.LoginWindow))

	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))
	api.Use(middleware.RateLimit(rateStore, cfg.RateLimit.APIRequests, cfg.RateLimit.APIWindow))

	api.GET("/auth/me", authHandler.Me)

	notificationHandler, err := handlers.NewNotificationHandler(svc.Notifications, svc.Hub, cfg.Notifications.WidgetLimit)
	if err != nil {
		return nil, err
	}
	registerNotificationRoutes(api, notificationHandler)

	leaveHandler, err := handlers.NewLeaveHandler(svc.Directory, svc.Leaves)
	if err != nil {
		return nil, err
	}
	feedbackHandler, err := handlers.NewFeedbackHandler(svc.Directory, svc.Feedback)
	if err != nil {
		return nil, err
	}
	resultHandler, err := handlers.NewResultHandler(svc.Directory, svc.Results)
	if err != nil {
		return nil, err
	}
	holidayHandler, err := handlers.NewHolidayHandler(svc.Holidays)
	if err != nil {
		return nil, err
	}
	announcementHandler, err := handlers.NewAnnouncementHandler(svc.Directory, svc.Announcements)
	if err != nil {
		return nil, err
	}

	registerLeaveRoutes(api, leaveHandler)
	registerFeedbackRoutes(api, feedbackHandler)
	registerResultRoutes(api, resultHandler)
	registerHolidayRoutes(api, holidayHandler)
	registerAnnouncementRoutes(api, announcementHandler)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
