package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/collegehub/internal/app"
	iauth "github.com/charlesng35/collegehub/internal/auth"
	"github.com/charlesng35/collegehub/internal/database/testutil"
	"github.com/charlesng35/collegehub/internal/middleware"
	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/internal/services"
)

func newTestRouter(t *testing.T, cfg *app.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-secret", Issuer: "test", AccessTokenTTL: time.Hour})
	require.NoError(t, err)

	directory, err := services.NewAccountDirectory(db, models.SystemAccountEmail)
	require.NoError(t, err)
	notifier, err := services.NewNotificationService(db, directory, nil)
	require.NoError(t, err)
	leaves, err := services.NewLeaveService(db, nil)
	require.NoError(t, err)
	feedback, err := services.NewFeedbackService(db, nil)
	require.NoError(t, err)
	results, err := services.NewResultService(db, nil)
	require.NoError(t, err)
	holidays, err := services.NewHolidayService(db, nil)
	require.NoError(t, err)
	announcements, err := services.NewAnnouncementService(db, nil)
	require.NoError(t, err)

	router, err := NewRouter(db, jwtSvc, cfg, Services{
		Directory:     directory,
		Notifications: notifier,
		Leaves:        leaves,
		Feedback:      feedback,
		Results:       results,
		Holidays:      holidays,
		Announcements: announcements,
	}, middleware.NewMemoryRateStore())
	require.NoError(t, err)
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	router := newTestRouter(t, &app.Config{
		Notifications: app.NotificationsConfig{WidgetLimit: 10},
	})

	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health").Code)
	require.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/auth/me").Code)
	require.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/notifications").Code)
	require.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/api/admin/holidays").Code)
	require.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/unknown").Code)
}

func TestRouter_HealthReportsDatabaseProbe(t *testing.T) {
	router := newTestRouter(t, &app.Config{})

	w := serve(router, http.MethodGet, "/api/health/ready")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Status  string
		Checks  []struct {
			Component string `json:"component"`
			Status    string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "up", body.Status)
	require.Len(t, body.Checks, 1)
	require.Equal(t, "database", body.Checks[0].Component)

	live := serve(router, http.MethodGet, "/health/live")
	require.Equal(t, http.StatusOK, live.Code)
}

func TestRouter_MetricsEndpointToggle(t *testing.T) {
	enabled := newTestRouter(t, &app.Config{
		Monitoring: app.MonitoringConfig{Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/internal/metrics"}},
	})
	require.Equal(t, http.StatusOK, serve(enabled, http.MethodGet, "/internal/metrics").Code)

	disabled := newTestRouter(t, &app.Config{})
	require.Equal(t, http.StatusNotFound, serve(disabled, http.MethodGet, "/metrics").Code)
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	router := newTestRouter(t, &app.Config{
		RateLimit: app.RateLimitConfig{LoginRequests: 2, LoginWindow: time.Minute},
	})

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/api/auth/login").Code)
	}
	require.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodPost, "/api/auth/login").Code)
}

func TestNewRouterValidatesDependencies(t *testing.T) {
	_, err := NewRouter(nil, nil, nil, Services{}, nil)
	require.Error(t, err)
}
