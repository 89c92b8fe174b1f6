package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/api"
	"github.com/charlesng35/collegehub/internal/app"
	iauth "github.com/charlesng35/collegehub/internal/auth"
	sharedtestutil "github.com/charlesng35/collegehub/internal/database/testutil"
	"github.com/charlesng35/collegehub/internal/events"
	"github.com/charlesng35/collegehub/internal/middleware"
	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/internal/realtime"
	"github.com/charlesng35/collegehub/internal/services"
	"github.com/charlesng35/collegehub/pkg/response"
)

// DefaultPassword is assigned to every account created through the Env helpers.
const DefaultPassword = "Password123!"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T         *testing.T
	DB        *gorm.DB
	Router    *gin.Engine
	JWT       *iauth.JWTService
	Config    *app.Config
	Directory *services.AccountDirectory
	Hub       *realtime.Hub
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
		},
		Notifications: app.NotificationsConfig{
			WidgetLimit:   10,
			RetentionDays: 180,
			SystemEmail:   models.SystemAccountEmail,
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
		RateLimit: app.RateLimitConfig{
			LoginRequests: 50,
			LoginWindow:   time.Minute,
		},
	}

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         cfg.Auth.JWT.Issuer,
		AccessTokenTTL: cfg.Auth.JWT.TTL,
	})
	require.NoError(t, err)

	directory, err := services.NewAccountDirectory(db, cfg.Notifications.SystemEmail)
	require.NoError(t, err)

	hub := realtime.NewHub()
	notifier, err := services.NewNotificationService(db, directory, hub)
	require.NoError(t, err)

	dispatcher := events.NewDispatcher()
	require.NoError(t, services.RegisterNotificationBindings(dispatcher, db, notifier, directory))

	leaves, err := services.NewLeaveService(db, dispatcher)
	require.NoError(t, err)
	feedback, err := services.NewFeedbackService(db, dispatcher)
	require.NoError(t, err)
	results, err := services.NewResultService(db, dispatcher)
	require.NoError(t, err)
	holidays, err := services.NewHolidayService(db, dispatcher)
	require.NoError(t, err)
	announcements, err := services.NewAnnouncementService(db, dispatcher)
	require.NoError(t, err)

	router, err := api.NewRouter(db, jwtSvc, cfg, api.Services{
		Directory:     directory,
		Notifications: notifier,
		Leaves:        leaves,
		Feedback:      feedback,
		Results:       results,
		Holidays:      holidays,
		Announcements: announcements,
		Hub:           hub,
	}, middleware.NewMemoryRateStore())
	require.NoError(t, err)

	return &Env{
		T:         t,
		DB:        db,
		Router:    router,
		JWT:       jwtSvc,
		Config:    cfg,
		Directory: directory,
		Hub:       hub,
	}
}

// Account is a created account together with a ready-to-use access token.
type Account struct {
	*services.Principal
	Token string
}

// CreateAccount inserts an active account of the given role with a random email and issues a token for it.
func (e *Env) CreateAccount(role models.Role, firstName, lastName string) Account {
	e.T.Helper()

	email := strings.ToLower(firstName) + "-" + uuid.NewString()[:8] + "@college.test"
	principal, err := e.Directory.CreateAccount(context.Background(), services.CreateAccountInput{
		Email:     email,
		Password:  DefaultPassword,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
	})
	require.NoError(e.T, err)

	token, err := e.JWT.GenerateAccessToken(principal.ID(), role)
	require.NoError(e.T, err)
	return Account{Principal: principal, Token: token}
}

// CreateSubject registers a subject taught by the given staff account.
func (e *Env) CreateSubject(staff Account, name string) *models.Subject {
	e.T.Helper()
	require.NotNil(e.T, staff.Staff, "subject owner must be a staff account")

	subject := &models.Subject{Name: name, StaffID: staff.Staff.ID}
	require.NoError(e.T, e.DB.Create(subject).Error)
	return subject
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// DecodeFlat parses a flat widget payload into a generic map.
func DecodeFlat(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
