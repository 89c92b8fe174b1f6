package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/collegehub/pkg/errors"
)

var (
	// ErrUnknownKind is returned when a notification kind is outside the closed set.
	ErrUnknownKind = apperrors.New("NOTIFICATION_KIND_UNKNOWN", "Unknown notification kind", http.StatusBadRequest)
	// ErrNotificationNotFound hides whether an entry is absent or owned by someone else.
	ErrNotificationNotFound = apperrors.New(apperrors.ErrNotFound.Code, "Notification not found", http.StatusNotFound)
	// ErrInvalidCredentials is returned by Authenticate for any login failure.
	ErrInvalidCredentials = apperrors.New("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnauthorized)
	// ErrHolidayExists reports a second holiday on the same date.
	ErrHolidayExists = apperrors.New("HOLIDAY_EXISTS", "A holiday already exists on that date", http.StatusConflict)
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") || strings.Contains(lower, "duplicate")
}

func notFoundOr(err error, wrap func(error) error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return wrap(err)
}
