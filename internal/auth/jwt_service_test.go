package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/collegehub/internal/models"
)

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.EqualError(t, err, "jwt: secret must be provided")
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	current := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{
		Secret:         "super-secret",
		Issuer:         "collegehub",
		AccessTokenTTL: time.Hour,
		Clock:          func() time.Time { return current },
	})
	require.NoError(t, err)
	require.Equal(t, time.Hour, svc.TTL())

	token, err := svc.GenerateAccessToken("account-1", models.RoleStaff)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "account-1", claims.AccountID)
	require.Equal(t, models.RoleStaff, claims.Role)
	require.Equal(t, "collegehub", claims.Issuer)
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))
}

func TestGenerateAccessTokenRejectsSystemRole(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "s"})
	require.NoError(t, err)

	_, err = svc.GenerateAccessToken("sentinel", models.RoleSystem)
	require.Error(t, err)
	_, err = svc.GenerateAccessToken("", models.RoleAdmin)
	require.Error(t, err)
}

func TestValidateAccessTokenInvalidSignature(t *testing.T) {
	issuer, err := NewJWTService(JWTConfig{Secret: "issuer-secret"})
	require.NoError(t, err)
	verifier, err := NewJWTService(JWTConfig{Secret: "other-secret"})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken("account-1", models.RoleStudent)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestValidateAccessTokenExpired(t *testing.T) {
	current := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{
		Secret:         "secret",
		AccessTokenTTL: time.Minute,
		Clock:          func() time.Time { return current },
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken("account-1", models.RoleAdmin)
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestValidateAccessTokenIssuerMismatch(t *testing.T) {
	issuer, err := NewJWTService(JWTConfig{Secret: "shared", Issuer: "other"})
	require.NoError(t, err)
	verifier, err := NewJWTService(JWTConfig{Secret: "shared", Issuer: "collegehub"})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken("account-1", models.RoleAdmin)
	require.NoError(t, err)
	_, err = verifier.ValidateAccessToken(token)
	require.EqualError(t, err, "jwt: invalid issuer")
}
