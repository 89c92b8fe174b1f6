package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromErrorPassesThroughAppError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", ErrNotFound)
	appErr := FromError(wrapped)
	require.Equal(t, ErrNotFound.Code, appErr.Code)
	require.Equal(t, http.StatusNotFound, appErr.StatusCode)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	cause := stderrors.New("disk on fire")
	appErr := FromError(cause)
	require.Equal(t, ErrInternalServer.Code, appErr.Code)
	require.ErrorIs(t, appErr, cause)
	require.Nil(t, FromError(nil))
}

func TestWithInternalKeepsIdentity(t *testing.T) {
	cause := stderrors.New("record not found")
	err := ErrNotFound.WithInternal(cause)

	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, cause)
	require.Nil(t, ErrNotFound.Internal)
	require.Contains(t, err.Error(), "record not found")
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("title is required")
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.ErrorIs(t, err, ErrBadRequest)
	require.Equal(t, "title is required", err.Error())
}
