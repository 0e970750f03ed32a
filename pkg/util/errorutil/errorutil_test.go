package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewValidationError("title required", nil)
	converted := ToDomainError(original)
	require.Equal(t, "VALIDATION_FAILED", converted.Code)
	require.Equal(t, http.StatusBadRequest, converted.HTTPStatus)
}

func TestToDomainErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("loading request: %w", NewNotFound("request", nil))
	converted := ToDomainError(wrapped)
	require.Equal(t, "NOT_FOUND", converted.Code)
}

func TestToDomainErrorNoRows(t *testing.T) {
	converted := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
	require.Equal(t, "NOT_FOUND", converted.Code)
	require.Equal(t, http.StatusNotFound, converted.HTTPStatus)
}

func TestToDomainErrorUnknown(t *testing.T) {
	converted := ToDomainError(errors.New("boom"))
	require.Equal(t, "INTERNAL_ERROR", converted.Code)
	require.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
}

func TestNewInvalidTransitionDetails(t *testing.T) {
	err := NewInvalidTransition("ready", "ready", "request has no estimate")
	converted := ToDomainError(err)
	require.Equal(t, "INVALID_TRANSITION", converted.Code)
	require.Equal(t, http.StatusConflict, converted.HTTPStatus)
	require.Equal(t, "ready", converted.Details["from"])
	require.Equal(t, "request has no estimate", converted.Details["reason"])
}

func TestPermissionDeniedMessageFormat(t *testing.T) {
	err := NewPermissionDenied("request:convert")
	require.EqualError(t, err, "Permission denied: request:convert")
	require.True(t, IsPermissionDenied(err))
	require.False(t, IsPermissionDenied(NewForbidden("internal staff required")))
	require.False(t, IsPermissionDenied(nil))
}
