package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneMatchesTemplate(t *testing.T) {
	err := Clone(ErrValidation, "name is required")
	require.True(t, stdErrors.Is(err, ErrValidation))
	require.False(t, stdErrors.Is(err, ErrQuotaExceeded))
	require.Equal(t, "name is required", err.Message)
	require.Equal(t, "validation failed", ErrValidation.Message)
}

func TestWithDetailsCopiesSlice(t *testing.T) {
	details := []string{"a", "b"}
	err := WithDetails(ErrValidation, details)
	details[0] = "changed"
	require.Equal(t, []string{"a", "b"}, err.Details)
	require.Nil(t, ErrValidation.Details)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	raw := fmt.Errorf("disk full")
	appErr := FromError(raw)
	require.Equal(t, ErrInternal.Code, appErr.Code)
	require.Equal(t, http.StatusInternalServerError, appErr.Status)
	require.ErrorIs(t, appErr, raw)

	wrapped := fmt.Errorf("submit: %w", ErrQuotaExceeded)
	require.Equal(t, ErrQuotaExceeded.Code, FromError(wrapped).Code)
	require.Nil(t, FromError(nil))
}
