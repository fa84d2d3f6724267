package parley_errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	req := require.New(t)

	err := fmt.Errorf("append message: %w", NewValidationError("content", "is required"))

	req.ErrorIs(err, ErrValidation)
	req.False(errors.Is(err, ErrNotFound))
	req.Equal(map[string]string{"content": "is required"}, FieldErrors(err))
}

func TestValidationError_MessageIsSortedByField(t *testing.T) {
	req := require.New(t)

	err := NewValidationError("page", "must be at least 1").Add("chat_id", "is required")

	req.Equal("validation failed: chat_id: is required; page: must be at least 1", err.Error())
}

func TestFieldErrors_NilForOtherErrors(t *testing.T) {
	require.Nil(t, FieldErrors(ErrForbidden))
}
