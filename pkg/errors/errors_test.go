package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("commit: %w", Clone(ErrConflict, "session already committed"))

	got := FromError(wrapped)

	assert.Equal(t, "CONFLICT", got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, "session already committed", got.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")

	got := FromError(cause)

	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateSentinel(t *testing.T) {
	clone := Clone(ErrInputInconsistency, "exam ex-1 has no eligible students")

	assert.Equal(t, "allotment input is inconsistent", ErrInputInconsistency.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, clone.Status)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("commit: %w", Clone(ErrProposalExpired, "proposal p-1 expired"))

	assert.ErrorIs(t, err, ErrProposalExpired)
	assert.NotErrorIs(t, err, ErrExportExpired)
	assert.NotErrorIs(t, Wrap(errors.New("io"), ErrInternal.Code, ErrInternal.Status, "x"), ErrNotFound)
}

func TestSentinelsCarryDistinctCodes(t *testing.T) {
	sentinels := []*Error{
		ErrNotFound, ErrForbidden, ErrUnauthorized, ErrConflict, ErrValidation, ErrInternal,
		ErrInputInconsistency, ErrProposalExpired, ErrExportExpired, ErrCacheMiss,
	}
	seen := map[string]bool{}
	for _, sentinel := range sentinels {
		assert.False(t, seen[sentinel.Code], sentinel.Code)
		seen[sentinel.Code] = true
		assert.GreaterOrEqual(t, sentinel.Status, 400, sentinel.Code)
	}
}
