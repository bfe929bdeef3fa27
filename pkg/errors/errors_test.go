package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(stdErrors.New("boom"))
	require.NotNil(t, err)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsIdentityForIs(t *testing.T) {
	cloned := Clone(ErrNotFound, "pensum not found")
	wrapped := fmt.Errorf("lookup: %w", cloned)

	assert.True(t, stdErrors.Is(wrapped, ErrNotFound))
	assert.False(t, stdErrors.Is(wrapped, ErrForbidden))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWithDetailsCopiesSlice(t *testing.T) {
	details := []string{"Missing required field: career"}
	err := WithDetails(ErrInvalidPensum, "", details)
	details[0] = "mutated"

	assert.Equal(t, []string{"Missing required field: career"}, err.Details)
	assert.Equal(t, ErrInvalidPensum.Message, err.Message)
	assert.Empty(t, ErrInvalidPensum.Details)
}
