package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("import: %w", Decode(fmt.Errorf("bad zip")))

	assert.True(t, Is(err, ErrDecode))
	assert.False(t, Is(err, ErrValidation))
	assert.False(t, Is(fmt.Errorf("plain"), ErrDecode))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("row", nil).StatusCode())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized(nil).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal(nil).StatusCode())
	assert.Equal(t, "row not found: gone", NotFound("row", fmt.Errorf("gone")).Error())
}
