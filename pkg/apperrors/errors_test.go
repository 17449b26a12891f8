package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[string]int{
		CodeValidation:  http.StatusBadRequest,
		CodeNotFound:    http.StatusNotFound,
		CodeRateLimited: http.StatusTooManyRequests,
		CodeConflict:    http.StatusConflict,
		CodeForbidden:   http.StatusForbidden,
		CodeStore:       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(New(code, "x", nil)), code)
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestCodeSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(CodeRateLimited, "slow down", nil))
	assert.True(t, Is(err, CodeRateLimited))
	assert.Equal(t, "slow down", Message(err))
}

func TestMessageFallbacks(t *testing.T) {
	assert.Equal(t, "Unknown error", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "db down", Message(New(CodeStore, "", errors.New("db down"))))
}
