package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rohits-web03/notevault/internal/errors"
)

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := errors.Conflict("email already registered")

	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.False(t, errors.Is(err, errors.ErrValidation))

	wrapped := fmt.Errorf("register: %w", err)
	assert.True(t, errors.Is(wrapped, errors.ErrConflict))
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.CodeValidation, http.StatusBadRequest},
		{errors.CodeConflict, http.StatusConflict},
		{errors.CodeInvalidCredentials, http.StatusUnauthorized},
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeForbidden, http.StatusForbidden},
		{errors.CodeUnavailable, http.StatusServiceUnavailable},
		{errors.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := errors.Wrap(cause, errors.CodeInternal, "load user")

	assert.Equal(t, "load user: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(errors.NotFound("note not found")))
	assert.Equal(t, errors.CodeInternal, errors.CodeOf(fmt.Errorf("boom")))
}

func TestFieldErrors(t *testing.T) {
	err := errors.FieldValidation("tags", "is too long")
	assert.Equal(t, map[string]string{"tags": "is too long"}, err.FieldErrors())
	assert.Nil(t, errors.Conflict("x").FieldErrors())
}
