package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorChaining(t *testing.T) {
	ErrBase := New("base error")
	assert.Equal(t, "base error", ErrBase.Error())
	assert.ErrorIs(t, ErrBase, ErrBase)

	ErrDerived := ErrBase.New("derived error")
	assert.Equal(t, "derived error", ErrDerived.Error())
	assert.ErrorIs(t, ErrDerived, ErrBase)

	msgErr := ErrDerived.Msg("with context")
	assert.Equal(t, "with context", msgErr.Error())
	assert.ErrorIs(t, msgErr, ErrDerived)
	assert.ErrorIs(t, msgErr, ErrBase)

	goErr := errors.New("transport failure")
	wrapped := ErrDerived.Err(goErr)
	assert.Equal(t, "derived error", wrapped.Error())
	assert.ErrorIs(t, wrapped, goErr)
	assert.ErrorIs(t, wrapped, ErrBase)

	wrapped = ErrDerived.MsgErr("request failed", goErr)
	assert.Equal(t, "request failed", wrapped.Error())
	assert.ErrorIs(t, wrapped, goErr)
	assert.Contains(t, wrapped.ErrorAll(), "transport failure")
}

func TestStatusCode(t *testing.T) {
	ErrBase := New("auth error").SetStatusCode(http.StatusUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, ErrBase.StatusCode())

	// derived errors inherit the status code until overridden
	derived := ErrBase.New("token rejected")
	assert.Equal(t, http.StatusUnauthorized, derived.StatusCode())

	overridden := derived.SetStatusCode(http.StatusForbidden)
	assert.Equal(t, http.StatusForbidden, overridden.StatusCode())
	assert.Equal(t, http.StatusUnauthorized, derived.StatusCode())
}

func TestStatusCodeOf(t *testing.T) {
	ErrBase := New("unavailable").SetStatusCode(http.StatusServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, StatusCodeOf(ErrBase))
	assert.Equal(t, http.StatusServiceUnavailable, StatusCodeOf(fmt.Errorf("outer: %w", ErrBase)))
	assert.Equal(t, 0, StatusCodeOf(errors.New("plain")))
	assert.Equal(t, 0, StatusCodeOf(nil))
}
