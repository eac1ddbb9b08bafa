package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrActionRejected, http.StatusForbidden},
		{ErrInsufficientFunds, http.StatusForbidden},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrRateLimitExceeded, http.StatusTooManyRequests},
		{ErrRewardFailed, http.StatusBadGateway},
		{ErrExternalUnavailable, http.StatusServiceUnavailable},
		{ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, MapErrorToStatus(tc.err), "error: %v", tc.err)
	}
}

func TestMapErrorToStatus_Wrapped(t *testing.T) {
	// A reward failure wrapped with context must still map to 502 so the
	// client can distinguish "recorded but unrewarded" from a rejection.
	wrapped := fmt.Errorf("minting 1 LENI for 0xAA: %w", ErrRewardFailed)
	assert.Equal(t, http.StatusBadGateway, MapErrorToStatus(wrapped))
}

func TestAppErrorUnwrap(t *testing.T) {
	e := New(http.StatusForbidden, "cannot vote", ErrInsufficientFunds)
	assert.ErrorIs(t, e, ErrInsufficientFunds)
	assert.Equal(t, ErrInsufficientFunds.Error(), e.Error())
}
