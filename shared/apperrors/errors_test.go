package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("update status: %w", InsufficientFunds("Minimum balance of 10 is required"))

	assert.Equal(t, KindInsufficientFunds, KindOf(err))
	assert.True(t, Is(err, KindInsufficientFunds))
	assert.False(t, Is(err, KindResourceNotFound))
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "User not found", ResourceNotFound("User not found").Error())
	assert.Equal(t, "ResourceNotFound", ResourceNotFound("").Error())

	cause := errors.New("connection refused")
	err := DependencyUnavailable("identity directory unavailable", cause)
	assert.Equal(t, "identity directory unavailable: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ResourceNotFound(""), http.StatusNotFound},
		{"conflict", ResourceConflict("Account already exists"), http.StatusConflict},
		{"status", AccountStatus("Account is inactive/closed"), http.StatusBadRequest},
		{"funds", InsufficientFunds("Minimum balance of 10 is required"), http.StatusBadRequest},
		{"closing", AccountClosing("Balance should be zero"), http.StatusBadRequest},
		{"invalid", InvalidRequest("unknown account type"), http.StatusBadRequest},
		{"dependency", DependencyUnavailable("sequence generator unavailable", nil), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestCodes(t *testing.T) {
	assert.Equal(t, CodeNotFound, ResourceNotFound("").Code)
	assert.Equal(t, CodeConflict, ResourceConflict("").Code)
	assert.Equal(t, CodeBadRequest, AccountClosing("").Code)
}
