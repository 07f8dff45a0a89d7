package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/castpass/castpass/internal/interfaces/http/handlers/testutil"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantCode int
		wantBody string
	}{
		{"healthy", nil, http.StatusOK, `"database":"ok"`},
		{"database down", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, `"status":"unhealthy"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(func(ctx context.Context) error { return tt.pingErr }, testutil.NewMockLogger())

			c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
			h.HealthCheck(c)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	h := NewHealthHandler(func(ctx context.Context) error { return nil }, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/version", nil)
	h.Version(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version"`)
}
