package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestCheckerStatus(t *testing.T) {
	tests := []struct {
		name     string
		database Probe
		redis    Probe
		want     string
	}{
		{"all up", up, up, StatusHealthy},
		{"optional down", up, down, StatusDegraded},
		{"required down", down, up, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewChecker("sales-service", time.Second).
				Require("database", tt.database).
				Optional("redis", tt.redis).
				Check(context.Background())

			assert.Equal(t, tt.want, report.Status)
			assert.Len(t, report.Dependencies, 2)
		})
	}
}

func TestCheckerHandler(t *testing.T) {
	router := mux.NewRouter()
	NewChecker("inventory-service", time.Second).
		Require("database", up).
		Optional("redis", down).
		Register(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Data    Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, StatusDegraded, body.Data.Status)
	assert.Equal(t, "connection refused", body.Data.Dependencies["redis"].Error)

	router = mux.NewRouter()
	NewChecker("inventory-service", time.Second).Require("database", down).Register(router)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProbesHonourTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	report := NewChecker("svc", 20*time.Millisecond).Require("database", slow).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
}
