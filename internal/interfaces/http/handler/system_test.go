package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/dto"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func setupSystemRouter(db Pinger) *gin.Engine {
	h := NewSystemHandler("supplier-sync", "1.2.3", db)
	r := gin.New()
	r.GET("/health/live", h.Liveness)
	r.GET("/health/ready", h.Readiness)
	r.GET("/system/info", h.GetSystemInfo)
	return r
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	r := setupSystemRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/system/info", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "supplier-sync", data["name"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Liveness(t *testing.T) {
	r := setupSystemRouter(pingerFunc(func(context.Context) error { return errors.New("down") }))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSystemHandler_Readiness(t *testing.T) {
	tests := []struct {
		name         string
		db           Pinger
		expectedCode int
	}{
		{"no database", nil, http.StatusOK},
		{"database up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("connection refused") }), http.StatusServiceUnavailable},
		{"ping gets a deadline", pingerFunc(func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return nil
		}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupSystemRouter(tt.db)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode != http.StatusOK {
				var resp dto.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, dto.ErrCodeUnavailable, resp.Error.Code)
			}
		})
	}
}
