package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(t *testing.T, recorded *observer.ObservedLogs, msg string) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage(msg).All()
	require.NotEmpty(t, entries, "expected a %q log entry", msg)
	return entries[0]
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/status", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status?verbose=1", nil))

			entry := findEntry(t, recorded, "HTTP Request")
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, int64(tt.status), entry.ContextMap()["status"])
			assert.Equal(t, "verbose=1", entry.ContextMap()["query"])
		})
	}
}

func TestGinMiddleware_PropagatesRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-abc")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.POST("/sync", func(c *gin.Context) {
		assert.Equal(t, "req-abc", GetRequestID(c.Request.Context()))
		L(c.Request.Context()).Info("handler")
		GetGinLogger(c).Info("gin logger")
		c.Status(http.StatusAccepted)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	for _, msg := range []string{"handler", "gin logger", "HTTP Request"} {
		entry := findEntry(t, recorded, msg)
		assert.Equal(t, "req-abc", entry.ContextMap()["request_id"], msg)
		assert.Equal(t, "/sync", entry.ContextMap()["path"], msg)
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("connector exploded")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
	assert.NotContains(t, w.Body.String(), "connector exploded")

	entry := findEntry(t, recorded, "Panic recovered")
	assert.Equal(t, "connector exploded", entry.ContextMap()["error"])
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))

	c.Set(ginLoggerKey, "wrong type")
	assert.NotNil(t, GetGinLogger(c))
}
