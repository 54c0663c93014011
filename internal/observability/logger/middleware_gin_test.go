package logger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/hushbox/internal/observability/context"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddlewareEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	var seen string
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/api/messages", func(c *gin.Context) {
		seen = obscontext.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.Header.Set("X-Request-Id", "req-abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, "req-abc", rec.Header().Get("X-Request-Id"))
	require.Equal(t, "req-abc", seen)

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "/api/messages", fields["route"])
	require.EqualValues(t, http.StatusNoContent, fields["status"])
	require.Equal(t, "req-abc", fields["request_id"])
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDFromHeader(t *testing.T) {
	require.Equal(t, "req-abc", requestIDFrom(" req-abc "))
	require.NotEqual(t, "has space", requestIDFrom("has space"))
	require.Len(t, requestIDFrom(strings.Repeat("a", maxRequestIDLength+1)), 36)
	require.Len(t, requestIDFrom(""), 36)
}

func TestRequestLevel(t *testing.T) {
	cases := []struct {
		name      string
		path      string
		route     string
		status    int
		errorType string
		want      zapcore.Level
	}{
		{"server error", "/api/messages", "/api/messages", http.StatusInternalServerError, "internal_error", zapcore.ErrorLevel},
		{"rate limited", "/api/auth/signin", "/api/auth/signin", http.StatusTooManyRequests, "rate_limited", zapcore.WarnLevel},
		{"validation", "/api/auth/signup", "/api/auth/signup", http.StatusBadRequest, "validation_error", zapcore.DebugLevel},
		{"health", "/health", "/health", http.StatusOK, "", zapcore.DebugLevel},
		{"asset", "/assets/app.js", "", http.StatusOK, "", zapcore.DebugLevel},
		{"api", "/api/messages", "/api/messages", http.StatusOK, "", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, requestLevel(tc.path, tc.route, tc.status, tc.errorType, false))
		})
	}
}

func TestGinMiddlewareLogsAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/api/messages", func(c *gin.Context) {
		c.Request = c.Request.WithContext(obscontext.WithUserID(c.Request.Context(), "42"))
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/messages", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	require.Equal(t, "42", entries[0].ContextMap()["user_id"])
}
