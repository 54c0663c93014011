package tracing

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsSensitiveKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/auth/signin"),
		attribute.String("user.password", "hunter2"),
		attribute.String("refresh_token", "abc"),
		attribute.String("message.content", "hi"),
	)
	require.Len(t, attrs, 1)
	require.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorKeepsTopLevelMessage(t *testing.T) {
	err := fmt.Errorf("create session: %w", errors.New("pq: duplicate key value (token=abc)"))
	require.EqualError(t, SafeError(err), "create session")
	require.NoError(t, SafeError(nil))
}

func TestWrapHTTPClientPreservesTimeout(t *testing.T) {
	client := WrapHTTPClient(&http.Client{Timeout: 10 * time.Second})
	require.Equal(t, 10*time.Second, client.Timeout)
	require.NotNil(t, client.Transport)
	require.NotNil(t, WrapHTTPClient(nil).Transport)
}
