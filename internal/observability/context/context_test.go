package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	require.Equal(t, "req-1", RequestIDFromContext(ctx))
	require.Empty(t, RequestIDFromContext(context.Background()))
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	base := context.Background()
	require.Equal(t, base, WithUserID(base, ""))
	require.Equal(t, base, WithRequestID(base, ""))

	ctx := WithUserID(base, "42")
	require.Equal(t, "42", UserIDFromContext(ctx))
}
