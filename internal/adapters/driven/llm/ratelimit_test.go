package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaero-labs/quaero/internal/core/ports/driven"
)

type stubGeneration struct {
	response string
	err      error
	calls    int
	pings    int
}

func (s *stubGeneration) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubGeneration) ModelName() string { return "stub" }

func (s *stubGeneration) Ping(_ context.Context) error {
	s.pings++
	return nil
}

func (s *stubGeneration) Close() error { return nil }

func TestRateLimitedDelegates(t *testing.T) {
	inner := &stubGeneration{response: "hello"}
	limited := NewRateLimited(inner, 0)

	got, err := limited.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "stub", limited.ModelName())
}

func TestRateLimitedPropagatesError(t *testing.T) {
	inner := &stubGeneration{err: errors.New("provider down")}
	limited := NewRateLimited(inner, 0)

	_, err := limited.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	assert.Error(t, err)
}

func TestRateLimitedCancelledContext(t *testing.T) {
	inner := &stubGeneration{response: "hello"}
	limited := NewRateLimited(inner, 0.001)

	// Drain the burst so the next call has to wait.
	for i := 0; i < DefaultBurst; i++ {
		_, err := limited.Generate(context.Background(), "prompt", driven.GenerateOptions{})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := limited.Generate(ctx, "prompt", driven.GenerateOptions{})
	assert.Error(t, err)
	assert.Equal(t, DefaultBurst, inner.calls)
}

func TestRateLimitedPingBypassesTokens(t *testing.T) {
	inner := &stubGeneration{}
	limited := NewRateLimited(inner, 0.001)

	for i := 0; i < DefaultBurst+2; i++ {
		require.NoError(t, limited.Ping(context.Background()))
	}
	assert.Equal(t, DefaultBurst+2, inner.pings)
}
