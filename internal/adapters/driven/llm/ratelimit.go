// Package llm provides decorators shared by the generation service
// adapters.
package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/quaero-labs/quaero/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.GenerationService = (*RateLimited)(nil)

// DefaultBurst is the token bucket burst size.
const DefaultBurst = 3

// RateLimited wraps a generation service with a token bucket so that
// concurrent pipeline stages cannot exceed the provider's quota.
type RateLimited struct {
	inner   driven.GenerationService
	limiter *rate.Limiter
}

// NewRateLimited wraps svc with a sustained requests-per-second limit.
// A non-positive limit disables throttling.
func NewRateLimited(svc driven.GenerationService, requestsPerSecond float64) *RateLimited {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &RateLimited{
		inner:   svc,
		limiter: rate.NewLimiter(limit, DefaultBurst),
	}
}

// Generate waits for a token and delegates to the wrapped service.
func (r *RateLimited) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Generate(ctx, prompt, opts)
}

// ModelName returns the wrapped service's model name.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates to the wrapped service without consuming a token.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases the wrapped service.
func (r *RateLimited) Close() error {
	return r.inner.Close()
}
