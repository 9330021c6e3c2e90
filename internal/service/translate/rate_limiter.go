package translate

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// DefaultRateLimit is the default QPS limit.
const DefaultRateLimit = 5

// RateLimiter throttles outbound calls to a translation provider.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a new rate limiter with the given QPS.
func NewRateLimiter(qps int) *RateLimiter {
	if qps <= 0 {
		qps = DefaultRateLimit
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(qps), qps), // burst = qps
	}
}

// Wait blocks until a token is available or context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

type rateLimitedProvider struct {
	Provider
	limiter *RateLimiter
}

// RateLimited wraps p so that every Translate call first waits on limiter.
func RateLimited(p Provider, limiter *RateLimiter) Provider {
	return &rateLimitedProvider{Provider: p, limiter: limiter}
}

func (p *rateLimitedProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return p.Provider.Translate(ctx, text, source, target)
}

// Close closes the wrapped provider when it holds resources.
func (p *rateLimitedProvider) Close() error {
	if c, ok := p.Provider.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
