// Package ratelimit provides token-bucket launch limiters and per-client
// request budgets.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// LaunchLimiter rate-limits tool launches per operation kind using token
// buckets, so a burst of one kind cannot starve the others.
type LaunchLimiter struct {
	mu       sync.RWMutex
	limiters map[domain.OperationKind]*rate.Limiter
}

// NewLaunchLimiter creates a limiter allowing perSecond launches of each
// operation kind. perSecond <= 0 disables limiting.
func NewLaunchLimiter(perSecond float64) *LaunchLimiter {
	ll := &LaunchLimiter{limiters: make(map[domain.OperationKind]*rate.Limiter)}
	if perSecond <= 0 {
		return ll
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	for _, kind := range domain.AllOperationKinds {
		ll.limiters[kind] = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return ll
}

// Wait blocks until a launch token is available for kind, or ctx is done.
func (ll *LaunchLimiter) Wait(ctx context.Context, kind domain.OperationKind) error {
	if ll == nil {
		return nil
	}
	ll.mu.RLock()
	limiter, ok := ll.limiters[kind]
	ll.mu.RUnlock()
	if !ok {
		return nil // unlimited
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", kind, err)
	}
	return nil
}
