// Package ratelimit counts requests per client IP in fixed Redis windows.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Purposes keep separate counters per endpoint family.
const (
	PurposeSignUp  = "signup"
	PurposeSignIn  = "signin"
	PurposeContact = "contact"
	PurposeOrder   = "order"
)

// Limiter allows MaxAttempts requests per IP and purpose within Window.
type Limiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewLimiter(client *redis.Client, maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:ip:%s:%s", purpose, ip)
}

// CheckIPRateLimitWithPurpose reports whether ip already used up its window.
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	return count >= l.maxAttempts, nil
}

// RecordIPRequestWithPurpose counts one request. The window starts with the
// first request and is not extended by later ones.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record rate limit request: %w", err)
	}
	return nil
}
