package outbound

import (
	"context"
	"time"
)

// RateLimiterPort limits request rates per key.
type RateLimiterPort interface {
	// Allow reports whether one more request is allowed for key within window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
