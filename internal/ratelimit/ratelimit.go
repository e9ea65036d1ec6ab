package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/agenthands/trustrank/internal/kvstore"
)

// RetryAfterSeconds is the hint attached to 429 responses.
const RetryAfterSeconds = 3600

// Limiter enforces a per-client-IP permit count over a rolling window. The
// counters live in the shared store so the quota survives restarts. Clients
// on the bypass list are never counted.
type Limiter struct {
	store  kvstore.Store
	limit  int64
	window time.Duration
	bypass map[string]struct{}
	logger *slog.Logger
}

func NewLimiter(store kvstore.Store, limit int, windowSeconds int, bypass []string, logger *slog.Logger) *Limiter {
	if limit <= 0 {
		limit = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = RetryAfterSeconds
	}
	set := make(map[string]struct{}, len(bypass))
	for _, ip := range bypass {
		set[ip] = struct{}{}
	}
	return &Limiter{
		store:  store,
		limit:  int64(limit),
		window: time.Duration(windowSeconds) * time.Second,
		bypass: set,
		logger: logger.WithGroup("ratelimit"),
	}
}

func counterKey(ip string) string {
	return fmt.Sprintf("ratelimit:%s", ip)
}

// Allow consumes a permit for the client, or reports exhaustion. Once the
// quota is exhausted the counter is not incremented further. Store failures
// fail open.
func (l *Limiter) Allow(ctx context.Context, clientIP string) bool {
	if _, ok := l.bypass[clientIP]; ok {
		return true
	}

	key := counterKey(clientIP)

	raw, err := l.store.Get(ctx, key)
	if err == nil {
		current, parseErr := strconv.ParseInt(string(raw), 10, 64)
		if parseErr == nil && current >= l.limit {
			return false
		}
	} else if err != kvstore.ErrKeyNotFound {
		l.logger.Warn("rate counter read failed, allowing request", "ip", clientIP, "error", err)
		return true
	}

	if _, err := l.store.Increment(ctx, key, l.window); err != nil {
		l.logger.Warn("rate counter increment failed, allowing request", "ip", clientIP, "error", err)
	}
	return true
}
