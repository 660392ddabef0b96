package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tessera/internal/config"
)

const (
	keyLoginIP    = "login:ip:%s"
	keyLoginEmail = "login:email:%s"

	loginIPRate     = 1.0
	loginIPBurst    = 10
	loginEmailRate  = 0.2
	loginEmailBurst = 5
)

// LoginLimiter throttles login attempts per client IP and per account.
// A nil limiter (no redis configured) allows everything.
type LoginLimiter struct {
	bucket *TokenBucket
}

func NewLoginLimiter(cfg config.Config) *LoginLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &LoginLimiter{bucket: NewTokenBucket(client)}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowIP reports whether another attempt from this client IP may proceed.
func (l *LoginLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyLoginIP, strings.TrimSpace(ip)), loginIPRate, loginIPBurst)
}

// AllowEmail reports whether another attempt against this account may
// proceed. The per-account bucket refills slowly, so a distributed
// guessing attack still stalls on one mailbox.
func (l *LoginLimiter) AllowEmail(ctx context.Context, email string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	return l.bucket.Allow(ctx, fmt.Sprintf(keyLoginEmail, email), loginEmailRate, loginEmailBurst)
}

// RetryAfter converts a denial into a client-facing wait hint.
func RetryAfter(res *Result) time.Duration {
	if res == nil {
		return 0
	}
	return res.RetryAfter
}
