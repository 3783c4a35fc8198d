// Package limiter throttles login attempts per user name and peer.
package limiter

import (
	"context"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether login is currently allowed and the remaining lockout.
	Allow(ctx context.Context, name string, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a successful login.
	Success(ctx context.Context, name string, ipHash []byte) error
	// Failure records a failed attempt and reports whether the pair is now locked.
	Failure(ctx context.Context, name string, ipHash []byte) (bool, time.Duration, error)
}

// Policy bounds failed attempts.
type Policy struct {
	// Window is the span after which the failure counter restarts.
	Window time.Duration
	// MaxFails is the number of failures within Window that triggers a lockout.
	MaxFails int
	// BlockFor is the lockout length.
	BlockFor time.Duration
}

// Nop never limits. It is used when no store is configured, e.g. in tests.
type Nop struct{}

var _ Limiter = Nop{}

func (Nop) Allow(context.Context, string, []byte) (bool, time.Duration, error) { return true, 0, nil }
func (Nop) Success(context.Context, string, []byte) error                      { return nil }
func (Nop) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}
