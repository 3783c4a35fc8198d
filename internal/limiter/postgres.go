package limiter

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PG is a PostgreSQL-backed limiter with a sliding window and lockout.
type PG struct {
	q      querier
	policy Policy
	now    func() time.Time
}

var _ Limiter = (*PG)(nil)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a limiter over q, typically the shared pool.
func NewPG(q querier, p Policy) *PG {
	return &PG{q: q, policy: p, now: time.Now}
}

// HashIP returns a stable hash of the peer address so raw addresses are never stored.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *PG) Allow(ctx context.Context, name string, ipHash []byte) (bool, time.Duration, error) {
	const sql = `SELECT locked_until FROM login_attempts WHERE name=$1 AND ip_hash=$2`
	var lockedUntil time.Time
	err := l.q.QueryRow(ctx, sql, name, ipHash).Scan(&lockedUntil)
	switch {
	case err == nil:
		if now := l.now(); lockedUntil.After(now) {
			return false, lockedUntil.Sub(now), nil
		}
		return true, 0, nil
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Success resets counters for (name, ip).
func (l *PG) Success(ctx context.Context, name string, ipHash []byte) error {
	const sql = `
INSERT INTO login_attempts (name, ip_hash, failures, locked_until, updated_at)
VALUES ($1, $2, 0, 'epoch', now())
ON CONFLICT (name, ip_hash)
DO UPDATE SET failures = 0, locked_until = 'epoch', updated_at = now()`
	_, err := l.q.Exec(ctx, sql, name, ipHash)
	return err
}

// Failure records a failed attempt; reaching MaxFails locks the pair for BlockFor.
func (l *PG) Failure(ctx context.Context, name string, ipHash []byte) (bool, time.Duration, error) {
	const sql = `
INSERT INTO login_attempts (name, ip_hash, failures, locked_until, updated_at)
VALUES ($1, $2, 1, 'epoch', now())
ON CONFLICT (name, ip_hash) DO UPDATE
SET
	failures = CASE
		WHEN now() - login_attempts.updated_at > $3::interval THEN 1
		ELSE login_attempts.failures + 1
	END,
	updated_at = now()
RETURNING failures`
	var fails int
	if err := l.q.QueryRow(ctx, sql, name, ipHash, l.policy.Window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails < l.policy.MaxFails {
		return false, 0, nil
	}
	const lock = `UPDATE login_attempts SET locked_until=$3 WHERE name=$1 AND ip_hash=$2`
	if _, err := l.q.Exec(ctx, lock, name, ipHash, l.now().Add(l.policy.BlockFor)); err != nil {
		return false, 0, err
	}
	return true, l.policy.BlockFor, nil
}
