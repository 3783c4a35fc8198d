// Package service contains the authentication, user administration and command dispatch services.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	pkgcrypto "github.com/serbe/rugo-sub000/internal/crypto"
	"github.com/serbe/rugo-sub000/internal/credstore"
	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/limiter"
	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/permission"
	"github.com/serbe/rugo-sub000/internal/protocol"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// AuthService defines login and token checks.
type AuthService interface {
	// Login verifies name and secret, applying rate limiting by (name, peer), and mints a token.
	Login(ctx context.Context, name, secret, peer string) (protocol.TokenReply, error)
	// CheckAuth reports whether token is cached with exactly role.
	CheckAuth(token string, role int64) (bool, error)
	// ResolveCommand authenticates token and runs cmd through the permission gate.
	ResolveCommand(token string, cmd protocol.Command) (credstore.UserData, protocol.Command, error)
}

type AuthServiceImpl struct {
	db     repository.Runner
	users  repository.UserRepository
	creds  *credstore.Store
	lim    limiter.Limiter
	verify func(key, salt, expected []byte) bool
}

// decoyKey is verified against when the user is unknown or has no key,
// so every failed login pays for one argon2 hash.
var decoyKey = sync.OnceValues(func() (hash, salt []byte) {
	salt = make([]byte, pkgcrypto.SaltLen)
	return pkgcrypto.HashKey([]byte("decoy"), salt), salt
})

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(db repository.Runner, users repository.UserRepository, creds *credstore.Store, lim limiter.Limiter) *AuthServiceImpl {
	if lim == nil {
		lim = limiter.Nop{}
	}
	return &AuthServiceImpl{db: db, users: users, creds: creds, lim: lim, verify: pkgcrypto.VerifyKey}
}

// Login authenticates with rate limiting by (name, ip).
// An unknown user and a wrong secret yield the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, name, secret, peer string) (protocol.TokenReply, error) {
	ipHash := limiter.HashIP(peerHost(peer))

	allowed, _, err := s.lim.Allow(ctx, name, ipHash)
	if err != nil {
		return protocol.TokenReply{}, fmt.Errorf("%w: %w", errs.ErrStore, err)
	}
	if !allowed {
		return protocol.TokenReply{}, errs.ErrRateLimited
	}

	var u model.User
	err = s.db.Run(ctx, func(q repository.Querier) error {
		var err error
		u, err = s.users.GetByName(ctx, q, name)
		return err
	})
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return protocol.TokenReply{}, err
	}
	found := err == nil && len(u.KeyHash) > 0
	hash, salt := u.KeyHash, u.KeySalt
	if !found {
		hash, salt = decoyKey()
	}
	if ok := s.verify([]byte(secret), salt, hash); !ok || !found {
		if locked, _, ferr := s.lim.Failure(ctx, name, ipHash); ferr == nil && locked {
			return protocol.TokenReply{}, errs.ErrRateLimited
		}
		return protocol.TokenReply{}, errs.ErrNotAuthenticated
	}

	// best-effort
	_ = s.lim.Success(ctx, name, ipHash)

	tok, err := s.creds.Issue(credstore.FromUser(u))
	if err != nil {
		return protocol.TokenReply{}, fmt.Errorf("%w: %w", errs.ErrInternal, err)
	}
	return protocol.TokenReply{Token: tok, Role: u.Role}, nil
}

// CheckAuth looks the token up and compares the cached role.
func (s *AuthServiceImpl) CheckAuth(token string, role int64) (bool, error) {
	u, ok := s.creds.Lookup(token)
	if !ok {
		return false, errs.ErrNotAuthenticated
	}
	return u.Role == role, nil
}

// ResolveCommand returns the caller and cmd when the caller's role allows cmd.
func (s *AuthServiceImpl) ResolveCommand(token string, cmd protocol.Command) (credstore.UserData, protocol.Command, error) {
	u, ok := s.creds.Lookup(token)
	if !ok {
		return credstore.UserData{}, protocol.Command{}, errs.ErrNotAuthenticated
	}
	cmd, err := permission.Check(u.Role, cmd)
	if err != nil {
		return credstore.UserData{}, protocol.Command{}, err
	}
	return u, cmd, nil
}

// peerHost strips the port so every connection from one host shares a limiter bucket.
func peerHost(peer string) string {
	if host, _, err := net.SplitHostPort(peer); err == nil {
		return host
	}
	return peer
}
