package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	pkgcrypto "github.com/serbe/rugo-sub000/internal/crypto"
	"github.com/serbe/rugo-sub000/internal/credstore"
	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/protocol"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// UserAdmin runs the User sub-protocol.
type UserAdmin interface {
	// Handle executes one subcommand and returns the tagged response object.
	Handle(ctx context.Context, cmd protocol.UserCommand) (any, error)
}

// UserService keeps the credential store in step with committed user rows.
type UserService struct {
	db    repository.Runner
	users repository.UserRepository
	creds *credstore.Store

	// locks hold a user's commit and cache update together, so cache
	// refreshes land in commit order.
	locks [32]sync.Mutex
}

var _ UserAdmin = (*UserService)(nil)

// NewUserService constructs the user administration service.
func NewUserService(db repository.Runner, users repository.UserRepository, creds *credstore.Store) *UserService {
	return &UserService{db: db, users: users, creds: creds}
}

// Handle dispatches on the subcommand.
func (s *UserService) Handle(ctx context.Context, cmd protocol.UserCommand) (any, error) {
	switch cmd.Op {
	case protocol.UserGet:
		u, err := s.Get(ctx, cmd.ID)
		if err != nil {
			return nil, err
		}
		return protocol.Tagged("User", u), nil
	case protocol.UserGetList:
		list, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		return protocol.Tagged("UserList", list), nil
	case protocol.UserInsert:
		id, err := s.Insert(ctx, cmd.Data)
		if err != nil {
			return nil, err
		}
		return protocol.Tagged("Id", id), nil
	case protocol.UserUpdate:
		n, err := s.Update(ctx, cmd.Data)
		if err != nil {
			return nil, err
		}
		return protocol.Tagged("Rows", n), nil
	case protocol.UserDelete:
		n, err := s.Delete(ctx, cmd.ID)
		if err != nil {
			return nil, err
		}
		return protocol.Tagged("Rows", n), nil
	}
	return nil, fmt.Errorf("%w: unknown user command %q", errs.ErrBadRequest, cmd.Op)
}

// Get loads one user without secrets.
func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := s.db.Run(ctx, func(q repository.Querier) error {
		var err error
		u, err = s.users.Get(ctx, q, id)
		return err
	})
	return u, err
}

// List returns every user without secrets.
func (s *UserService) List(ctx context.Context) ([]model.UserList, error) {
	var list []model.UserList
	err := s.db.Run(ctx, func(q repository.Querier) error {
		var err error
		list, err = s.users.List(ctx, q)
		return err
	})
	return list, err
}

// Insert stores a new user and mints its first token.
func (s *UserService) Insert(ctx context.Context, raw json.RawMessage) (int64, error) {
	u, err := decodeUser(raw)
	if err != nil {
		return 0, err
	}
	if u.Key == "" {
		return 0, fmt.Errorf("%w: key is required", errs.ErrBadRequest)
	}
	if u.KeyHash, u.KeySalt, err = pkgcrypto.NewKey(u.Key); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrInternal, err)
	}

	var id int64
	err = s.db.Run(ctx, func(q repository.Querier) error {
		var err error
		id, err = s.users.Insert(ctx, q, u)
		return err
	})
	if err != nil {
		return 0, err
	}
	u.ID = id
	if _, err := s.creds.Issue(credstore.FromUser(u)); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrInternal, err)
	}
	return id, nil
}

// Update rewrites a user, re-hashing the key only when one is supplied,
// then refreshes the user's cached tokens.
func (s *UserService) Update(ctx context.Context, raw json.RawMessage) (int64, error) {
	u, err := decodeUser(raw)
	if err != nil {
		return 0, err
	}
	if u.ID == 0 {
		return 0, fmt.Errorf("%w: id is required", errs.ErrBadRequest)
	}
	if u.Key != "" {
		if u.KeyHash, u.KeySalt, err = pkgcrypto.NewKey(u.Key); err != nil {
			return 0, fmt.Errorf("%w: %w", errs.ErrInternal, err)
		}
	}

	defer s.lock(u.ID)()

	var n int64
	err = s.db.Run(ctx, func(q repository.Querier) error {
		var err error
		n, err = s.users.Update(ctx, q, u)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.creds.Refresh(credstore.FromUser(u))
	return n, nil
}

// Delete removes a user and revokes its tokens.
func (s *UserService) Delete(ctx context.Context, id int64) (int64, error) {
	defer s.lock(id)()

	var n int64
	err := s.db.Run(ctx, func(q repository.Querier) error {
		var err error
		n, err = s.users.Delete(ctx, q, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.creds.Revoke(id)
	return n, nil
}

func (s *UserService) lock(id int64) (unlock func()) {
	m := &s.locks[uint64(id)%uint64(len(s.locks))]
	m.Lock()
	return m.Unlock
}

func decodeUser(raw json.RawMessage) (model.User, error) {
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return u, fmt.Errorf("%w: %v", errs.ErrBadRequest, err)
	}
	if u.Name == "" {
		return u, fmt.Errorf("%w: name is required", errs.ErrBadRequest)
	}
	return u, nil
}
