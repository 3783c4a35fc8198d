package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{}

var _ repository.UserRepository = UserRepo{}

// NewUserRepo constructs a user repository.
func NewUserRepo() UserRepo { return UserRepo{} }

// Get selects a user by ID. Secrets are not loaded. ID 0 yields the empty user.
func (UserRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.User, error) {
	if id == 0 {
		return model.User{}, nil
	}
	const sql = `SELECT id, name, role FROM users WHERE id=$1`
	var u model.User
	err := q.QueryRow(ctx, sql, id).Scan(&u.ID, &u.Name, &u.Role)
	return u, scanOne(err)
}

// GetByName selects a user with its key hash and salt.
func (UserRepo) GetByName(ctx context.Context, q repository.Querier, name string) (model.User, error) {
	const sql = `SELECT id, name, key_hash, key_salt, role FROM users WHERE name=$1`
	var u model.User
	err := q.QueryRow(ctx, sql, name).Scan(&u.ID, &u.Name, &u.KeyHash, &u.KeySalt, &u.Role)
	return u, scanOne(err)
}

func scanUserList(row pgx.CollectableRow) (model.UserList, error) {
	var u model.UserList
	err := row.Scan(&u.ID, &u.Name, &u.Role)
	return u, err
}

// List returns every user ordered by name.
func (UserRepo) List(ctx context.Context, q repository.Querier) ([]model.UserList, error) {
	return collect(ctx, q, `SELECT id, name, role FROM users ORDER BY name ASC`, scanUserList)
}

// All returns the identity of every user.
func (UserRepo) All(ctx context.Context, q repository.Querier) ([]model.User, error) {
	return collect(ctx, q, `SELECT id, name, role FROM users`, func(row pgx.CollectableRow) (model.User, error) {
		var u model.User
		err := row.Scan(&u.ID, &u.Name, &u.Role)
		return u, err
	})
}

// Insert adds a user and returns its ID.
func (UserRepo) Insert(ctx context.Context, q repository.Querier, u model.User) (int64, error) {
	const sql = `
INSERT INTO users (name, key_hash, key_salt, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, sql, u.Name, u.KeyHash, u.KeySalt, u.Role).Scan(&id)
	if isUniqueViolation(err) {
		return 0, errs.ErrAlreadyExists
	}
	return id, err
}

// Update rewrites name and role, and the key when a new hash is supplied.
func (UserRepo) Update(ctx context.Context, q repository.Querier, u model.User) (int64, error) {
	const withKey = `
UPDATE users
SET name = $2, role = $3, key_hash = $4, key_salt = $5, updated_at = now()
WHERE id = $1`
	const withoutKey = `
UPDATE users
SET name = $2, role = $3, updated_at = now()
WHERE id = $1`
	var (
		n   int64
		err error
	)
	if len(u.KeyHash) > 0 {
		n, err = expectOne(q.Exec(ctx, withKey, u.ID, u.Name, u.Role, u.KeyHash, u.KeySalt))
	} else {
		n, err = expectOne(q.Exec(ctx, withoutKey, u.ID, u.Name, u.Role))
	}
	if isUniqueViolation(err) {
		return 0, errs.ErrAlreadyExists
	}
	return n, err
}

// Delete removes a user.
func (UserRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	return expectOne(q.Exec(ctx, `DELETE FROM users WHERE id=$1`, id))
}
