package repository

import (
	"context"

	"github.com/serbe/rugo-sub000/internal/model"
)

// UserRepository provides CRUD access for users and the boot-time user list.
type UserRepository interface {
	// Get loads a user by ID without secrets.
	Get(ctx context.Context, q Querier, id int64) (model.User, error)
	// GetByName loads a user with its key hash and salt.
	GetByName(ctx context.Context, q Querier, name string) (model.User, error)
	// List returns all users without secrets, ordered by name.
	List(ctx context.Context, q Querier) ([]model.UserList, error)
	// All returns every user identity used to seed the credential store.
	All(ctx context.Context, q Querier) ([]model.User, error)
	// Insert stores a user whose KeyHash/KeySalt are set and returns its ID.
	Insert(ctx context.Context, q Querier, u model.User) (int64, error)
	// Update rewrites name and role, and the key when KeyHash is set.
	Update(ctx context.Context, q Querier, u model.User) (int64, error)
	// Delete removes a user.
	Delete(ctx context.Context, q Querier, id int64) (int64, error)
}
