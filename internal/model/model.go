// Package model defines the directory records exchanged with clients and stored in PostgreSQL.
//
// Nullable columns are pointers or pgtype.Date so that an absent value round-trips
// as JSON null. Audit columns (created_at, updated_at) live only in the store.
package model

// SelectItem is a name-only row used to populate choice inputs.
type SelectItem struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
}

// User is an account able to log in. Key is the plaintext secret accepted on
// insert/update; it is never populated when a user is read back.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Key     string `json:"key,omitempty"`
	Role    int64  `json:"role"`
	KeyHash []byte `json:"-"`
	KeySalt []byte `json:"-"`
}

// UserList is a user row without secrets.
type UserList struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role int64  `json:"role"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
