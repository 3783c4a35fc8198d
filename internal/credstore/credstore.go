// Package credstore holds the process-wide map from opaque session tokens to users.
//
// Tokens are never persisted. A restart invalidates every token.
package credstore

import (
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/serbe/rugo-sub000/internal/model"
)

// UserData is what a token resolves to.
type UserData struct {
	UserID int64
	Name   string
	Role   int64
}

// FromUser extracts the cached identity of u.
func FromUser(u model.User) UserData {
	return UserData{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// Store is a mutex-guarded token map with a per-user index.
// No I/O happens while the lock is held.
type Store struct {
	mu     sync.Mutex
	tokens map[string]UserData
	byUser map[int64]map[string]struct{}
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tokens: make(map[string]UserData),
		byUser: make(map[int64]map[string]struct{}),
	}
}

// Seed returns a store holding one fresh token per user.
func Seed(users []model.User) (*Store, error) {
	s := New()
	for _, u := range users {
		if _, err := s.Issue(FromUser(u)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewToken returns a random 32-character hex token.
func NewToken() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// Lookup resolves token without mutating the store.
func (s *Store) Lookup(token string) (UserData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.tokens[token]
	return u, ok
}

// Insert binds token to u, replacing any previous binding of token.
func (s *Store) Insert(token string, u UserData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(token, u)
}

// Remove drops token. Unknown tokens are ignored.
func (s *Store) Remove(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(token)
}

// Issue mints a new token for u and stores it.
func (s *Store) Issue(u UserData) (string, error) {
	tok, err := NewToken()
	if err != nil {
		return "", err
	}
	s.Insert(tok, u)
	return tok, nil
}

// Refresh rewrites every token of u.UserID with the new identity.
func (s *Store) Refresh(u UserData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok := range s.byUser[u.UserID] {
		s.tokens[tok] = u
	}
}

// Revoke removes every token of userID and returns how many were dropped.
func (s *Store) Revoke(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	toks := s.byUser[userID]
	for tok := range toks {
		delete(s.tokens, tok)
	}
	delete(s.byUser, userID)
	return len(toks)
}

// Len returns the number of live tokens.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func (s *Store) insertLocked(token string, u UserData) {
	s.removeLocked(token)
	s.tokens[token] = u
	set, ok := s.byUser[u.UserID]
	if !ok {
		set = make(map[string]struct{})
		s.byUser[u.UserID] = set
	}
	set[token] = struct{}{}
}

func (s *Store) removeLocked(token string) {
	old, ok := s.tokens[token]
	if !ok {
		return
	}
	delete(s.tokens, token)
	if set := s.byUser[old.UserID]; set != nil {
		delete(set, token)
		if len(set) == 0 {
			delete(s.byUser, old.UserID)
		}
	}
}
