package service

import (
	"context"
	"sort"
	"time"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/limiter"
	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// fakeRunner runs fn with a nil Querier, or fails before fn when err is set.
type fakeRunner struct {
	err   error
	calls int
}

var _ repository.Runner = (*fakeRunner)(nil)

func (r *fakeRunner) Run(_ context.Context, fn func(q repository.Querier) error) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return fn(nil)
}

type fakeUsers struct {
	byID   map[int64]model.User
	nextID int64

	insertErr error
	lastSaved model.User
	onUpdate  func(u model.User)
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]model.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeUsers) Get(_ context.Context, _ repository.Querier, id int64) (model.User, error) {
	if id == 0 {
		return model.User{}, nil
	}
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return model.User{ID: u.ID, Name: u.Name, Role: u.Role}, nil
}

func (f *fakeUsers) GetByName(_ context.Context, _ repository.Querier, name string) (model.User, error) {
	for _, u := range f.byID {
		if u.Name == name {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context, _ repository.Querier) ([]model.UserList, error) {
	out := []model.UserList{}
	for _, u := range f.byID {
		out = append(out, model.UserList{ID: u.ID, Name: u.Name, Role: u.Role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeUsers) All(_ context.Context, _ repository.Querier) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Insert(_ context.Context, _ repository.Querier, u model.User) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	for _, ex := range f.byID {
		if ex.Name == u.Name {
			return 0, errs.ErrAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	f.lastSaved = u
	return u.ID, nil
}

func (f *fakeUsers) Update(_ context.Context, _ repository.Querier, u model.User) (int64, error) {
	if f.onUpdate != nil {
		f.onUpdate(u)
	}
	old, ok := f.byID[u.ID]
	if !ok {
		return 0, errs.ErrNotFound
	}
	if len(u.KeyHash) == 0 {
		u.KeyHash, u.KeySalt = old.KeyHash, old.KeySalt
	}
	f.byID[u.ID] = u
	f.lastSaved = u
	return 1, nil
}

func (f *fakeUsers) Delete(_ context.Context, _ repository.Querier, id int64) (int64, error) {
	if _, ok := f.byID[id]; !ok {
		return 0, errs.ErrNotFound
	}
	delete(f.byID, id)
	return 1, nil
}

type fakeLimiter struct {
	denied   bool
	allowErr error

	failLocked bool

	allowCalls   int
	failureCalls int
	successCalls int
	lastIPHash   []byte
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(_ context.Context, _ string, ipHash []byte) (bool, time.Duration, error) {
	l.allowCalls++
	l.lastIPHash = ipHash
	if l.denied {
		return false, time.Minute, l.allowErr
	}
	return true, 0, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return nil
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	if l.failLocked {
		return true, time.Minute, nil
	}
	return false, 0, nil
}
