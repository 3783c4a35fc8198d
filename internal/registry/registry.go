// Package registry maps entity kind names and list names to their store operations.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// Kind is the type-erased capability set of one record kind.
// Insert and Update receive the raw record JSON and decode it themselves.
type Kind interface {
	Get(ctx context.Context, q repository.Querier, id int64) (any, error)
	Insert(ctx context.Context, q repository.Querier, raw json.RawMessage) (int64, error)
	Update(ctx context.Context, q repository.Querier, raw json.RawMessage) (int64, error)
	Delete(ctx context.Context, q repository.Querier, id int64) (int64, error)
}

// ListFunc runs one list or selection query.
type ListFunc func(ctx context.Context, q repository.Querier) (any, error)

// Registry is a closed catalogue filled at startup and read-only afterwards.
type Registry struct {
	kinds map[string]Kind
	lists map[string]ListFunc
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{kinds: map[string]Kind{}, lists: map[string]ListFunc{}}
}

// Add registers kind under name. Registering a name twice panics.
func (r *Registry) Add(name string, k Kind) {
	if _, dup := r.kinds[name]; dup {
		panic("registry: duplicate kind " + name)
	}
	r.kinds[name] = k
}

// AddList registers a list query under name. Registering a name twice panics.
func (r *Registry) AddList(name string, fn ListFunc) {
	if _, dup := r.lists[name]; dup {
		panic("registry: duplicate list " + name)
	}
	r.lists[name] = fn
}

// Kind returns the kind registered under name or errs.ErrBadRequest.
func (r *Registry) Kind(name string) (Kind, error) {
	k, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", errs.ErrBadRequest, name)
	}
	return k, nil
}

// List returns the list query registered under name or errs.ErrBadRequest.
func (r *Registry) List(name string) (ListFunc, error) {
	fn, ok := r.lists[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown list %q", errs.ErrBadRequest, name)
	}
	return fn, nil
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string { return sortedKeys(r.kinds) }

// Lists returns the registered list names, sorted.
func (r *Registry) Lists() []string { return sortedKeys(r.lists) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Entity adapts a typed repository to Kind.
func Entity[T any](repo repository.Entity[T]) Kind { return entity[T]{repo: repo} }

type entity[T any] struct{ repo repository.Entity[T] }

func (e entity[T]) Get(ctx context.Context, q repository.Querier, id int64) (any, error) {
	v, err := e.repo.Get(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e entity[T]) Insert(ctx context.Context, q repository.Querier, raw json.RawMessage) (int64, error) {
	v, err := decode[T](raw)
	if err != nil {
		return 0, err
	}
	return e.repo.Insert(ctx, q, v)
}

func (e entity[T]) Update(ctx context.Context, q repository.Querier, raw json.RawMessage) (int64, error) {
	v, err := decode[T](raw)
	if err != nil {
		return 0, err
	}
	return e.repo.Update(ctx, q, v)
}

func (e entity[T]) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	return e.repo.Delete(ctx, q, id)
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", errs.ErrBadRequest, err)
	}
	return v, nil
}

// List adapts a typed list query to ListFunc.
func List[T any](fn func(ctx context.Context, q repository.Querier) ([]T, error)) ListFunc {
	return func(ctx context.Context, q repository.Querier) (any, error) {
		v, err := fn(ctx, q)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
