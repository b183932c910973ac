// Package registry maps component names to factories, so configuration can
// name the problems, budgets and actors to build.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var ErrUnknown = errors.New("unknown name")

type Factory[T any] func(params Params) (T, error)

type Registry[T any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// New returns an empty registry. kind names what it builds in errors.
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, factories: make(map[string]Factory[T])}
}

// Register adds a factory. Registering the same name twice panics.
func (r *Registry[T]) Register(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		panic(fmt.Sprintf("%s %q registered twice", r.kind, name))
	}
	r.factories[name] = factory
}

func (r *Registry[T]) New(name string, params Params) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w (known: %v)", r.kind, name, ErrUnknown, r.Names())
	}
	v, err := factory(params)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", r.kind, name, err)
	}
	return v, nil
}

// Names returns the registered names in ascending order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
