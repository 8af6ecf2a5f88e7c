package decl

import (
	"fmt"
	"slices"
)

// Ref holds a bound value.
type Ref[T any] struct {
	Value T
}

// Env[T] holds the values of variables in one scope.  Lookups fall back to
// the outer scope, so pushing a scope shadows without mutating the parent.
type Env[T any] struct {
	store map[string]*Ref[T]
	outer *Env[T]
}

// NewEnv[T] creates a new environment nested within an outer one.
// If outer is nil then returns a fresh top-level environment.
func NewEnv[T any](outer *Env[T]) *Env[T] {
	s := make(map[string]*Ref[T])
	return &Env[T]{store: s, outer: outer}
}

// GetRef retrieves a binding by name, checking the current scope first and
// then the outer ones.
func (e *Env[T]) GetRef(name string) *Ref[T] {
	ref, ok := e.store[name]
	if (!ok || ref == nil) && e.outer != nil {
		ref = e.outer.GetRef(name)
	}
	return ref
}

func (e *Env[T]) Get(name string) (out T, found bool) {
	ref := e.GetRef(name)
	if ref != nil {
		out = ref.Value
		found = true
	}
	return
}

func (e *Env[T]) Set(key string, value T) {
	e.store[key] = &Ref[T]{Value: value}
}

// SetMany sets multiple key/values at once.
func (e *Env[T]) SetMany(kvpairs map[string]T) {
	for k, v := range kvpairs {
		e.Set(k, v)
	}
}

// Push opens a nested scope.
func (e *Env[T]) Push() *Env[T] {
	return NewEnv(e)
}

// Extend pushes a scope holding kvpairs.
func (e *Env[T]) Extend(kvpairs map[string]T) *Env[T] {
	out := e.Push()
	out.SetMany(kvpairs)
	return out
}

func (e *Env[T]) String() string {
	return fmt.Sprintf("Env{names: %v}", e.Names())
}

// Names returns every visible name, innermost scope first, each once.
func (e *Env[T]) Names() []string {
	seen := map[string]bool{}
	var out []string
	for env := e; env != nil; env = env.outer {
		keys := make([]string, 0, len(env.store))
		for k := range env.store {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		out = append(out, keys...)
	}
	return out
}
