// Package store provides the per-client key-value persistence used in place
// of a browser's local storage. A Backend holds many namespaces (one per
// client); KV is the view of a single namespace.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set or was deleted.
var ErrNotFound = errors.New("key not found")

// Well-known keys.
const (
	ThemeKey = "theme"
	UserKey  = "user"
)

// CodeKey is the key under which the source text for a language is saved.
func CodeKey(language string) string {
	return "code-" + language
}

// KV is a single namespace of string keys and values.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend stores values for many namespaces.
type Backend interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Close() error
}

// Scope returns the KV view of one namespace of b.
func Scope(b Backend, namespace string) KV {
	return &scoped{backend: b, namespace: namespace}
}

type scoped struct {
	backend   Backend
	namespace string
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.backend.Get(ctx, s.namespace, key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.namespace, key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.namespace, key)
}
