package store

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// Memory is a process-local Backend. Values are lost on restart.
type Memory struct {
	namespaces *xsync.MapOf[string, *xsync.MapOf[string, string]]
}

func NewMemory() *Memory {
	return &Memory{namespaces: xsync.NewMapOf[string, *xsync.MapOf[string, string]]()}
}

func (m *Memory) Get(_ context.Context, namespace, key string) (string, error) {
	ns, ok := m.namespaces.Load(namespace)
	if !ok {
		return "", ErrNotFound
	}
	v, ok := ns.Load(key)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, namespace, key, value string) error {
	ns, _ := m.namespaces.LoadOrCompute(namespace, func() *xsync.MapOf[string, string] {
		return xsync.NewMapOf[string, string]()
	})
	ns.Store(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	if ns, ok := m.namespaces.Load(namespace); ok {
		ns.Delete(key)
	}
	return nil
}

func (m *Memory) Close() error { return nil }
