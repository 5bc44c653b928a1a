package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/gsarma/codeit/internal/code"
	"github.com/gsarma/codeit/internal/language"
	"github.com/gsarma/codeit/internal/metrics"
	"github.com/gsarma/codeit/internal/profile"
	"github.com/gsarma/codeit/internal/workflow"
)

// ErrNotFound is returned for unknown sessions and for sessions owned by
// another client.
var ErrNotFound = errors.New("session not found")

// Entry is one open editor session.
type Entry struct {
	ID      uuid.UUID
	Owner   uuid.UUID
	Session *workflow.Session

	lastUsed atomic.Int64
}

func (e *Entry) touch(now time.Time) {
	e.lastUsed.Store(now.UnixNano())
}

// LastUsed is the time of the most recent lookup.
func (e *Entry) LastUsed() time.Time {
	return time.Unix(0, e.lastUsed.Load())
}

// Profiles keeps a client's profile in memory while it has open sessions.
type Profiles interface {
	Retain(p *profile.Profile) *profile.Profile
	Release(id uuid.UUID)
}

// Manager holds the open sessions of all clients.
type Manager struct {
	provider code.Provider
	profiles Profiles
	versions language.Versions
	logger   *zap.Logger
	sessions *xsync.MapOf[uuid.UUID, *Entry]
	now      func() time.Time
}

// NewManager creates a Manager. profiles may be nil when profiles need not
// be held.
func NewManager(provider code.Provider, versions language.Versions, profiles Profiles, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if versions == nil {
		versions = language.DefaultVersions()
	}
	return &Manager{
		provider: provider,
		profiles: profiles,
		versions: versions,
		logger:   logger,
		sessions: xsync.NewMapOf[uuid.UUID, *Entry](),
		now:      time.Now,
	}
}

// Create opens a session for p, following p's storage and theme. While the
// session is open the client's profile is retained, so all of its sessions
// share one theme attribute.
func (m *Manager) Create(ctx context.Context, p *profile.Profile) (*Entry, error) {
	if m.profiles != nil {
		p = m.profiles.Retain(p)
	}
	s, err := workflow.New(ctx, workflow.Deps{
		Store:    p.KV,
		Provider: m.provider,
		Versions: m.versions,
		Theme:    p.Theme,
		Logger:   m.logger,
	})
	if err != nil {
		if m.profiles != nil {
			m.profiles.Release(p.ID)
		}
		return nil, err
	}
	e := &Entry{ID: uuid.New(), Owner: p.ID, Session: s}
	e.touch(m.now())
	m.sessions.Store(e.ID, e)
	metrics.SessionOpened()
	m.logger.Debug("session opened", zap.Stringer("session", e.ID), zap.Stringer("client", p.ID))
	return e, nil
}

// Get returns owner's session id and marks it as used.
func (m *Manager) Get(owner, id uuid.UUID) (*Entry, error) {
	e, ok := m.sessions.Load(id)
	if !ok || e.Owner != owner {
		return nil, ErrNotFound
	}
	e.touch(m.now())
	return e, nil
}

// Delete closes and removes owner's session id.
func (m *Manager) Delete(owner, id uuid.UUID) error {
	e, ok := m.sessions.Load(id)
	if !ok || e.Owner != owner {
		return ErrNotFound
	}
	m.remove(e)
	return nil
}

func (m *Manager) remove(e *Entry) {
	if _, loaded := m.sessions.LoadAndDelete(e.ID); loaded {
		e.Session.Close()
		if m.profiles != nil {
			m.profiles.Release(e.Owner)
		}
		metrics.SessionClosed()
	}
}

// Touch marks e as used.
func (m *Manager) Touch(e *Entry) {
	e.touch(m.now())
}

// Versions returns the pinned language versions used for runs.
func (m *Manager) Versions() language.Versions {
	return m.versions
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	return m.sessions.Size()
}

// EvictIdle closes sessions not used since before. Sessions with a run in
// flight are kept. It returns the number of sessions closed.
func (m *Manager) EvictIdle(_ context.Context, before time.Time) int {
	var idle []*Entry
	m.sessions.Range(func(_ uuid.UUID, e *Entry) bool {
		if e.LastUsed().Before(before) && !e.Session.Running() {
			idle = append(idle, e)
		}
		return true
	})
	for _, e := range idle {
		m.remove(e)
	}
	if len(idle) > 0 {
		m.logger.Info("evicted idle sessions", zap.Int("count", len(idle)))
	}
	return len(idle)
}
