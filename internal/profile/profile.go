package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/gsarma/codeit/internal/crypto"
	"github.com/gsarma/codeit/internal/store"
	"github.com/gsarma/codeit/internal/theme"
)

var (
	// ErrBlankName is returned by Login for empty or whitespace-only names.
	ErrBlankName = errors.New("enter username")
	// ErrUnknownTheme is returned by SetTheme for names outside theme.Names.
	ErrUnknownTheme = errors.New("unknown theme")
)

// Profile is one client (one browser): its private storage namespace and the
// theme attribute shared by all of its editor sessions.
type Profile struct {
	ID    uuid.UUID
	KV    store.KV
	Theme *theme.Attribute
}

// SetTheme validates, persists and applies a theme.
func (p *Profile) SetTheme(ctx context.Context, name string) error {
	if !theme.Valid(name) {
		return fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	if err := theme.Save(ctx, p.KV, name); err != nil {
		return err
	}
	p.Theme.Set(name)
	return nil
}

// Login records a display name. There is no credential check; the name only
// marks the client as logged in.
func (p *Profile) Login(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrBlankName
	}
	if err := p.KV.Set(ctx, store.UserKey, name); err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}
	return name, nil
}

// Logout forgets the display name.
func (p *Profile) Logout(ctx context.Context) error {
	if err := p.KV.Delete(ctx, store.UserKey); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// User returns the display name and whether one is set.
func (p *Profile) User(ctx context.Context) (string, bool, error) {
	name, err := p.KV.Get(ctx, store.UserKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load user: %w", err)
	}
	return name, true, nil
}

// Service resolves client identities to profiles.
//
// Only profiles of clients with open sessions are held in memory; Retain and
// Release track them. Other requests get a profile built from storage.
type Service struct {
	backend  store.Backend
	sealer   *crypto.Sealer
	logger   *zap.Logger
	profiles *xsync.MapOf[uuid.UUID, heldProfile]
}

type heldProfile struct {
	p    *Profile
	refs int
}

func NewService(backend store.Backend, sealer *crypto.Sealer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:  backend,
		sealer:   sealer,
		logger:   logger,
		profiles: xsync.NewMapOf[uuid.UUID, heldProfile](),
	}
}

// Get returns the held profile for id, or a new one whose theme attribute
// starts from the saved theme.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	if h, ok := s.profiles.Load(id); ok {
		return h.p, nil
	}
	kv := store.Scope(s.backend, id.String())
	name, err := theme.Load(ctx, kv)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:    id,
		KV:    kv,
		Theme: theme.NewAttribute(name),
	}, nil
}

// Retain holds the client's profile until a matching Release. If the client
// is already held, the held profile is returned instead of p.
func (s *Service) Retain(p *Profile) *Profile {
	h, _ := s.profiles.Compute(p.ID, func(old heldProfile, loaded bool) (heldProfile, bool) {
		if loaded {
			return heldProfile{p: old.p, refs: old.refs + 1}, false
		}
		return heldProfile{p: p, refs: 1}, false
	})
	return h.p
}

// Release drops one hold on id. The profile is forgotten with the last one.
func (s *Service) Release(id uuid.UUID) {
	s.profiles.Compute(id, func(old heldProfile, loaded bool) (heldProfile, bool) {
		if !loaded || old.refs <= 1 {
			return heldProfile{}, true
		}
		return heldProfile{p: old.p, refs: old.refs - 1}, false
	})
}

// Held returns the number of profiles kept in memory.
func (s *Service) Held() int {
	return s.profiles.Size()
}

// sealID encodes id for the identity cookie.
func (s *Service) sealID(id uuid.UUID) (string, error) {
	return s.sealer.Seal(id[:])
}

// openID decodes an identity cookie.
func (s *Service) openID(value string) (uuid.UUID, error) {
	raw, err := s.sealer.Open(value)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.FromBytes(raw)
}
