package theme

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gsarma/codeit/internal/store"
)

// Default is the theme used when none has been chosen.
const Default = "light"

// Editor themes.
const (
	EditorDark  = "vs-dark"
	EditorLight = "light"
)

var names = []string{"light", "dark", "retro", "cyberpunk", "valentine", "aqua"}

// darkThemes are rendered with the dark editor theme.
var darkThemes = []string{"dark", "night", "cyberpunk"}

// Names returns the selectable theme names.
func Names() []string {
	return slices.Clone(names)
}

// Valid reports whether name is a selectable theme.
func Valid(name string) bool {
	return slices.Contains(names, name)
}

// EditorTheme maps an application theme to the editor theme.
func EditorTheme(name string) string {
	if slices.Contains(darkThemes, name) {
		return EditorDark
	}
	return EditorLight
}

// Load returns the saved theme, or Default when none is saved.
func Load(ctx context.Context, kv store.KV) (string, error) {
	name, err := kv.Get(ctx, store.ThemeKey)
	if errors.Is(err, store.ErrNotFound) || name == "" {
		return Default, nil
	}
	if err != nil {
		return "", fmt.Errorf("load theme: %w", err)
	}
	return name, nil
}

// Save persists name as the chosen theme.
func Save(ctx context.Context, kv store.KV, name string) error {
	if err := kv.Set(ctx, store.ThemeKey, name); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Attribute is a shared, observable theme value. Every change is pushed to
// the current subscribers.
type Attribute struct {
	mu     sync.Mutex
	value  string
	nextID int
	subs   map[int]func(string)
}

func NewAttribute(initial string) *Attribute {
	if initial == "" {
		initial = Default
	}
	return &Attribute{value: initial, subs: make(map[int]func(string))}
}

func (a *Attribute) Get() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// Set changes the value and notifies subscribers. Setting the current value
// again is not a change.
func (a *Attribute) Set(value string) {
	a.mu.Lock()
	if value == a.value {
		a.mu.Unlock()
		return
	}
	a.value = value
	fns := make([]func(string), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Subscribe registers fn for future changes and returns a function that
// removes it.
func (a *Attribute) Subscribe(fn func(string)) (cancel func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()
		})
	}
}
