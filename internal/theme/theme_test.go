package theme_test

import (
	"context"
	"testing"

	"github.com/gsarma/codeit/internal/store"
	"github.com/gsarma/codeit/internal/theme"
)

func TestEditorTheme(t *testing.T) {
	cases := map[string]string{
		"dark":      theme.EditorDark,
		"night":     theme.EditorDark,
		"cyberpunk": theme.EditorDark,
		"light":     theme.EditorLight,
		"retro":     theme.EditorLight,
		"valentine": theme.EditorLight,
		"aqua":      theme.EditorLight,
		"":          theme.EditorLight,
	}
	for name, want := range cases {
		if got := theme.EditorTheme(name); got != want {
			t.Errorf("%q: expected %s, got %s", name, want, got)
		}
	}
}

func TestValid(t *testing.T) {
	for _, name := range theme.Names() {
		if !theme.Valid(name) {
			t.Errorf("%s should be valid", name)
		}
	}
	if theme.Valid("night") {
		t.Error("night is mapped by the editor but not selectable")
	}
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	kv := store.Scope(store.NewMemory(), "c")

	got, err := theme.Load(ctx, kv)
	if err != nil || got != theme.Default {
		t.Fatalf("expected default theme, got %q (%v)", got, err)
	}

	if err := theme.Save(ctx, kv, "retro"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, _ := theme.Load(ctx, kv); got != "retro" {
		t.Errorf("expected retro, got %q", got)
	}
}

func TestAttribute_NotifiesSubscribers(t *testing.T) {
	a := theme.NewAttribute("")
	if a.Get() != theme.Default {
		t.Fatalf("expected default initial value, got %q", a.Get())
	}

	var seen []string
	cancel := a.Subscribe(func(v string) { seen = append(seen, v) })

	a.Set("dark")
	a.Set("dark") // unchanged, no notification
	a.Set("aqua")
	cancel()
	a.Set("light")

	if len(seen) != 2 || seen[0] != "dark" || seen[1] != "aqua" {
		t.Errorf("unexpected notifications: %v", seen)
	}
	if a.Get() != "light" {
		t.Errorf("expected light, got %q", a.Get())
	}
	cancel() // second cancel is a no-op
}
