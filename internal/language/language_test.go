package language_test

import (
	"strings"
	"testing"

	"github.com/gsarma/codeit/internal/language"
)

func TestAll_ThreeLanguagesInOrder(t *testing.T) {
	all := language.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 languages, got %d", len(all))
	}
	want := []string{"python", "java", "cpp"}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := language.All()
	all[0].Template = "mutated"

	d, _ := language.Lookup("python")
	if d.Template == "mutated" {
		t.Error("All must not expose the package-level table")
	}
}

func TestLookup(t *testing.T) {
	d, ok := language.Lookup("cpp")
	if !ok {
		t.Fatal("expected cpp to be known")
	}
	if d.Label != "C++" || d.Ext != "cpp" {
		t.Errorf("unexpected descriptor: %+v", d)
	}
	if !strings.Contains(d.Template, "#include <iostream>") {
		t.Errorf("cpp template should include iostream, got %q", d.Template)
	}

	if _, ok := language.Lookup("cobol"); ok {
		t.Error("expected cobol to be unknown")
	}
}

func TestDescriptor_FileNames(t *testing.T) {
	d, _ := language.Lookup("java")
	if got := d.SourceFile(); got != "main.java" {
		t.Errorf("expected main.java, got %s", got)
	}
	if got := d.DownloadName(); got != "code.java" {
		t.Errorf("expected code.java, got %s", got)
	}
}

func TestDefaultVersions(t *testing.T) {
	v := language.DefaultVersions()
	cases := map[string]string{"python": "3.10.0", "java": "15.0.2", "cpp": "10.2.0"}
	for id, want := range cases {
		if got := v.Version(id); got != want {
			t.Errorf("%s: expected %s, got %s", id, want, got)
		}
	}

	delete(v, "python")
	if language.DefaultVersions().Version("python") == "" {
		t.Error("DefaultVersions should return an independent copy")
	}
	if v.Version("python") != "" {
		t.Error("expected removed mapping to resolve to empty version")
	}
}

func TestJudge0ID(t *testing.T) {
	for _, d := range language.All() {
		if _, ok := language.Judge0ID(d.ID); !ok {
			t.Errorf("missing Judge0 id for %s", d.ID)
		}
	}
}
