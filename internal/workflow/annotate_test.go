package workflow_test

import (
	"testing"

	"github.com/gsarma/codeit/internal/workflow"
)

func TestAnnotate(t *testing.T) {
	source := "a\nbb\nccc\ndddd\n"
	cases := []struct {
		name    string
		output  string
		line    int
		endCol  int
		message string
	}{
		{"python traceback", "Traceback\n  File \"main.py\", line 2, in <module>", 2, 3, "Traceback"},
		{"case insensitive", "Error on LINE 3", 3, 4, "Error on LINE 3"},
		{"first match wins", "line 4 then line 1", 4, 5, "line 4 then line 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := workflow.Annotate(tc.output, source)
			if len(got) != 1 {
				t.Fatalf("expected one annotation, got %+v", got)
			}
			a := got[0]
			if a.StartLine != tc.line || a.EndLine != tc.line || a.EndColumn != tc.endCol {
				t.Errorf("unexpected range %+v", a)
			}
			if a.Message != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, a.Message)
			}
		})
	}
}

func TestAnnotate_NoAnnotation(t *testing.T) {
	source := "one\ntwo\n"
	for _, output := range []string{
		"",
		"Segmentation fault (core dumped)",
		"main.cpp:5:3: error: expected ';'", // gcc format has no "line"
		"line: 2",
		"line 0",
		"line 9",
	} {
		if got := workflow.Annotate(output, source); len(got) != 0 {
			t.Errorf("%q: expected no annotation, got %+v", output, got)
		}
	}
}

func TestAnnotate_EndColumnCountsRunes(t *testing.T) {
	got := workflow.Annotate("line 1", "héllo\r\n")
	if len(got) != 1 || got[0].EndColumn != 6 {
		t.Errorf("expected end column 6, got %+v", got)
	}
}
