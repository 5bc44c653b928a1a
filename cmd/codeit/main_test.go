package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/gsarma/codeit/internal/workflow"
)

func init() {
	color.NoColor = true
}

func TestLangFromFile(t *testing.T) {
	cases := map[string]string{
		"main.py":     "python",
		"Main.java":   "java",
		"a/b/sol.cpp": "cpp",
		"sol.cc":      "cpp",
	}
	for path, want := range cases {
		got, err := langFromFile(path)
		if err != nil || got != want {
			t.Errorf("langFromFile(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := langFromFile("main.rs"); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestReportPrint(t *testing.T) {
	r := reportFromSnapshot(workflow.Snapshot{
		Output: "Traceback\nNameError on line 2",
		Result: &workflow.ExecInfo{Time: 0.25, Memory: 2048, ExitCode: 1},
		Annotations: []workflow.Annotation{
			{StartLine: 2, Message: "Traceback"},
		},
	})
	var buf bytes.Buffer
	r.print(&buf)
	out := buf.String()
	for _, want := range []string{"NameError on line 2\n", "line 2: Traceback", "exit 1", "0.250s 2.0 KiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestReportPrint_NoResult(t *testing.T) {
	var buf bytes.Buffer
	reportFromSnapshot(workflow.Snapshot{Output: "Error: boom"}).print(&buf)
	if buf.String() != "Error: boom\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		5 << 20: "5.0 MiB",
	}
	for n, want := range cases {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
