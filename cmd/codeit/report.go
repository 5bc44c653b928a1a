package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/gsarma/codeit/internal/workflow"
	codeit "github.com/gsarma/codeit/sdk"
)

// report is what a run prints, whichever way it ran.
type report struct {
	Output   string
	HasExit  bool
	ExitCode int
	Seconds  float64
	Memory   int64
	Notes    []note
}

type note struct {
	Line    int
	Message string
}

func reportFromSnapshot(s workflow.Snapshot) report {
	r := report{Output: s.Output}
	if s.Result != nil {
		r.HasExit = true
		r.ExitCode = s.Result.ExitCode
		r.Seconds = s.Result.Time
		r.Memory = s.Result.Memory
	}
	for _, a := range s.Annotations {
		r.Notes = append(r.Notes, note{Line: a.StartLine, Message: a.Message})
	}
	return r
}

func reportFromSession(s *codeit.Session) report {
	r := report{Output: s.Output}
	if s.Result != nil {
		r.HasExit = true
		r.ExitCode = s.Result.ExitCode
		r.Seconds = s.Result.Time
		r.Memory = s.Result.Memory
	}
	for _, a := range s.Annotations {
		r.Notes = append(r.Notes, note{Line: a.StartLine, Message: a.Message})
	}
	return r
}

func (r report) print(w io.Writer) {
	if r.Output == "" {
		return
	}
	fmt.Fprint(w, r.Output)
	if !strings.HasSuffix(r.Output, "\n") {
		fmt.Fprintln(w)
	}
	for _, n := range r.Notes {
		fmt.Fprintln(w, color.RedString("line %d: %s", n.Line, n.Message))
	}
	if !r.HasExit {
		return
	}
	status := color.GreenString("exit %d", r.ExitCode)
	if r.ExitCode != 0 {
		status = color.RedString("exit %d", r.ExitCode)
	}
	fmt.Fprintf(w, "%s %s\n", status, color.New(color.Faint).Sprintf("%.3fs %s", r.Seconds, formatBytes(r.Memory)))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
