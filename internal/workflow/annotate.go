package workflow

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Severity of an editor marker.
type Severity string

const SeverityError Severity = "error"

// Annotation marks a range of the editor with a message. Lines and columns
// are 1-based; EndColumn is exclusive.
type Annotation struct {
	Severity    Severity `json:"severity"`
	StartLine   int      `json:"start_line"`
	StartColumn int      `json:"start_column"`
	EndLine     int      `json:"end_line"`
	EndColumn   int      `json:"end_column"`
	Message     string   `json:"message"`
}

var lineRef = regexp.MustCompile(`(?i)line (\d+)`)

// Annotate looks for the first "line <n>" reference in output and returns a
// full-width error annotation for that line of source. It is a heuristic:
// output without such a reference, or referencing a line source does not
// have, yields no annotation.
func Annotate(output, source string) []Annotation {
	m := lineRef.FindStringSubmatch(output)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	lines := strings.Split(source, "\n")
	if n < 1 || n > len(lines) {
		return nil
	}
	line := strings.TrimSuffix(lines[n-1], "\r")
	message, _, _ := strings.Cut(output, "\n")
	return []Annotation{{
		Severity:    SeverityError,
		StartLine:   n,
		StartColumn: 1,
		EndLine:     n,
		EndColumn:   utf8.RuneCountInString(line) + 1,
		Message:     message,
	}}
}
