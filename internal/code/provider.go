package code

import (
	"context"
	"fmt"
	"time"
)

// File is one source file sent to the execution service.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Request is a single execution job.
type Request struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Files    []File `json:"files"`
	Stdin    string `json:"stdin"`
}

// Result is the outcome of a completed execution. Output is the combined
// text shown to the user; Stdout and Stderr are kept when the service
// reports them separately.
type Result struct {
	Output   string        `json:"output"`
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Time     time.Duration `json:"time"`
	Memory   int64         `json:"memory"`
	ExitCode int           `json:"exit_code"`
	Signal   string        `json:"signal,omitempty"`
}

// Provider defines the interface each code execution provider must implement.
type Provider interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// NewProvider builds the named backend. An empty url selects the backend's
// default endpoint.
func NewProvider(backend, url, authToken string, timeout time.Duration) (Provider, error) {
	switch backend {
	case "piston":
		return NewPistonProvider(PistonConfig{URL: url, AuthToken: authToken, Timeout: timeout}), nil
	case "judge0":
		return NewJudge0Provider(Judge0Config{URL: url, AuthToken: authToken, Timeout: timeout}), nil
	default:
		return nil, fmt.Errorf("unsupported code provider: %s", backend)
	}
}
