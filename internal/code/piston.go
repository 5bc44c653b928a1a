package code

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultPistonURL is the public Piston execute endpoint.
const DefaultPistonURL = "https://emkc.org/api/v2/piston/execute"

// PistonConfig holds the connection settings for a Piston instance.
// URL is the full execute endpoint. Timeout of zero leaves the transport
// default in place.
type PistonConfig struct {
	URL       string        `json:"url"`
	AuthToken string        `json:"auth_token,omitempty"`
	Timeout   time.Duration `json:"timeout,omitempty"`
}

// PistonProvider calls the Piston v2 REST API to execute source code.
type PistonProvider struct {
	url       string
	authToken string
	client    *http.Client
}

// NewPistonProvider constructs a PistonProvider from the given config.
func NewPistonProvider(cfg PistonConfig) *PistonProvider {
	url := strings.TrimRight(cfg.URL, "/")
	if url == "" {
		url = DefaultPistonURL
	}
	return &PistonProvider{
		url:       url,
		authToken: cfg.AuthToken,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// pistonStage is one stage (compile or run) of a Piston response.
type pistonStage struct {
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
	Output   string   `json:"output"`
	Code     *int     `json:"code"`
	Signal   *string  `json:"signal"`
	Memory   *int64   `json:"memory"`
	CPUTime  *float64 `json:"cpu_time"`
	WallTime *float64 `json:"wall_time"`
	// Time is reported in seconds by older deployments.
	Time *float64 `json:"time"`
}

// Execute posts one job to Piston and waits for the result. A non-zero exit
// code is a normal result, not an error.
func (p *PistonProvider) Execute(ctx context.Context, req Request) (*Result, error) {
	if req.Files == nil {
		req.Files = []File{}
	}
	bodyJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.authToken != "" {
		httpReq.Header.Set("Authorization", p.authToken)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit to piston: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, newServiceError("piston", resp)
	}

	var raw struct {
		Language string       `json:"language"`
		Version  string       `json:"version"`
		Run      *pistonStage `json:"run"`
		Compile  *pistonStage `json:"compile"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode piston response: %w", err)
	}

	stage := raw.Run
	// A failed compile stage may leave the run stage out entirely.
	if stage == nil {
		stage = raw.Compile
	}
	if stage == nil {
		return nil, fmt.Errorf("decode piston response: missing run stage")
	}
	return stage.result(), nil
}

func (s *pistonStage) result() *Result {
	r := &Result{
		Output: s.Output,
		Stdout: s.Stdout,
		Stderr: s.Stderr,
	}
	if r.Output == "" {
		r.Output = s.Stdout + s.Stderr
	}
	switch {
	case s.Code != nil:
		r.ExitCode = *s.Code
	case s.Signal != nil:
		// Killed by a signal; Piston reports a null code.
		r.ExitCode = -1
	}
	if s.Signal != nil {
		r.Signal = *s.Signal
	}
	if s.Memory != nil {
		r.Memory = *s.Memory
	}
	switch {
	case s.WallTime != nil:
		r.Time = time.Duration(*s.WallTime * float64(time.Millisecond))
	case s.CPUTime != nil:
		r.Time = time.Duration(*s.CPUTime * float64(time.Millisecond))
	case s.Time != nil:
		r.Time = time.Duration(*s.Time * float64(time.Second))
	}
	return r
}
