package code

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gsarma/codeit/internal/language"
)

// Judge0Config holds the connection settings for a Judge0 CE instance.
// URL is the base URL of the Judge0 server (e.g. "http://judge0-server:2358").
// AuthToken is optional; send it as X-Auth-Token when AUTHN_TOKEN is configured.
type Judge0Config struct {
	URL       string        `json:"url"`
	AuthToken string        `json:"auth_token,omitempty"`
	Timeout   time.Duration `json:"timeout,omitempty"`
}

// Judge0Provider calls the Judge0 CE REST API to execute source code.
type Judge0Provider struct {
	url       string
	authToken string
	client    *http.Client
}

// DefaultJudge0URL is the address of a Judge0 server in the compose setup.
const DefaultJudge0URL = "http://judge0-server:2358"

// NewJudge0Provider constructs a Judge0Provider from the given config.
func NewJudge0Provider(cfg Judge0Config) *Judge0Provider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	url := strings.TrimRight(cfg.URL, "/")
	if url == "" {
		url = DefaultJudge0URL
	}
	return &Judge0Provider{
		url:       url,
		authToken: cfg.AuthToken,
		client:    &http.Client{Timeout: timeout},
	}
}

// Execute submits source code to Judge0 and waits synchronously for the result.
// Judge0 has no version negotiation and runs a single file, so only the first
// file of req is sent and req.Version is ignored. Source code and stdin are
// base64-encoded in the request; Judge0 returns stdout/stderr as base64 which
// we decode before returning.
func (p *Judge0Provider) Execute(ctx context.Context, req Request) (*Result, error) {
	languageID, ok := language.Judge0ID(req.Language)
	if !ok || len(req.Files) == 0 {
		return nil, ErrUnsupportedLanguage
	}

	reqBody := map[string]interface{}{
		"source_code": base64.StdEncoding.EncodeToString([]byte(req.Files[0].Content)),
		"language_id": languageID,
	}
	if req.Stdin != "" {
		reqBody["stdin"] = base64.StdEncoding.EncodeToString([]byte(req.Stdin))
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.url+"/submissions?base64_encoded=true&wait=true", bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.authToken != "" {
		httpReq.Header.Set("X-Auth-Token", p.authToken)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit to judge0: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, newServiceError("judge0", resp)
	}

	var raw struct {
		Stdout        *string `json:"stdout"`
		Stderr        *string `json:"stderr"`
		CompileOutput *string `json:"compile_output"`
		Message       *string `json:"message"`
		Time          *string `json:"time"`
		Memory        *int64  `json:"memory"`
		ExitCode      *int    `json:"exit_code"`
		Status        struct {
			ID          int    `json:"id"`
			Description string `json:"description"`
		} `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode judge0 response: %w", err)
	}

	res := &Result{
		Stdout: decodeBase64(raw.Stdout),
		Stderr: decodeBase64(raw.Stderr),
	}
	res.Output = decodeBase64(raw.CompileOutput) + res.Stdout + res.Stderr
	if raw.Time != nil {
		if secs, err := strconv.ParseFloat(*raw.Time, 64); err == nil {
			res.Time = time.Duration(secs * float64(time.Second))
		}
	}
	if raw.Memory != nil {
		// Judge0 reports kilobytes.
		res.Memory = *raw.Memory * 1024
	}
	switch {
	case raw.ExitCode != nil:
		res.ExitCode = *raw.ExitCode
	case raw.Status.ID != judge0Accepted && raw.Status.ID > judge0Processing:
		// Compilation errors and internal errors carry no exit code.
		res.ExitCode = 1
		if res.Output == "" {
			res.Output = raw.Status.Description + "\n" + decodeBase64(raw.Message)
		}
	}
	return res, nil
}

// Judge0 status ids: 1 in queue, 2 processing, 3 accepted, >3 a failure.
const (
	judge0Processing = 2
	judge0Accepted   = 3
)

func decodeBase64(s *string) string {
	if s == nil {
		return ""
	}
	dec, err := base64.StdEncoding.DecodeString(*s)
	if err != nil {
		return ""
	}
	return string(dec)
}
