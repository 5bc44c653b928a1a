// Package codeit provides a Go client for the codeit API.
//
// codeit keeps editor sessions on the server: pick a language, edit the
// source, run it on the execution service and read back output and error
// annotations. A client is identified by a cookie, which the Client keeps
// in its cookie jar.
//
// Usage:
//
//	client, err := codeit.New("http://localhost:8080")
//
//	s, err := client.Sessions.Create(ctx)
//	s, err = client.Sessions.SetSource(ctx, s.ID, `print("hi")`)
//	s, err = client.Sessions.Run(ctx, s.ID)
//	fmt.Println(s.Output)
package codeit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// Client is the codeit API client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// Service accessors
	Sessions *SessionsService
	Theme    *ThemeService
	Auth     *AuthService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. It should carry a cookie jar,
// otherwise every request is a new client to the server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a codeit client.
// baseURL should be the root URL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("codeit: cookie jar: %w", err)
		}
		c.httpClient = &http.Client{Jar: jar}
	}
	c.Sessions = &SessionsService{c: c}
	c.Theme = &ThemeService{c: c}
	c.Auth = &AuthService{c: c}
	return c, nil
}

// Health checks that the codeit server is reachable and healthy.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	return doRequest[HealthResponse](ctx, c, http.MethodGet, "/health", nil, http.StatusOK)
}

// Languages lists the selectable languages.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	out, err := doRequest[[]Language](ctx, c, http.MethodGet, "/languages", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// --- internal helpers ---

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("codeit: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doRequest[T any](ctx context.Context, c *Client, method, path string, body any, expectedStatus int) (*T, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		return nil, parseError(resp)
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("codeit: decode response: %w", err)
	}
	return &out, nil
}

func parseError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		e.Message = body.Error
	} else {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
