package codeit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

func sessionPath(id string) string {
	return "/sessions/" + url.PathEscape(id)
}

// SessionsService provides editor session operations.
type SessionsService struct {
	c *Client
}

// Create opens a new session on the default language.
func (s *SessionsService) Create(ctx context.Context) (*Session, error) {
	return doRequest[Session](ctx, s.c, http.MethodPost, "/sessions", nil, http.StatusCreated)
}

func (s *SessionsService) Get(ctx context.Context, id string) (*Session, error) {
	return doRequest[Session](ctx, s.c, http.MethodGet, sessionPath(id), nil, http.StatusOK)
}

// Delete closes a session.
func (s *SessionsService) Delete(ctx context.Context, id string) error {
	_, err := doRequest[struct{}](ctx, s.c, http.MethodDelete, sessionPath(id), nil, http.StatusOK)
	return err
}

// SelectLanguage switches the session to language, loading the saved source
// for it or its starter template.
func (s *SessionsService) SelectLanguage(ctx context.Context, id, language string) (*Session, error) {
	body := map[string]string{"language": language}
	return doRequest[Session](ctx, s.c, http.MethodPut, sessionPath(id)+"/language", body, http.StatusOK)
}

// SetSource replaces the editor text. The server saves it per language.
func (s *SessionsService) SetSource(ctx context.Context, id, source string) (*Session, error) {
	body := map[string]string{"source": source}
	return doRequest[Session](ctx, s.c, http.MethodPut, sessionPath(id)+"/source", body, http.StatusOK)
}

func (s *SessionsService) SetStdin(ctx context.Context, id, stdin string) (*Session, error) {
	body := map[string]string{"stdin": stdin}
	return doRequest[Session](ctx, s.c, http.MethodPut, sessionPath(id)+"/stdin", body, http.StatusOK)
}

// Run executes the session source and waits for the outcome.
//
// When the run produced no result (unsupported language, execution service
// failure) both the session, whose Output explains the failure, and an
// *APIError are returned. A run rejected because another one is in flight
// returns only the error; see IsRunInProgress.
func (s *SessionsService) Run(ctx context.Context, id string) (*Session, error) {
	req, err := s.c.newRequest(ctx, http.MethodPost, sessionPath(id)+"/run", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnprocessableEntity, http.StatusBadGateway:
	default:
		return nil, parseError(resp)
	}

	var out Session
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("codeit: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &out, &APIError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	return &out, nil
}

// Download fetches the session source as a file named code.<ext>.
func (s *SessionsService) Download(ctx context.Context, id string) (*File, error) {
	req, err := s.c.newRequest(ctx, http.MethodGet, sessionPath(id)+"/download", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("codeit: read download: %w", err)
	}
	f := &File{Content: content}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		f.Name = params["filename"]
	}
	return f, nil
}
