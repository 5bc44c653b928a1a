package codeit

import (
	"context"
	"net/http"
)

// AuthService manages the client's display name. There are no passwords.
type AuthService struct {
	c *Client
}

// Login records username. Blank names are rejected with an *APIError.
func (s *AuthService) Login(ctx context.Context, username string) (*Me, error) {
	body := map[string]string{"username": username}
	return doRequest[Me](ctx, s.c, http.MethodPost, "/login", body, http.StatusOK)
}

func (s *AuthService) Logout(ctx context.Context) error {
	_, err := doRequest[Me](ctx, s.c, http.MethodPost, "/logout", nil, http.StatusOK)
	return err
}

// Me returns the login state and theme of the client.
func (s *AuthService) Me(ctx context.Context) (*Me, error) {
	return doRequest[Me](ctx, s.c, http.MethodGet, "/me", nil, http.StatusOK)
}
