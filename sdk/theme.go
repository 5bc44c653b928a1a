package codeit

import (
	"context"
	"net/http"
)

// ThemeService reads and changes the client's UI theme.
type ThemeService struct {
	c *Client
}

// List returns the selectable theme names.
func (s *ThemeService) List(ctx context.Context) ([]string, error) {
	out, err := doRequest[[]string](ctx, s.c, http.MethodGet, "/themes", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (s *ThemeService) Get(ctx context.Context) (*ThemeResponse, error) {
	return doRequest[ThemeResponse](ctx, s.c, http.MethodGet, "/theme", nil, http.StatusOK)
}

// Set saves the theme. Open sessions of this client switch editor theme.
func (s *ThemeService) Set(ctx context.Context, name string) (*ThemeResponse, error) {
	body := map[string]string{"theme": name}
	return doRequest[ThemeResponse](ctx, s.c, http.MethodPut, "/theme", body, http.StatusOK)
}
