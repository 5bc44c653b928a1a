package codeit

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned when the codeit API responds with a non-success status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("codeit: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API, such as an expired
// or foreign session.
func IsNotFound(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

// IsRunInProgress reports whether a run was rejected because another run of
// the same session is in flight.
func IsRunInProgress(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusConflict
}
