package code

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnsupportedLanguage is returned when a provider has no mapping for the
// requested language.
var ErrUnsupportedLanguage = errors.New("unsupported language or version")

// ServiceError is returned when the execution service answers with an HTTP
// error status.
type ServiceError struct {
	Provider   string
	StatusCode int
	// Message is the service's own explanation, when it sent one.
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.StatusCode)
}

// Message extracts the user-facing text for a failed execution: the
// service's message when one was returned, else the error text itself.
func Message(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}

// newServiceError reads an error response. Both Piston and Judge0 put the
// explanation in a top-level "message" field; Judge0 also uses "error".
func newServiceError(provider string, resp *http.Response) *ServiceError {
	e := &ServiceError{Provider: provider, StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return e
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
		if e.Message == "" {
			e.Message = payload.Error
		}
	}
	return e
}
