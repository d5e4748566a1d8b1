package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized means the backend answered 401: the session is no longer
// valid. Callers clear stored credentials and ask the user to log in again.
var ErrUnauthorized = errors.New("unauthorized: please log in again")

// ErrNotLoggedIn is returned without a network call when an authenticated
// endpoint is used while no token is held
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response other than 401
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error %d: %s", e.StatusCode, e.Detail)
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// newAPIError extracts the backend's "detail" field. Object or list details
// are kept as indented JSON; non-JSON bodies fall back to the body text or
// the status text.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return &APIError{StatusCode: status, Detail: s}
		}
		var out bytes.Buffer
		if err := json.Indent(&out, payload.Detail, "", "  "); err == nil {
			return &APIError{StatusCode: status, Detail: out.String()}
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" || strings.HasPrefix(text, "{") {
		text = http.StatusText(status)
	}
	if text == "" {
		text = "unknown server error"
	}
	return &APIError{StatusCode: status, Detail: text}
}
