package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ministagram/internal/httputil"
)

// APIError is any non-2xx response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d", e.Method, e.Path, e.Status)
	if e.Code != "" {
		b.WriteString(" " + e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	code, message := httputil.ParseErrorBody(body)
	if len(message) > 512 {
		message = message[:512]
	}
	return &APIError{
		Method:  method,
		Path:    path,
		Status:  status,
		Code:    code,
		Message: strings.TrimSpace(message),
	}
}

// StatusCode returns the HTTP status carried by err, or 0 for transport and
// decoding failures.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports a 401. The gateway has already cleared the token by the
// time the caller sees it.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsAccountNotFound reports the 403/404 the login endpoint answers for an unknown
// account.
func IsAccountNotFound(err error) bool {
	status := StatusCode(err)
	return status == http.StatusForbidden || status == http.StatusNotFound
}

// IsForbidden reports a 403, e.g. enumerating the followers of a private account.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}
