package vertex

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse indicates the upstream returned 200 with a body that
// does not carry the expected fields.
var ErrInvalidResponse = errors.New("invalid response from Vertex AI")

// APIError is an application-level error returned by the Vertex AI API.
// Transport failures (DNS, timeouts, connection resets) are returned as
// plain wrapped errors and do not match this type.
type APIError struct {
	StatusCode int
	Message    string
}

// Error formats the upstream message annotated with the HTTP status.
func (e *APIError) Error() string {
	return fmt.Sprintf("Vertex AI error: %s (HTTP %d)", e.Message, e.StatusCode)
}

// IsAPIError reports whether err is an application-level API error and
// returns it if so.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
