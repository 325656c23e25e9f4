package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors providers raise when a completion call cannot succeed.
// The executor maps these onto user-facing text at the node boundary; they
// never propagate past the node that hit them.
var (
	ErrMissingAPIKey     = errors.New("no api key configured for provider")
	ErrInvalidAPIKey     = errors.New("api key rejected by provider")
	ErrMalformedResponse = errors.New("malformed provider response")
)

// HTTPError is a transport-level failure from the provider's service.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider http error %d: %s", e.Status, e.Message)
}

// IsAuthStatus reports whether an HTTP status indicates a key problem.
func IsAuthStatus(status int) bool {
	return status == 401 || status == 403
}
