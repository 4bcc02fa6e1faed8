package deviceflow

import (
	"errors"
	"fmt"
)

// ErrPollTimeout is returned when the configured poll timeout elapses before
// the user completes authorization.
var ErrPollTimeout = errors.New("timed out waiting for device authorization")

// TransportError reports a failed request to the authorization server or an
// undecodable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthorizationError is a terminal error reported by the token endpoint, such
// as expired_token or access_denied.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description == "" {
		return "authorization failed: " + e.Code
	}
	return fmt.Sprintf("authorization failed: %s (%s)", e.Code, e.Description)
}
