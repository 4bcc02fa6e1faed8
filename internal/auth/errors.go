package auth

import "fmt"

// CredentialIOError reports a token store operation that failed for a reason
// other than the token being absent.
type CredentialIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *CredentialIOError) Error() string {
	return fmt.Sprintf("%s credentials in %s: %v", e.Op, e.Path, e.Err)
}

func (e *CredentialIOError) Unwrap() error {
	return e.Err
}

// MissingInputError is returned when no token is available and the device
// flow cannot run because the session is non-interactive.
type MissingInputError struct {
	EnvKey string
}

func (e *MissingInputError) Error() string {
	if e.EnvKey == "" {
		return "no stored credentials found; run `iasql login` in an interactive terminal"
	}
	return fmt.Sprintf("no stored credentials found; run `iasql login` in an interactive terminal or set %s", e.EnvKey)
}
