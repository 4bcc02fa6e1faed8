package tokenstore

import (
	"context"
	"fmt"
	"os"
)

// EnvStore provides read-only access to a token stored in an environment variable.
// Tokens read from here are never written back to any other store.
type EnvStore struct {
	envKey string
}

// Compile-time check to ensure EnvStore implements TokenStore
var _ TokenStore = (*EnvStore)(nil)

// NewEnvStore creates an EnvStore for the given environment variable.
// The variable does not have to be set yet; Read reports ErrNotFound until it is.
func NewEnvStore(envKey string) (*EnvStore, error) {
	if envKey == "" {
		return nil, fmt.Errorf("environment key cannot be empty")
	}

	return &EnvStore{
		envKey: envKey,
	}, nil
}

// Read returns the token from the environment variable.
func (e *EnvStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, ok := os.LookupEnv(e.envKey)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %s not set", ErrNotFound, e.envKey)
	}
	if token == "" {
		return "", fmt.Errorf("%w: environment variable %s is empty", ErrNotFound, e.envKey)
	}
	return token, nil
}

// Write is not supported for environment variables (they are read-only).
func (e *EnvStore) Write(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("%w: environment variable %s", ErrReadOnly, e.envKey)
}

// Delete is not supported for environment variables (they are read-only).
func (e *EnvStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("%w: environment variable %s", ErrReadOnly, e.envKey)
}

// Location returns the environment variable name.
func (e *EnvStore) Location() string {
	return "$" + e.envKey
}

// Key returns the environment variable name.
func (e *EnvStore) Key() string {
	return e.envKey
}
