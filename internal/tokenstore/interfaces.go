package tokenstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no token is stored.
	ErrNotFound = errors.New("token not found")

	// ErrReadOnly is returned by Write and Delete on backends that cannot be modified.
	ErrReadOnly = errors.New("token storage is read-only")
)

// TokenStore reads, writes and deletes the bearer token in persistent storage.
type TokenStore interface {
	// Read returns the stored token. Returns an error wrapping ErrNotFound if the
	// token is missing, unreadable or empty.
	Read(ctx context.Context) (string, error)

	// Write persists the token, replacing any previous one. Returns ErrReadOnly if
	// the backend is read-only (e.g., environment variables).
	Write(ctx context.Context, token string) error

	// Delete removes the stored token. Returns an error wrapping ErrNotFound if
	// there was nothing to remove.
	Delete(ctx context.Context) error

	// Location describes where the token lives, for user-facing messages.
	Location() string
}
