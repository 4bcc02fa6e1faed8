// Package tokenstore provides persistent storage for the IaSQL bearer token.
//
// Supports three storage backends with different security and deployment tradeoffs:
//   - File: the default, a single plain-text file under the user's home directory
//     written atomically with owner-only permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, etc.)
//   - Env: read-only environment variable access for pre-issued tokens (CI, containers)
//
// Every backend reports a missing credential with an error wrapping ErrNotFound so
// callers can fall through to the next token source.
package tokenstore
