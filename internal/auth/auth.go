// Package auth resolves the bearer token used for IaSQL API requests.
//
// A token is looked up in order: the in-process session, the token store, the
// environment, and finally the interactive device flow. Tokens obtained
// through the device flow are persisted; tokens from the environment never are.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/iasql/cli/internal/session"
	"github.com/iasql/cli/internal/tokenstore"
	"github.com/iasql/cli/internal/ui"
)

var tracer = otel.Tracer("github.com/iasql/cli/internal/auth")

// Flow obtains a new token interactively. An empty token with a nil error
// means the user aborted.
type Flow interface {
	Run(ctx context.Context) (string, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string, def bool) (bool, error)
}

// LoginOptions controls how Login resolves a token.
type LoginOptions struct {
	// PromptReauth asks whether to re-authenticate when a stored token exists.
	PromptReauth bool
	// NonInteractive forbids prompts and the browser flow.
	NonInteractive bool
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithOutput sets where status messages are written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *Authenticator) {
		a.out = w
	}
}

// WithEnvStore sets the read-only store consulted when the token store is empty.
func WithEnvStore(env *tokenstore.EnvStore) Option {
	return func(a *Authenticator) {
		a.env = env
	}
}

// Authenticator implements login and logout on top of a session, a token
// store and the device flow.
type Authenticator struct {
	session   *session.Session
	store     tokenstore.TokenStore
	env       *tokenstore.EnvStore
	flow      Flow
	confirmer Confirmer
	out       io.Writer
}

// New creates an Authenticator.
func New(sess *session.Session, store tokenstore.TokenStore, flow Flow, confirmer Confirmer, opts ...Option) *Authenticator {
	a := &Authenticator{
		session:   sess,
		store:     store,
		flow:      flow,
		confirmer: confirmer,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Token returns the session token, or "" before a successful Login.
func (a *Authenticator) Token() string {
	return a.session.Get()
}

// Login makes sure the session holds a token. It is a no-op once the session
// is populated.
func (a *Authenticator) Login(ctx context.Context, opts LoginOptions) error {
	if a.session.Get() != "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	token, err := a.store.Read(ctx)
	if err == nil {
		if opts.PromptReauth && !opts.NonInteractive {
			reauth, err := a.confirmer.Confirm("You are already logged in. Do you wish to re-authenticate?", true)
			if err != nil {
				return fmt.Errorf("confirming re-authentication: %w", err)
			}
			if reauth {
				return a.authenticate(ctx)
			}
		}
		a.adopt(ctx, token, a.store.Location())
		return nil
	}
	if !errors.Is(err, tokenstore.ErrNotFound) {
		slog.WarnContext(ctx, "reading stored credentials failed", "location", a.store.Location(), "error", err)
	}

	if a.env != nil {
		if token, err := a.env.Read(ctx); err == nil {
			a.adopt(ctx, token, a.env.Location())
			return nil
		}
	}

	if opts.NonInteractive {
		err := &MissingInputError{}
		if a.env != nil {
			err.EnvKey = a.env.Key()
		}
		span.RecordError(err)
		return err
	}

	return a.authenticate(ctx)
}

// Logout removes the stored token after confirmation. Missing credentials are
// reported but are not an error.
func (a *Authenticator) Logout(ctx context.Context, nonInteractive bool) error {
	if a.session.Get() != "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "auth.Logout")
	defer span.End()

	location := a.store.Location()
	if _, err := a.store.Read(ctx); err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			ui.Warn(a.out, "No stored credentials found. Call `iasql login` to generate them.")
			return nil
		}
		return &CredentialIOError{Op: "reading", Path: location, Err: err}
	}

	if !nonInteractive {
		remove, err := a.confirmer.Confirm(fmt.Sprintf("Do you wish to remove the credentials stored in %s?", location), true)
		if err != nil {
			return fmt.Errorf("confirming logout: %w", err)
		}
		if !remove {
			return nil
		}
	}

	if err := a.store.Delete(ctx); err != nil {
		span.RecordError(err)
		return &CredentialIOError{Op: "removing", Path: location, Err: err}
	}
	slog.InfoContext(ctx, "credentials removed", "location", location)
	ui.Success(a.out, "IaSQL has removed the stored credentials")
	return nil
}

func (a *Authenticator) authenticate(ctx context.Context) error {
	token, err := a.flow.Run(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if token == "" {
		return nil
	}

	if err := a.store.Write(ctx, token); err != nil {
		return &CredentialIOError{Op: "storing", Path: a.store.Location(), Err: err}
	}
	a.adopt(ctx, token, a.store.Location())

	ok, err := a.confirmer.Confirm("Authentication complete. Press Enter to continue...", true)
	if err != nil {
		slog.DebugContext(ctx, "continue prompt failed", "error", err)
		return nil
	}
	if ok {
		_, _ = fmt.Fprintln(a.out, ui.Bold("Welcome to IaSQL!"))
	}
	return nil
}

func (a *Authenticator) adopt(ctx context.Context, token, source string) {
	if !a.session.Set(token) {
		slog.DebugContext(ctx, "session already populated", "source", source)
		return
	}
	slog.DebugContext(ctx, "session token resolved", "source", source)
}
