package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/iasql/cli/internal/api"
	"github.com/iasql/cli/internal/auth"
	"github.com/iasql/cli/internal/deviceflow"
	"github.com/iasql/cli/internal/prompt"
	"github.com/iasql/cli/internal/session"
)

// ErrNotLoggedIn is returned by Login when the user declined to authenticate.
// Commands stop without error when they see it.
var ErrNotLoggedIn = errors.New("not logged in")

// Option configures an App.
type Option func(*App)

// WithPrompter replaces the terminal prompter.
func WithPrompter(p prompt.Prompter) Option {
	return func(a *App) {
		a.Prompter = p
	}
}

// WithOutput sets where user-facing output is written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.Out = w
	}
}

// WithInteractive overrides terminal detection on stdin.
func WithInteractive(interactive bool) Option {
	return func(a *App) {
		a.interactive = interactive
	}
}

// WithFlowOptions passes options to the device flow.
func WithFlowOptions(opts ...deviceflow.Option) Option {
	return func(a *App) {
		a.flowOpts = append(a.flowOpts, opts...)
	}
}

// WithAPIOptions passes options to the API client.
func WithAPIOptions(opts ...api.Option) Option {
	return func(a *App) {
		a.apiOpts = append(a.apiOpts, opts...)
	}
}

// App wires the session, credential stores, device flow and API client for
// a single CLI invocation.
type App struct {
	Config   *Config
	Session  *session.Session
	Auth     *auth.Authenticator
	API      *api.Client
	Prompter prompt.Prompter
	Out      io.Writer

	interactive bool
	flowOpts    []deviceflow.Option
	apiOpts     []api.Option
}

// New creates a new App instance. No I/O is performed until a command runs.
func New(cfg *Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		Config:      cfg,
		Session:     session.New(),
		Out:         os.Stdout,
		interactive: prompt.IsInteractive(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Prompter == nil {
		a.Prompter = prompt.New()
	}

	store, err := cfg.Auth.NewTokenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}
	envStore, err := cfg.Auth.NewEnvStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create env token store: %w", err)
	}

	flowOpts := append([]deviceflow.Option{deviceflow.WithOutput(a.Out)}, a.flowOpts...)
	flow := deviceflow.New(cfg.DeviceFlowConfig(), a.Prompter, flowOpts...)

	a.Auth = auth.New(a.Session, store, flow, a.Prompter,
		auth.WithEnvStore(envStore),
		auth.WithOutput(a.Out),
	)

	a.API, err = api.New(api.Config{
		BaseURL:  cfg.APIBaseURL(),
		Timeout:  cfg.API.Timeout,
		RetryMax: cfg.API.RetryMax,
	}, a.Session, a.apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return a, nil
}

// NonInteractive reports whether prompts must be skipped: requested by flag
// or config, or stdin is not a terminal.
func (a *App) NonInteractive(flag bool) bool {
	return flag || a.Config.NonInteractive || !a.interactive
}

// Login resolves the session token without asking to re-authenticate.
func (a *App) Login(ctx context.Context, nonInteractiveFlag bool) error {
	nonInteractive := a.NonInteractive(nonInteractiveFlag)
	slog.DebugContext(ctx, "resolving session", "noninteractive", nonInteractive)
	if err := a.Auth.Login(ctx, auth.LoginOptions{NonInteractive: nonInteractive}); err != nil {
		return err
	}
	if a.Session.Get() == "" {
		return ErrNotLoggedIn
	}
	return nil
}
