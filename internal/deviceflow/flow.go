package deviceflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/mdp/qrterminal/v3"
	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2"

	"github.com/iasql/cli/internal/ui"
)

var tracer = otel.Tracer("github.com/iasql/cli/internal/deviceflow")

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string, def bool) (bool, error)
}

// Config holds the authorization server settings of a Flow. Zero values fall
// back to the IaSQL defaults in this package.
type Config struct {
	ClientID string
	Audience string
	Scopes   []string
	Endpoint oauth2.Endpoint

	// ShowQR renders the verification URL as a QR code below the user code.
	ShowQR bool
	// PollTimeout bounds the polling phase. Zero polls until the server answers.
	PollTimeout time.Duration
}

// Option configures a Flow.
type Option func(*Flow)

// WithTransport sets a custom base transport for authorization requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(f *Flow) {
		f.baseTransport = transport
	}
}

// WithOutput sets where the user code and instructions are written.
// Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(f *Flow) {
		f.out = w
	}
}

// WithOpener replaces the browser opener.
func WithOpener(open func(url string) error) Option {
	return func(f *Flow) {
		f.open = open
	}
}

// WithWait replaces the wait between poll attempts.
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Flow) {
		f.wait = wait
	}
}

// Flow runs the device authorization grant against the IaSQL authorization
// server: request a device code, let the user confirm in the browser, then
// poll the token endpoint until an access token is issued.
type Flow struct {
	cfg       Config
	oauth     *oauth2.Config
	confirmer Confirmer
	client    *http.Client
	out       io.Writer
	open      func(url string) error
	wait      func(ctx context.Context, d time.Duration) error

	baseTransport http.RoundTripper
}

// New creates a Flow asking its questions through confirmer.
func New(cfg Config, confirmer Confirmer, opts ...Option) *Flow {
	if cfg.ClientID == "" {
		cfg.ClientID = ClientID
	}
	if cfg.Audience == "" {
		cfg.Audience = Audience
	}
	if cfg.Scopes == nil {
		cfg.Scopes = Scopes
	}
	if cfg.Endpoint.DeviceAuthURL == "" {
		cfg.Endpoint.DeviceAuthURL = Endpoint.DeviceAuthURL
	}
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint.TokenURL = Endpoint.TokenURL
	}
	cfg.Endpoint.AuthStyle = oauth2.AuthStyleInParams

	f := &Flow{
		cfg:           cfg,
		confirmer:     confirmer,
		out:           os.Stdout,
		open:          OpenBrowser,
		wait:          sleep,
		baseTransport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.oauth = &oauth2.Config{
		ClientID: cfg.ClientID,
		Scopes:   cfg.Scopes,
		Endpoint: cfg.Endpoint,
	}
	f.client = &http.Client{
		Timeout:   30 * time.Second,
		Transport: &jsonTransport{base: f.baseTransport},
	}
	return f
}

// Run executes the flow. It returns the access token on success and an empty
// token with a nil error when the user declines to start the browser flow.
func (f *Flow) Run(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "deviceflow.Run")
	defer span.End()

	grant, err := f.requestCode(ctx)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	proceed, err := f.confirmUser(ctx, grant)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if !proceed {
		slog.DebugContext(ctx, "device flow declined")
		return "", nil
	}

	token, err := f.poll(ctx, grant)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return token, nil
}

func (f *Flow) requestCode(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	// oauth2 package injects custom HTTP clients via context (oauth2.HTTPClient key).
	oauthCtx := context.WithValue(ctx, oauth2.HTTPClient, f.client)
	grant, err := f.oauth.DeviceAuth(oauthCtx, oauth2.SetAuthURLParam("audience", f.cfg.Audience))
	if err != nil {
		return nil, &TransportError{Op: "requesting device code", Err: err}
	}
	if grant.DeviceCode == "" || grant.UserCode == "" {
		return nil, &TransportError{Op: "requesting device code", Err: fmt.Errorf("response without device or user code")}
	}
	slog.DebugContext(ctx, "device code issued",
		"verification_uri", verificationURL(grant),
		"interval", grant.Interval,
	)
	return grant, nil
}

func (f *Flow) confirmUser(ctx context.Context, grant *oauth2.DeviceAuthResponse) (bool, error) {
	ok, err := f.confirmer.Confirm(ui.Bold("Press Enter")+" to authenticate the IaSQL CLI in your web browser", true)
	if err != nil {
		return false, fmt.Errorf("confirming authentication: %w", err)
	}
	if !ok {
		return false, nil
	}

	_, _ = fmt.Fprintf(f.out, "%s Your one-time code is: %s\n", ui.WarnPrefix(), ui.Bold(grant.UserCode))

	target := verificationURL(grant)
	if f.cfg.ShowQR {
		qrterminal.GenerateHalfBlock(target, qrterminal.L, f.out)
	}

	open, err := f.confirmer.Confirm(fmt.Sprintf("%s to open %s in your browser", ui.Bold("Press Enter"), origin(target)), true)
	if err != nil {
		return false, fmt.Errorf("confirming browser launch: %w", err)
	}
	if open {
		if err := f.open(target); err != nil {
			slog.DebugContext(ctx, "opening browser failed", "error", err)
			open = false
		}
	}
	if !open {
		_, _ = fmt.Fprintf(f.out, "Open the following url in your browser: %s\n", ui.Bold(target))
	}
	return true, nil
}

func verificationURL(grant *oauth2.DeviceAuthResponse) string {
	if grant.VerificationURIComplete != "" {
		return grant.VerificationURIComplete
	}
	return grant.VerificationURI
}

// origin returns scheme://host of raw, or raw itself when it does not parse.
func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}
