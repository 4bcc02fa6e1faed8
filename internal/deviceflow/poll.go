package deviceflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	errAuthorizationPending = "authorization_pending"

	// defaultInterval applies when the server does not advertise one.
	defaultInterval = 5 * time.Second

	maxResponseSize = 1 << 20
)

type tokenRequest struct {
	ClientID   string `json:"client_id"`
	GrantType  string `json:"grant_type"`
	DeviceCode string `json:"device_code"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// poll asks the token endpoint for the access token until it is issued or the
// server reports a terminal error. Pending answers are retried one second
// after the advertised interval.
func (f *Flow) poll(ctx context.Context, grant *oauth2.DeviceAuthResponse) (string, error) {
	if f.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, f.cfg.PollTimeout, ErrPollTimeout)
		defer cancel()
	}

	interval := time.Duration(grant.Interval) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	delay := interval + time.Second

	body, err := json.Marshal(tokenRequest{
		ClientID:   f.cfg.ClientID,
		GrantType:  GrantType,
		DeviceCode: grant.DeviceCode,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling token request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		resp, err := f.requestToken(ctx, body)
		if err != nil {
			return "", timeoutOr(ctx, err)
		}

		switch {
		case resp.AccessToken != "":
			slog.DebugContext(ctx, "device authorized", "attempts", attempt)
			return resp.AccessToken, nil
		case resp.Error == "" || resp.Error == errAuthorizationPending:
			slog.DebugContext(ctx, "authorization pending", "attempt", attempt, "retry_in", delay)
		default:
			return "", &AuthorizationError{Code: resp.Error, Description: resp.ErrorDescription}
		}

		if err := f.wait(ctx, delay); err != nil {
			return "", timeoutOr(ctx, err)
		}
	}
}

func (f *Flow) requestToken(ctx context.Context, body []byte) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Endpoint.TokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "creating token request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "polling token endpoint", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Op: "reading token response", Err: err}
	}

	var payload tokenResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &TransportError{
			Op:  "decoding token response",
			Err: fmt.Errorf("status %d: %w", resp.StatusCode, err),
		}
	}
	return &payload, nil
}

// timeoutOr reports ErrPollTimeout when ctx ended because the poll timeout
// elapsed, and err otherwise.
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(context.Cause(ctx), ErrPollTimeout) {
		return ErrPollTimeout
	}
	return err
}
