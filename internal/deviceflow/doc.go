// Package deviceflow obtains an IaSQL access token through the OAuth2 device
// authorization grant.
//
// The IaSQL authorization server deviates from the standard in ways that
// require custom handling:
//   - The device code request is JSON-encoded (standard OAuth2 uses form-encoding)
//   - Token polling sends a JSON body and the response body is meaningful
//     regardless of the HTTP status code
//
// # Running a Flow
//
//	flow := deviceflow.New(deviceflow.Config{}, prompter)
//	token, err := flow.Run(ctx)
//	if err != nil {
//		// *TransportError, *AuthorizationError or ErrPollTimeout
//	}
//	if token == "" {
//		// the user declined to start the browser flow
//	}
//
// # Custom Base Transport
//
// Configure a custom base transport for the authorization requests (e.g., for
// proxies or custom timeouts):
//
//	flow := deviceflow.New(cfg, prompter, deviceflow.WithTransport(customTransport))
package deviceflow
