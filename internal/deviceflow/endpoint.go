package deviceflow

import (
	"golang.org/x/oauth2"
)

const (
	// ClientID is the public OAuth2 client identifier of the IaSQL CLI.
	// This is a public client (no client secret).
	ClientID = "FWIYK0GhLdMCLid0hxjmEEwxaifdAkpQ"

	// Audience is the API the issued access token is valid for.
	Audience = "https://api.iasql.com"

	// GrantType is the device authorization grant sent while polling.
	GrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// Endpoint defines the OAuth2 endpoints of the IaSQL authorization server.
var Endpoint = oauth2.Endpoint{
	DeviceAuthURL: "https://auth.iasql.com/oauth/device/code",
	TokenURL:      "https://auth.iasql.com/oauth/token",
	AuthStyle:     oauth2.AuthStyleInParams,
}

// Scopes defines the OAuth scopes requested for the CLI.
var Scopes = []string{"openid", "profile", "offline_access"}
