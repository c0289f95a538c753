package domain

import "errors"

// Configuration errors.
var (
	// ErrConfig indicates missing or invalid client configuration.
	// It is raised before any network call is made.
	ErrConfig = errors.New("configuration error")

	// ErrInvalidInput indicates an argument outside its accepted range.
	ErrInvalidInput = errors.New("invalid input")
)

// Authentication errors. All of them are terminal for the device flow;
// the caller decides whether to start a new one.
var (
	// ErrAuthFlow indicates the device flow could not be started or failed
	// with an unexpected response.
	ErrAuthFlow = errors.New("device authorization failed")

	// ErrAuthDenied indicates the user declined the authorization request.
	ErrAuthDenied = errors.New("authorization declined by user")

	// ErrAuthExpired indicates the device code expired before the user
	// completed sign-in.
	ErrAuthExpired = errors.New("device code expired")
)

// Graph API errors. APIError values match these through errors.Is.
var (
	// ErrReauthRequired indicates the access token was rejected or has
	// expired. A new device flow is required.
	ErrReauthRequired = errors.New("reauthentication required")

	// ErrRateLimited indicates the request was throttled.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransient indicates a server-side failure that may succeed on retry.
	ErrTransient = errors.New("transient server error")

	// ErrClientError indicates the request was rejected as invalid.
	ErrClientError = errors.New("client error")

	// ErrNetwork indicates the request never produced an HTTP response.
	ErrNetwork = errors.New("network error")

	// ErrUnexpected indicates a response that could not be interpreted,
	// such as a malformed body.
	ErrUnexpected = errors.New("unexpected response")
)
