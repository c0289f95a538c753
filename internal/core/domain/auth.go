package domain

import (
	"fmt"
	"time"
)

// DeviceFlowSession holds the state of one device authorization attempt.
// It is owned by the polling loop and discarded once authentication ends.
type DeviceFlowSession struct {
	// DeviceCode is the opaque code exchanged for tokens while polling.
	DeviceCode string
	// UserCode is the short code the user enters in the browser.
	UserCode string
	// VerificationURI is where the user enters UserCode.
	VerificationURI string
	// Message is the server-supplied instruction text, if any.
	Message string
	// Interval is the current minimum delay between polls.
	Interval time.Duration
	// ExpiresAt is the hard deadline for polling.
	ExpiresAt time.Time
}

// Instruction returns the text shown to the user to complete sign-in.
func (s *DeviceFlowSession) Instruction() string {
	if s.Message != "" {
		return s.Message
	}
	return fmt.Sprintf("To sign in, open %s and enter the code %s to authenticate.", s.VerificationURI, s.UserCode)
}

// Expired reports whether the session deadline has passed at now.
func (s *DeviceFlowSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TokenSet is the result of a successful device flow.
// There is no refresh: once expired a new device flow must be started.
type TokenSet struct {
	// AccessToken is the bearer token for Graph API calls.
	AccessToken string
	// IDToken is the OpenID Connect ID token, when one was issued.
	IDToken string
	// TokenType is typically "Bearer".
	TokenType string
	// Scope is the space separated list of granted scopes.
	Scope string
	// ExpiresAt is when the access token stops being valid.
	ExpiresAt time.Time
}

// Expired reports whether the token can no longer be used at now.
func (t *TokenSet) Expired(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return true
	}
	return !now.Before(t.ExpiresAt)
}

// AuthStatus enumerates the terminal states of the device flow.
type AuthStatus int

const (
	// AuthFailed means the flow could not complete for a reason other than
	// denial or expiry.
	AuthFailed AuthStatus = iota
	// AuthAuthorized means a TokenSet was issued.
	AuthAuthorized
	// AuthDenied means the user declined the request.
	AuthDenied
	// AuthExpired means the device code expired before sign-in completed.
	AuthExpired
)

// String returns the status name.
func (s AuthStatus) String() string {
	switch s {
	case AuthAuthorized:
		return "authorized"
	case AuthDenied:
		return "denied"
	case AuthExpired:
		return "expired"
	default:
		return "failed"
	}
}

// AuthResult is the outcome of a device flow.
// Token is set only when Status is AuthAuthorized.
type AuthResult struct {
	Status AuthStatus
	Token  *TokenSet
	// Reason carries the server error code, description or raw payload.
	Reason string
	// Cause is the underlying error for failed flows, if any.
	Cause error
}

// Authorized builds a successful result.
func Authorized(token *TokenSet) AuthResult {
	return AuthResult{Status: AuthAuthorized, Token: token}
}

// Denied builds a result for a declined request.
func Denied(reason string) AuthResult {
	return AuthResult{Status: AuthDenied, Reason: reason}
}

// Expired builds a result for an expired device code.
func Expired(reason string) AuthResult {
	return AuthResult{Status: AuthExpired, Reason: reason}
}

// Failed builds a result for any other terminal failure.
func Failed(reason string, cause error) AuthResult {
	return AuthResult{Status: AuthFailed, Reason: reason, Cause: cause}
}

// Err converts a non-authorized result to its taxonomy error.
// It returns nil for AuthAuthorized.
func (r AuthResult) Err() error {
	switch r.Status {
	case AuthAuthorized:
		return nil
	case AuthDenied:
		return wrapReason(ErrAuthDenied, r.Reason, nil)
	case AuthExpired:
		return wrapReason(ErrAuthExpired, r.Reason, nil)
	default:
		return wrapReason(ErrAuthFlow, r.Reason, r.Cause)
	}
}

func wrapReason(sentinel error, reason string, cause error) error {
	switch {
	case cause != nil && reason != "":
		return fmt.Errorf("%w: %s: %w", sentinel, reason, cause)
	case cause != nil:
		return fmt.Errorf("%w: %w", sentinel, cause)
	case reason != "":
		return fmt.Errorf("%w: %s", sentinel, reason)
	default:
		return sentinel
	}
}
