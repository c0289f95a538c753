// Package deviceflow implements the OAuth 2.0 device authorization grant
// (RFC 8628) against the Microsoft identity platform.
//
// The flow is a small state machine:
//
//	init -> pending -> {authorized, expired, denied, failed}
//
// The clock and the sleep function are injectable so tests run without real
// delays.
package deviceflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/graphcal/internal/connectors/microsoft"
	"github.com/custodia-labs/graphcal/internal/core/domain"
	"github.com/custodia-labs/graphcal/internal/core/ports/driven"
)

// Protocol constants.
const (
	grantTypeDeviceCode = "urn:ietf:params:oauth:grant-type:device_code"

	// DefaultInterval is used when the server does not supply one.
	DefaultInterval = 5 * time.Second
	// SlowDownIncrement is added to the interval on each slow_down.
	SlowDownIncrement = 5 * time.Second
	// DefaultExpiresIn is used when the server does not supply expires_in.
	DefaultExpiresIn = 15 * time.Minute
	// defaultTokenLifetime is used when a token response omits expires_in.
	defaultTokenLifetime = time.Hour

	maxBody = 1 << 20
)

// OAuth error codes returned while polling.
const (
	errAuthorizationPending  = "authorization_pending"
	errSlowDown              = "slow_down"
	errExpiredToken          = "expired_token"
	errAuthorizationDeclined = "authorization_declined"
	errAccessDenied          = "access_denied"
)

// reservedScopes are added so the platform issues an ID token, as MSAL does.
// offline_access is left out: refresh tokens are never used.
var reservedScopes = []string{"openid", "profile"}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Authenticator drives the device authorization grant.
// It holds no per-flow state; each Authenticate call owns its session.
type Authenticator struct {
	authority  string
	endpoint   *oauth2.Endpoint
	httpClient *http.Client
	notifier   driven.DeviceCodeNotifier
	log        *zap.SugaredLogger
	now        func() time.Time
	sleep      Sleeper
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithAuthority overrides the authority base URL
// (default https://login.microsoftonline.com/<tenant>).
func WithAuthority(authority string) Option {
	return func(a *Authenticator) {
		a.authority = authority
	}
}

// WithEndpoint sets the device and token endpoints directly.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(a *Authenticator) {
		a.endpoint = &ep
	}
}

// WithHTTPClient sets the HTTP client used for both endpoints.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *Authenticator) {
		if hc != nil {
			a.httpClient = hc
		}
	}
}

// WithNotifier sets the side channel that displays the user instruction.
func WithNotifier(n driven.DeviceCodeNotifier) Option {
	return func(a *Authenticator) {
		if n != nil {
			a.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(a *Authenticator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithSleeper sets the function used to wait between polls.
func WithSleeper(s Sleeper) Option {
	return func(a *Authenticator) {
		if s != nil {
			a.sleep = s
		}
	}
}

// New creates an Authenticator.
func New(opts ...Option) *Authenticator {
	a := &Authenticator{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		notifier:   driven.NotifierFunc(func(context.Context, domain.DeviceFlowSession) {}),
		log:        zap.NewNop().Sugar(),
		now:        time.Now,
		sleep:      SleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// deviceCodeResponse is the device authorization response.
type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message"`
}

// tokenResponse is the token endpoint response while polling.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	IDToken          string `json:"id_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// state is a node of the device flow state machine.
type state int

const (
	stateInit state = iota
	statePending
	stateAuthorized
	stateExpired
	stateDenied
	stateFailed
)

func (s state) String() string {
	return [...]string{"init", "pending", "authorized", "expired", "denied", "failed"}[s]
}

// Authenticate runs the device flow to completion.
// Denial, expiry and failures are returned as result variants; it never
// retries a terminal outcome.
func (a *Authenticator) Authenticate(ctx context.Context, creds domain.Credentials) domain.AuthResult {
	if creds.IsZero() {
		return domain.Failed("credentials not configured", domain.ErrConfig)
	}

	ep := a.endpointFor(creds)
	a.log.Debugf("microsoft-deviceflow: requesting device code for client %s from %s",
		creds.ClientID(), a.authorityFor(creds))

	session, result, ok := a.start(ctx, ep.DeviceAuthURL, creds)
	if !ok {
		a.transition(stateInit, stateFailed, result.Reason)
		return result
	}

	a.notifier.NotifyDeviceCode(ctx, *session)
	a.transition(stateInit, statePending, "waiting for user")

	result = a.poll(ctx, ep.TokenURL, creds, session)
	a.transition(statePending, stateFor(result.Status), result.Reason)
	return result
}

// start requests a device code. ok is false when result is terminal.
func (a *Authenticator) start(
	ctx context.Context, deviceURL string, creds domain.Credentials,
) (session *domain.DeviceFlowSession, result domain.AuthResult, ok bool) {
	form := url.Values{
		"client_id": {creds.ClientID()},
		"scope":     {strings.Join(requestScopes(creds.Scopes()), " ")},
	}

	status, body, err := a.postForm(ctx, deviceURL, form)
	if err != nil {
		return nil, domain.Failed("device code request", err), false
	}

	var dc deviceCodeResponse
	if status < 200 || status > 299 || json.Unmarshal(body, &dc) != nil || dc.DeviceCode == "" || dc.UserCode == "" {
		a.log.Debugf("microsoft-deviceflow: device code request failed with status %d", status)
		payload := strings.TrimSpace(string(body))
		if payload == "" {
			payload = fmt.Sprintf("empty device code response (status %d)", status)
		}
		return nil, domain.Failed(payload, nil), false
	}

	interval := time.Duration(dc.Interval) * time.Second
	if interval < time.Second {
		interval = DefaultInterval
	}
	expiresIn := time.Duration(dc.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = DefaultExpiresIn
	}

	return &domain.DeviceFlowSession{
		DeviceCode:      dc.DeviceCode,
		UserCode:        dc.UserCode,
		VerificationURI: dc.VerificationURI,
		Message:         dc.Message,
		Interval:        interval,
		ExpiresAt:       a.now().Add(expiresIn),
	}, domain.AuthResult{}, true
}

// poll waits for the user to finish signing in. It never polls past the
// session deadline.
func (a *Authenticator) poll(
	ctx context.Context, tokenURL string, creds domain.Credentials, session *domain.DeviceFlowSession,
) domain.AuthResult {
	form := url.Values{
		"grant_type":  {grantTypeDeviceCode},
		"client_id":   {creds.ClientID()},
		"device_code": {session.DeviceCode},
	}

	for attempt := 1; ; attempt++ {
		if session.Expired(a.now().Add(session.Interval)) {
			return domain.Expired("device code expired before sign-in completed")
		}
		if err := a.sleep(ctx, session.Interval); err != nil {
			return domain.Failed("polling interrupted", err)
		}

		status, body, err := a.postForm(ctx, tokenURL, form)
		if err != nil {
			return domain.Failed("token request", err)
		}

		var tr tokenResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return domain.Failed(fmt.Sprintf("malformed token response (status %d): %s", status, body), err)
		}

		a.log.Debugf("microsoft-deviceflow: poll %d returned status %d error=%q", attempt, status, tr.Error)

		switch tr.Error {
		case "":
			if tr.AccessToken == "" {
				return domain.Failed(fmt.Sprintf("token response without access_token (status %d)", status), nil)
			}
			return domain.Authorized(a.tokenSet(&tr))
		case errAuthorizationPending:
			// keep polling
		case errSlowDown:
			session.Interval += SlowDownIncrement
			a.log.Debugf("microsoft-deviceflow: slow_down, interval now %s", session.Interval)
		case errExpiredToken:
			return domain.Expired(reason(&tr))
		case errAuthorizationDeclined, errAccessDenied:
			return domain.Denied(reason(&tr))
		default:
			return domain.Failed(reason(&tr), nil)
		}
	}
}

func (a *Authenticator) tokenSet(tr *tokenResponse) *domain.TokenSet {
	lifetime := time.Duration(tr.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = defaultTokenLifetime
	}
	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &domain.TokenSet{
		AccessToken: tr.AccessToken,
		IDToken:     tr.IDToken,
		TokenType:   tokenType,
		Scope:       tr.Scope,
		ExpiresAt:   a.now().Add(lifetime),
	}
}

// postForm posts a form and returns the status and (bounded) body.
// The status is returned as-is: OAuth errors arrive as 400 with a JSON body.
func (a *Authenticator) postForm(ctx context.Context, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (a *Authenticator) endpointFor(creds domain.Credentials) oauth2.Endpoint {
	if a.endpoint != nil {
		return *a.endpoint
	}
	return microsoft.Endpoint(a.authority, creds.TenantID())
}

func (a *Authenticator) authorityFor(creds domain.Credentials) string {
	if a.authority != "" {
		return a.authority
	}
	return microsoft.Authority(creds.TenantID())
}

func (a *Authenticator) transition(from, to state, detail string) {
	a.log.Debugf("microsoft-deviceflow: %s -> %s: %s", from, to, detail)
}

func stateFor(status domain.AuthStatus) state {
	switch status {
	case domain.AuthAuthorized:
		return stateAuthorized
	case domain.AuthDenied:
		return stateDenied
	case domain.AuthExpired:
		return stateExpired
	default:
		return stateFailed
	}
}

func requestScopes(scopes []string) []string {
	out := slices.Clone(scopes)
	for _, s := range reservedScopes {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func reason(tr *tokenResponse) string {
	if tr.ErrorDescription == "" {
		return tr.Error
	}
	return tr.Error + ": " + tr.ErrorDescription
}
