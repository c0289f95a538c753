package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// Microsoft Graph API base URL.
const graphBaseURL = "https://graph.microsoft.com/v1.0"

// maxResponseBody caps how much of a response body is read.
const maxResponseBody = 10 << 20

// errTokenExpired is returned by the token source once the TokenSet expires.
var errTokenExpired = errors.New("access token expired")

// Response is a successful (2xx) Graph API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       json.RawMessage
}

// Decode unmarshals the response body into v.
// A malformed or empty body returns an APIError of KindUnexpected.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return &APIError{Kind: KindUnexpected, Status: r.StatusCode, Err: errors.New("empty response body")}
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &APIError{
			Kind:   KindUnexpected,
			Status: r.StatusCode,
			Body:   truncate(string(r.Body), maxErrorBody),
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// UnexpectedStatus returns a KindUnexpected APIError for a successful
// response whose status is not the one the operation expects.
func (r *Response) UnexpectedStatus(want int) *APIError {
	return &APIError{
		Kind:   KindUnexpected,
		Status: r.StatusCode,
		Body:   truncate(string(r.Body), maxErrorBody),
		Err:    fmt.Errorf("expected status %d %s", want, http.StatusText(want)),
	}
}

// Client is an authenticated Microsoft Graph HTTP client.
// It maps HTTP outcomes to APIError kinds and never retries a call.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	log         *zap.SugaredLogger
	now         func() time.Time
	requestID   func() string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Graph base URL. Used by tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped
// with the bearer token transport.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimiter sets the client-side rate limiter.
func WithRateLimiter(rl *RateLimiter) ClientOption {
	return func(c *Client) {
		if rl != nil {
			c.rateLimiter = rl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock sets the time source used for token expiry checks.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a Graph client bound to token.
// A nil or expired token returns an APIError of KindReauthRequired.
func NewClient(token *domain.TokenSet, opts ...ClientOption) (*Client, error) {
	c := &Client{
		baseURL:     graphBaseURL,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		rateLimiter: NewRateLimiter(DefaultRateLimit),
		log:         zap.NewNop().Sugar(),
		now:         time.Now,
		requestID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}

	if token.Expired(c.now()) {
		return nil, &APIError{Kind: KindReauthRequired, Err: errTokenExpired}
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	authed := *c.httpClient
	authed.Transport = &oauth2.Transport{
		Source: &tokenSetSource{token: token, now: c.now},
		Base:   base,
	}
	c.httpClient = &authed

	return c, nil
}

// Request performs an authenticated Graph API call.
// path is relative to the base URL (for example "/me/events"). body, when
// non-nil, is sent as JSON.
func (c *Client) Request(
	ctx context.Context, method, path string, query url.Values, body any,
) (*Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + EncodeQuery(query)
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Kind: KindUnexpected, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, &APIError{Kind: KindUnexpected, Err: fmt.Errorf("create request: %w", err)}
	}
	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("client-request-id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Nothing was sent, so the context error is returned as-is.
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("microsoft-graph: wait for rate limiter: %w", err)
	}

	c.log.Debugf("microsoft-graph: %s %s (request %s)", method, path, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, errTokenExpired) {
			c.log.Debugf("microsoft-graph: token expired before %s %s", method, path)
			return nil, &APIError{Kind: KindReauthRequired, Err: errTokenExpired}
		}
		c.log.Debugf("microsoft-graph: request error: %v", err)
		return nil, &APIError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.log.Debugf("microsoft-graph: %s %s -> status %d, body length %d", method, path, resp.StatusCode, len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newStatusError(resp, data, c.now())
		if apiErr.Kind == KindRateLimited && apiErr.RetryAfter > 0 {
			c.rateLimiter.RecordRateLimitError(apiErr.RetryAfter)
		}
		c.log.Debugf("microsoft-graph: %s %s failed (retryable=%v): %s",
			method, path, IsRetryable(resp.StatusCode), apiErr.Body)
		return nil, apiErr
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, query, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Request(ctx, http.MethodPost, path, nil, body)
}

// EncodeQuery encodes query parameters sorted by key, leaving the OData
// characters "$", "," and "/" readable and encoding spaces as %20.
func EncodeQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range query[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(odataEscape(k))
			b.WriteByte('=')
			b.WriteString(odataEscape(v))
		}
	}
	return b.String()
}

var odataUnescaper = strings.NewReplacer("%24", "$", "%2C", ",", "%2F", "/", "+", "%20")

func odataEscape(s string) string {
	return odataUnescaper.Replace(url.QueryEscape(s))
}

// tokenSetSource feeds a TokenSet to oauth2.Transport and refuses to hand
// out the token once it has expired.
type tokenSetSource struct {
	token *domain.TokenSet
	now   func() time.Time
}

// Token implements oauth2.TokenSource.
func (s *tokenSetSource) Token() (*oauth2.Token, error) {
	if s.token.Expired(s.now()) {
		return nil, errTokenExpired
	}
	return OAuth2Token(s.token), nil
}

// OAuth2Token converts a TokenSet to an oauth2.Token.
// The ID token is carried in the token's extra fields.
func OAuth2Token(t *domain.TokenSet) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.ExpiresAt,
	}
	if t.IDToken != "" {
		tok = tok.WithExtra(map[string]any{"id_token": t.IDToken})
	}
	return tok
}
