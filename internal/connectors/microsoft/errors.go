package microsoft

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// ErrorKind classifies a failed Graph API call.
type ErrorKind int

const (
	// KindUnexpected is a response that could not be interpreted.
	KindUnexpected ErrorKind = iota
	// KindReauthRequired is a 401: the token is invalid or expired.
	KindReauthRequired
	// KindRateLimited is a 429: the caller should wait RetryAfter.
	KindRateLimited
	// KindTransient is a 5xx: the caller may retry.
	KindTransient
	// KindClientError is any other 4xx.
	KindClientError
	// KindNetwork is a transport failure with no HTTP response.
	KindNetwork
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindReauthRequired:
		return "reauth required"
	case KindRateLimited:
		return "rate limited"
	case KindTransient:
		return "transient"
	case KindClientError:
		return "client error"
	case KindNetwork:
		return "network error"
	default:
		return "unexpected"
	}
}

// sentinel returns the domain error matched by errors.Is for this kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindReauthRequired:
		return domain.ErrReauthRequired
	case KindRateLimited:
		return domain.ErrRateLimited
	case KindTransient:
		return domain.ErrTransient
	case KindClientError:
		return domain.ErrClientError
	case KindNetwork:
		return domain.ErrNetwork
	default:
		return domain.ErrUnexpected
	}
}

// APIError is returned by Client for every unsuccessful call.
type APIError struct {
	Kind ErrorKind
	// Status is the HTTP status code, zero for network errors.
	Status int
	// RetryAfter is the server's advisory delay for KindRateLimited.
	RetryAfter time.Duration
	// Code and Message come from the Graph error envelope when present.
	Code    string
	Message string
	// Body is the raw response body, truncated.
	Body string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements error.
func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("microsoft: ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Kind == KindRateLimited && e.RetryAfter > 0 {
		fmt.Fprintf(&b, ", retry after %s", e.RetryAfter)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, ": %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the domain sentinel for the error kind.
func (e *APIError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Retryable reports whether the caller may reasonably retry the call.
func (e *APIError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTransient
}

// AsAPIError extracts an APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// maxErrorBody bounds the body kept on an APIError.
const maxErrorBody = 2048

// graphErrorEnvelope is the error body returned by Microsoft Graph.
type graphErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ClassifyStatus maps a non-2xx HTTP status code to an error kind.
func ClassifyStatus(statusCode int) ErrorKind {
	switch {
	case statusCode == http.StatusUnauthorized:
		return KindReauthRequired
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimited
	case statusCode >= 500:
		return KindTransient
	case statusCode >= 400:
		return KindClientError
	default:
		return KindUnexpected
	}
}

// newStatusError builds the APIError for a non-2xx response.
func newStatusError(resp *http.Response, body []byte, now time.Time) *APIError {
	apiErr := &APIError{
		Kind:   ClassifyStatus(resp.StatusCode),
		Status: resp.StatusCode,
		Body:   truncate(string(body), maxErrorBody),
	}

	var envelope graphErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}

	if apiErr.Kind == KindRateLimited {
		apiErr.RetryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"), now)
	}
	return apiErr
}

// ParseRetryAfter parses a Retry-After header value given either as
// delta-seconds or as an HTTP date. It returns zero when absent or invalid.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}

// IsRetryable checks if the status code is potentially transient and can be retried.
func IsRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
