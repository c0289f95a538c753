package microsoft

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   ErrorKind
	}{
		{name: "unauthorised", statusCode: http.StatusUnauthorized, expected: KindReauthRequired},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, expected: KindRateLimited},
		{name: "internal server error", statusCode: http.StatusInternalServerError, expected: KindTransient},
		{name: "service unavailable", statusCode: http.StatusServiceUnavailable, expected: KindTransient},
		{name: "bad request", statusCode: http.StatusBadRequest, expected: KindClientError},
		{name: "forbidden", statusCode: http.StatusForbidden, expected: KindClientError},
		{name: "not found", statusCode: http.StatusNotFound, expected: KindClientError},
		{name: "redirect", statusCode: http.StatusFound, expected: KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyStatus(tt.statusCode))
		})
	}
}

func TestAPIError_IsMatchesSentinel(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{kind: KindReauthRequired, sentinel: domain.ErrReauthRequired},
		{kind: KindRateLimited, sentinel: domain.ErrRateLimited},
		{kind: KindTransient, sentinel: domain.ErrTransient},
		{kind: KindClientError, sentinel: domain.ErrClientError},
		{kind: KindNetwork, sentinel: domain.ErrNetwork},
		{kind: KindUnexpected, sentinel: domain.ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("list events: %w", &APIError{Kind: tt.kind})

			assert.ErrorIs(t, err, tt.sentinel)
			if tt.kind != KindUnexpected {
				assert.NotErrorIs(t, err, domain.ErrUnexpected)
			}
		})
	}
}

func TestAPIError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &APIError{Kind: KindNetwork, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAPIError_Retryable(t *testing.T) {
	assert.True(t, (&APIError{Kind: KindRateLimited}).Retryable())
	assert.True(t, (&APIError{Kind: KindTransient}).Retryable())
	assert.False(t, (&APIError{Kind: KindReauthRequired}).Retryable())
	assert.False(t, (&APIError{Kind: KindClientError}).Retryable())
	assert.False(t, (&APIError{Kind: KindNetwork}).Retryable())
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{
		Kind:       KindRateLimited,
		Status:     http.StatusTooManyRequests,
		RetryAfter: 30 * time.Second,
		Code:       "TooManyRequests",
	}

	msg := err.Error()

	assert.Contains(t, msg, "rate limited")
	assert.Contains(t, msg, "status 429")
	assert.Contains(t, msg, "retry after 30s")
	assert.Contains(t, msg, "TooManyRequests")
}

func TestAsAPIError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", &APIError{Kind: KindTransient, Status: 503})

	apiErr, ok := AsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 503, apiErr.Status)

	_, ok = AsAPIError(errors.New("plain"))
	assert.False(t, ok)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "empty", value: "", expected: 0},
		{name: "seconds", value: "120", expected: 120 * time.Second},
		{name: "padded seconds", value: " 7 ", expected: 7 * time.Second},
		{name: "negative", value: "-3", expected: 0},
		{name: "http date", value: now.Add(45 * time.Second).Format(http.TimeFormat), expected: 45 * time.Second},
		{name: "past http date", value: now.Add(-time.Minute).Format(http.TimeFormat), expected: 0},
		{name: "garbage", value: "soon", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseRetryAfter(tt.value, now))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   bool
	}{
		{name: "rate limited is retryable", statusCode: http.StatusTooManyRequests, expected: true},
		{name: "service unavailable is retryable", statusCode: http.StatusServiceUnavailable, expected: true},
		{name: "internal server error is retryable", statusCode: http.StatusInternalServerError, expected: true},
		{name: "unauthorised is not retryable", statusCode: http.StatusUnauthorized, expected: false},
		{name: "not found is not retryable", statusCode: http.StatusNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.statusCode))
		})
	}
}
