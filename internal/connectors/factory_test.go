package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/graphcal/internal/connectors/microsoft"
	"github.com/custodia-labs/graphcal/internal/connectors/microsoft/calendar"
	"github.com/custodia-labs/graphcal/internal/core/domain"
)

func liveToken() *domain.TokenSet {
	return &domain.TokenSet{AccessToken: "at", TokenType: "Bearer", ExpiresAt: time.Now().Add(time.Hour)}
}

func TestFactory_NewCalendar(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"displayName":"Ada"}`))
	}))
	defer server.Close()

	f := NewFactory(calendar.Config{}, microsoft.DefaultRateLimit,
		WithGraphOptions(microsoft.WithBaseURL(server.URL)))

	conn, err := f.NewCalendar(liveToken())
	require.NoError(t, err)

	profile, err := conn.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name())
	assert.Equal(t, "Bearer at", gotAuth)
}

func TestFactory_NewCalendar_ExpiredToken(t *testing.T) {
	f := NewFactory(calendar.Config{}, microsoft.DefaultRateLimit)

	conn, err := f.NewCalendar(&domain.TokenSet{AccessToken: "at", ExpiresAt: time.Now().Add(-time.Second)})

	assert.Nil(t, conn)
	assert.ErrorIs(t, err, domain.ErrReauthRequired)
}

func TestFactory_NewCalendar_InvalidConfig(t *testing.T) {
	f := NewFactory(calendar.Config{DefaultDuration: -1}, microsoft.DefaultRateLimit)

	conn, err := f.NewCalendar(liveToken())

	assert.Nil(t, conn)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestFactory_SharesRateLimiter(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := NewFactory(calendar.Config{}, microsoft.DefaultRateLimit,
		WithGraphOptions(microsoft.WithBaseURL(server.URL)))

	first, err := f.NewCalendar(liveToken())
	require.NoError(t, err)
	_, err = first.ListUpcomingEvents(context.Background(), 5)
	require.ErrorIs(t, err, domain.ErrRateLimited)

	second, err := f.NewCalendar(liveToken())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = second.ListUpcomingEvents(ctx, 5)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
