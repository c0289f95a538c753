// Package connectors wires API connectors to the tokens they run with.
package connectors

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/custodia-labs/graphcal/internal/connectors/microsoft"
	"github.com/custodia-labs/graphcal/internal/connectors/microsoft/calendar"
	"github.com/custodia-labs/graphcal/internal/core/domain"
	"github.com/custodia-labs/graphcal/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.CalendarConnectorFactory = (*Factory)(nil)

// Factory creates Microsoft Graph calendar connectors.
// The rate limiter is shared by every connector it creates, so a
// Retry-After seen by one call holds back the next.
type Factory struct {
	calendarConfig calendar.Config
	rateLimiter    *microsoft.RateLimiter
	graphOptions   []microsoft.ClientOption
	log            *zap.SugaredLogger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithGraphOptions appends options passed to every Graph client.
func WithGraphOptions(opts ...microsoft.ClientOption) FactoryOption {
	return func(f *Factory) {
		f.graphOptions = append(f.graphOptions, opts...)
	}
}

// WithLogger sets the logger handed to clients and services.
func WithLogger(log *zap.SugaredLogger) FactoryOption {
	return func(f *Factory) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFactory creates a connector factory.
func NewFactory(calendarConfig calendar.Config, rateLimit microsoft.RateLimitConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		calendarConfig: calendarConfig,
		rateLimiter:    microsoft.NewRateLimiter(rateLimit),
		log:            zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewCalendar creates a calendar connector bound to token.
// An expired token fails with ErrReauthRequired.
func (f *Factory) NewCalendar(token *domain.TokenSet) (driven.CalendarConnector, error) {
	opts := append([]microsoft.ClientOption{
		microsoft.WithRateLimiter(f.rateLimiter),
		microsoft.WithLogger(f.log),
	}, f.graphOptions...)

	client, err := microsoft.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("microsoft-calendar: %w", err)
	}

	svc, err := calendar.NewService(client, f.calendarConfig, calendar.WithLogger(f.log))
	if err != nil {
		return nil, fmt.Errorf("microsoft-calendar config: %w", err)
	}
	return svc, nil
}
