// Package calendar provides the Microsoft Graph calendar operations:
// profile lookup, listing upcoming events and creating an event.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/graphcal/internal/connectors/microsoft"
	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// Graph resource paths and the fixed event projection.
const (
	profilePath  = "/me"
	eventsPath   = "/me/events"
	eventSelect  = "subject,organizer,start,end"
	eventOrderBy = "start/dateTime ASC"
)

// graphDateTime is the layout Graph expects in DateTimeZone.DateTime.
const graphDateTime = "2006-01-02T15:04:05"

// Requester performs an authenticated Graph call.
// *microsoft.Client satisfies it.
type Requester interface {
	Request(ctx context.Context, method, path string, query url.Values, body any) (*microsoft.Response, error)
}

// Service implements driving.CalendarService on top of a Graph client.
type Service struct {
	client Requester
	cfg    Config
	loc    *time.Location
	log    *zap.SugaredLogger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock sets the time source used to place created events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a calendar service. Unset config fields take defaults.
func NewService(client Requester, cfg Config, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: calendar service requires a graph client", domain.ErrConfig)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown calendar time_zone %q", domain.ErrConfig, cfg.TimeZone)
	}

	s := &Service{
		client: client,
		cfg:    cfg,
		loc:    loc,
		log:    zap.NewNop().Sugar(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetProfile returns the signed-in user's profile.
func (s *Service) GetProfile(ctx context.Context) (*domain.Profile, error) {
	resp, err := s.client.Request(ctx, http.MethodGet, profilePath, nil, nil)
	if err != nil {
		return nil, err
	}
	var profile domain.Profile
	if err := resp.Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// eventsPage is the collection envelope of GET /me/events.
type eventsPage struct {
	Value []domain.CalendarEvent `json:"value"`
}

// ListUpcomingEvents returns up to limit events ordered by start time.
// A limit of 0 uses the configured default. The server's order is kept.
func (s *Service) ListUpcomingEvents(ctx context.Context, limit int) ([]domain.CalendarEvent, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidInput, limit)
	}
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}

	query := url.Values{
		"$select":  {eventSelect},
		"$top":     {strconv.Itoa(limit)},
		"$orderby": {eventOrderBy},
	}
	resp, err := s.client.Request(ctx, http.MethodGet, eventsPath, query, nil)
	if err != nil {
		return nil, err
	}

	var page eventsPage
	if err := resp.Decode(&page); err != nil {
		return nil, err
	}
	s.log.Debugf("microsoft-calendar: listed %d events (top %d)", len(page.Value), limit)
	if page.Value == nil {
		return []domain.CalendarEvent{}, nil
	}
	return page.Value, nil
}

// NewDraft builds the payload for an event starting StartOffset minutes
// from now and lasting durationMinutes.
func (s *Service) NewDraft(subject string, durationMinutes int) (domain.EventDraft, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return domain.EventDraft{}, fmt.Errorf("%w: subject must not be empty", domain.ErrInvalidInput)
	}
	if durationMinutes < 0 {
		return domain.EventDraft{}, fmt.Errorf("%w: duration must be positive, got %d minutes",
			domain.ErrInvalidInput, durationMinutes)
	}
	if durationMinutes == 0 {
		durationMinutes = s.cfg.DefaultDuration
	}

	// Whole seconds, so the formatted times round-trip exactly.
	start := s.now().In(s.loc).Truncate(time.Second).Add(s.cfg.startOffset())
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	return domain.EventDraft{
		Subject: subject,
		Body: domain.ItemBody{
			ContentType: s.cfg.BodyContentType,
			Content:     s.cfg.BodyContent,
		},
		Start:    domain.DateTimeZone{DateTime: start.Format(graphDateTime), TimeZone: s.cfg.TimeZone},
		End:      domain.DateTimeZone{DateTime: end.Format(graphDateTime), TimeZone: s.cfg.TimeZone},
		Location: domain.Location{DisplayName: s.cfg.LocationName},
	}, nil
}

// CreateEvent creates an event and returns it as the server recorded it.
// A duration of 0 uses the configured default.
func (s *Service) CreateEvent(ctx context.Context, subject string, durationMinutes int) (*domain.CalendarEvent, error) {
	draft, err := s.NewDraft(subject, durationMinutes)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Request(ctx, http.MethodPost, eventsPath, nil, draft)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create event: %w", resp.UnexpectedStatus(http.StatusCreated))
	}

	var event domain.CalendarEvent
	if err := resp.Decode(&event); err != nil {
		return nil, err
	}
	s.log.Debugf("microsoft-calendar: created event %q from %s to %s",
		event.Subject, draft.Start.DateTime, draft.End.DateTime)
	return &event, nil
}
