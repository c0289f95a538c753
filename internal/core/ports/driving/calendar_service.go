package driving

import (
	"context"

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// CalendarService exposes the calendar operations of a signed-in session.
type CalendarService interface {
	// GetProfile returns the signed-in user's profile.
	GetProfile(ctx context.Context) (*domain.Profile, error)

	// ListUpcomingEvents returns up to limit upcoming events, earliest first.
	// A limit of 0 uses the configured default; a negative limit returns
	// ErrInvalidInput.
	ListUpcomingEvents(ctx context.Context, limit int) ([]domain.CalendarEvent, error)

	// CreateEvent creates an event starting shortly after now.
	// A duration of 0 uses the configured default. The returned event is
	// the server's record, not the locally built draft.
	CreateEvent(ctx context.Context, subject string, durationMinutes int) (*domain.CalendarEvent, error)
}
