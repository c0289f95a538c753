package driven

import (
	"context"

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// CalendarConnector performs calendar operations against a remote API with
// an already acquired token.
type CalendarConnector interface {
	// GetProfile returns the signed-in user's profile.
	GetProfile(ctx context.Context) (*domain.Profile, error)

	// ListUpcomingEvents returns up to limit events in server order.
	ListUpcomingEvents(ctx context.Context, limit int) ([]domain.CalendarEvent, error)

	// CreateEvent creates an event and returns the server's copy.
	CreateEvent(ctx context.Context, subject string, durationMinutes int) (*domain.CalendarEvent, error)
}

// CalendarConnectorFactory binds a CalendarConnector to a token.
type CalendarConnectorFactory interface {
	NewCalendar(token *domain.TokenSet) (CalendarConnector, error)
}
