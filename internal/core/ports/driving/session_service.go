package driving

import (
	"context"

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// SessionService runs sign-in and hands out services bound to the token.
type SessionService interface {
	// Authenticate runs the device flow and returns the token.
	// Denied, expired and failed flows return an error wrapping
	// ErrAuthDenied, ErrAuthExpired or ErrAuthFlow.
	Authenticate(ctx context.Context) (*domain.TokenSet, error)

	// Calendar binds a CalendarService to token.
	Calendar(token *domain.TokenSet) (CalendarService, error)
}
