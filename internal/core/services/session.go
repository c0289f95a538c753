package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/custodia-labs/graphcal/internal/core/domain"
	"github.com/custodia-labs/graphcal/internal/core/ports/driven"
	"github.com/custodia-labs/graphcal/internal/core/ports/driving"
)

// Ensure Session implements the interface.
var _ driving.SessionService = (*Session)(nil)

// Session runs the device flow for one set of credentials and binds
// calendar connectors to the resulting token.
type Session struct {
	creds         domain.Credentials
	authenticator driven.Authenticator
	calendars     driven.CalendarConnectorFactory
	log           *zap.SugaredLogger
}

// NewSession creates a session service.
// Zero credentials fail with ErrConfig before any network call.
func NewSession(
	creds domain.Credentials,
	authenticator driven.Authenticator,
	calendars driven.CalendarConnectorFactory,
	log *zap.SugaredLogger,
) (*Session, error) {
	if creds.IsZero() {
		return nil, fmt.Errorf("%w: credentials are not set", domain.ErrConfig)
	}
	if authenticator == nil || calendars == nil {
		return nil, fmt.Errorf("%w: session requires an authenticator and a calendar factory", domain.ErrConfig)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Session{
		creds:         creds,
		authenticator: authenticator,
		calendars:     calendars,
		log:           log,
	}, nil
}

// Authenticate runs the device flow. Any outcome other than Authorized is
// returned as an error from AuthResult.Err.
func (s *Session) Authenticate(ctx context.Context) (*domain.TokenSet, error) {
	result := s.authenticator.Authenticate(ctx, s.creds)
	s.log.Debugf("session: authentication finished with status %s", result.Status)

	if err := result.Err(); err != nil {
		return nil, err
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: authorized without a token", domain.ErrAuthFlow)
	}
	return result.Token, nil
}

// Calendar binds a calendar service to token.
func (s *Session) Calendar(token *domain.TokenSet) (driving.CalendarService, error) {
	if token == nil {
		return nil, fmt.Errorf("%w: no token, sign in first", domain.ErrReauthRequired)
	}
	conn, err := s.calendars.NewCalendar(token)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
