package driven

import (
	"context"

	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// Authenticator obtains a token for a set of credentials.
// Negative outcomes are returned as AuthResult variants, never as panics.
type Authenticator interface {
	Authenticate(ctx context.Context, creds domain.Credentials) domain.AuthResult
}
