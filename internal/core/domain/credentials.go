package domain

import (
	"fmt"
	"strings"
)

// DefaultScopes are requested when no scopes are configured.
var DefaultScopes = []string{
	"User.Read",           // Profile lookup
	"Calendars.ReadWrite", // Event listing and creation
}

// Credentials identifies the client application registered with the
// identity platform. It is immutable once constructed.
type Credentials struct {
	clientID string
	tenantID string
	scopes   []string
}

// NewCredentials validates and builds Credentials.
// Empty client or tenant identifiers return an error wrapping ErrConfig.
func NewCredentials(clientID, tenantID string, scopes []string) (Credentials, error) {
	clientID = strings.TrimSpace(clientID)
	tenantID = strings.TrimSpace(tenantID)

	var missing []string
	if clientID == "" {
		missing = append(missing, "client id")
	}
	if tenantID == "" {
		missing = append(missing, "tenant id")
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: %s must be set", ErrConfig, strings.Join(missing, " and "))
	}

	cleaned := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultScopes...)
	}

	return Credentials{clientID: clientID, tenantID: tenantID, scopes: cleaned}, nil
}

// ClientID returns the application (client) identifier.
func (c Credentials) ClientID() string { return c.clientID }

// TenantID returns the directory (tenant) identifier.
func (c Credentials) TenantID() string { return c.tenantID }

// Scopes returns a copy of the requested scopes in order.
func (c Credentials) Scopes() []string {
	out := make([]string, len(c.scopes))
	copy(out, c.scopes)
	return out
}

// IsZero reports whether the credentials were never constructed.
func (c Credentials) IsZero() bool {
	return c.clientID == "" && c.tenantID == ""
}
