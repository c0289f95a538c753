package microsoft

import (
	"strings"

	"golang.org/x/oauth2"
	msendpoints "golang.org/x/oauth2/microsoft"
)

// Microsoft identity platform constants.
const (
	defaultAuthorityHost = "https://login.microsoftonline.com"

	devicePath = "/oauth2/v2.0/devicecode"
	//nolint:gosec // G101: Not credentials, OAuth endpoint path
	tokenPath     = "/oauth2/v2.0/token"
	authorizePath = "/oauth2/v2.0/authorize"
)

// Authority returns the default authority URL for a tenant.
func Authority(tenantID string) string {
	return defaultAuthorityHost + "/" + tenantID
}

// Endpoint returns the OAuth endpoints for a tenant.
// A non-empty authority (for example a national cloud such as
// https://login.microsoftonline.us/<tenant>) overrides the public cloud.
func Endpoint(authority, tenantID string) oauth2.Endpoint {
	if authority == "" {
		return msendpoints.AzureADEndpoint(tenantID)
	}

	base := strings.TrimRight(authority, "/")
	return oauth2.Endpoint{
		AuthURL:       base + authorizePath,
		TokenURL:      base + tokenPath,
		DeviceAuthURL: base + devicePath,
		AuthStyle:     oauth2.AuthStyleInParams,
	}
}

// SetupHint returns guidance for registering an app that can use the
// device code flow.
func SetupHint() string {
	return "Register an app at portal.azure.com > App registrations, " +
		"enable \"Allow public client flows\", then set CLIENT_ID and TENANT_ID"
}
