// Package microsoft provides Microsoft identity platform and Graph API
// support for graphcal.
//
// This package provides:
//   - OAuth2 endpoints for a tenant or a custom authority
//   - An authenticated Graph client bound to a single TokenSet
//   - Rate limiting for Microsoft Graph API requests
//   - Error classification for Microsoft Graph API responses
//
// Sign-in itself lives in the deviceflow subpackage and calendar
// operations in the calendar subpackage.
//
// # Device Code Flow
//
// Endpoints are tenant scoped:
//   - Device code: https://login.microsoftonline.com/{tenant}/oauth2/v2.0/devicecode
//   - Token: https://login.microsoftonline.com/{tenant}/oauth2/v2.0/token
//
// No refresh token is requested. Once the access token expires the client
// refuses further calls with KindReauthRequired and the user signs in again.
//
// # Errors
//
// Every failed call returns an *APIError. Its Kind matches the domain
// sentinels with errors.Is:
//   - 401: ErrReauthRequired
//   - 429: ErrRateLimited, with RetryAfter from the Retry-After header
//   - 5xx: ErrTransient
//   - other 4xx: ErrClientError
//   - transport failures: ErrNetwork
//
// The client never retries. A 429 only holds back later calls through the
// rate limiter.
//
// # Rate Limits
//
// Microsoft Graph allows approximately 10,000 requests per 10 minutes per app.
// This package implements conservative rate limiting to avoid hitting quotas.
package microsoft
