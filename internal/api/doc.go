// ABOUTME: Package documentation for the Botino backend HTTP client
// ABOUTME: Describes cookie handling, CSRF, and the 401 signal contract

// Package api implements the HTTP client for the Botino backend.
//
// # Overview
//
// Every outbound request goes through one Client. The client owns a cookie
// jar, so the backend's session cookie and the csrf_token cookie set by
// GET /api/csrf persist across calls. State-changing requests (POST, PUT,
// PATCH, DELETE) read the CSRF cookie back out of the jar and attach it as
// the X-CSRF-Token header.
//
// # Endpoints
//
//   - Login / Signup / Logout: session lifecycle
//   - FetchCSRF: obtain the anti-forgery cookie
//   - ListBots / CreateBot / ToggleBot / GetBotConfig / PutBotConfig / DeleteBot
//   - ListEngines: AI engines available for configuration
//   - ListUsers / GetSystemStats / ListLogs: admin reads
//   - ListMessages: dashboard message feed
//
// # Unauthenticated signal
//
// The client never redirects or mutates session state. When any call
// receives a 401, the handler registered via SetUnauthenticatedHandler is
// invoked and the error is returned to the caller. The session store is the
// single listener: it clears the persisted identity, notifies the user, and
// navigates to the login route. This keeps the transport independently
// testable.
//
// # Errors
//
// Non-2xx responses become *Error, carrying the status code and any
// structured validation detail the backend included. There are no automatic
// retries; callers see every failure.
package api
