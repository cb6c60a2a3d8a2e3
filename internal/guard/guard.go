// ABOUTME: Route guard: decides whether a protected view renders or redirects
// ABOUTME: Pure function of session state plus one admin-only flag, no state of its own

package guard

import (
	"github.com/botino/botino/internal/session"
)

// Decision is the single outcome of evaluating a guard.
type Decision int

const (
	// Placeholder renders a loading skeleton; never redirect while the
	// session is still bootstrapping.
	Placeholder Decision = iota
	// RedirectLogin sends the user to the login route, replacing history.
	RedirectLogin
	// RedirectDashboard sends an authenticated non-admin away from an
	// admin-only view, to the default authenticated landing route.
	RedirectDashboard
	// Allow renders the guarded view unchanged.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Placeholder:
		return "placeholder"
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Evaluate gates a protected view. The same function serves both the general
// protected views and the admin-only ones; adminOnly is the only knob.
func Evaluate(state session.State, adminOnly bool) Decision {
	if state.Loading {
		return Placeholder
	}
	if !state.Authenticated() {
		return RedirectLogin
	}
	if adminOnly && !state.IsAdmin() {
		return RedirectDashboard
	}
	return Allow
}

// Target returns the route a redirect decision points at, or "" for
// non-redirect decisions.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return session.RouteLogin
	case RedirectDashboard:
		return session.RouteDashboard
	}
	return ""
}
