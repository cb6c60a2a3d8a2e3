// ABOUTME: Package documentation for the interactive dashboard
// ABOUTME: Describes routing, guard enforcement, and message flow

// Package tui implements the interactive terminal dashboard.
//
// # Overview
//
// The dashboard is a Bubble Tea program with three routes mirroring the web
// dashboard: /login, /dashboard (bot list), and /admin (system stats).
// Navigation always replaces the active route; there is no history stack to
// loop back through into a guarded view.
//
// # Guard enforcement
//
// Every navigation and every session change passes through guard.Evaluate.
// While the session is bootstrapping the guarded routes render a skeleton;
// an unauthenticated session is redirected to /login; an authenticated
// non-admin asking for /admin lands on /dashboard.
//
// # Message flow
//
// The session store and its notifier are created before the program exists,
// so both talk to the event loop through a settable program handle. Session
// snapshots arrive as subscription messages; toast notices land in the
// status bar; a 401 anywhere surfaces as a session message plus a navigation
// to /login, both originating in the session store's expiry handler.
package tui
