// ABOUTME: Package documentation for the session store
// ABOUTME: Describes state shape, lifecycle, and the sync invariant

// Package session holds the process-wide authentication state.
//
// # Overview
//
// One Store instance lives for the duration of the process. It is the only
// writer of the in-memory identity and of the persisted identity record, and
// it updates both together on every mutation path (login success, logout,
// session expiry), so the two can never diverge.
//
// Authentication is not a separate flag: State.Authenticated() is derived
// from identity presence. A partial failure cannot leave the store claiming
// to be authenticated with no identity, or the reverse.
//
// # Lifecycle
//
//	store := session.New(session.Options{...})
//	client.SetUnauthenticatedHandler(store.SessionExpired)
//	store.Bootstrap(ctx)        // runs once; restores persisted identity first
//	store.Login(ctx, ...)       // CSRF fetch -> submit -> adopt -> persist
//	store.Logout(ctx)           // best-effort backend call, unconditional local clear
//
// Bootstrap restores the persisted record synchronously before any network
// activity, so a restarted client renders its logged-in view immediately;
// the CSRF liveness check only settles the Loading flag.
//
// # Subscribers
//
// Views register with Subscribe and receive every state snapshot. Callbacks
// run outside the store's lock; a subscriber may call back into the store.
package session
