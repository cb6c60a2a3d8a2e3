// ABOUTME: Session store: single source of truth for who is logged in and with what role
// ABOUTME: Owns bootstrap/login/signup/logout and keeps memory and persisted state in sync

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/botino/botino/internal/api"
	"github.com/botino/botino/internal/localstate"
	"github.com/botino/botino/internal/notify"
)

// Routes the store navigates to on session transitions.
const (
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
)

// ErrLoginInFlight is returned when a login attempt starts while another
// one has not settled.
var ErrLoginInFlight = errors.New("login already in progress")

// ErrNotOffline is returned when a demo-only operation is used with a
// real backend configured.
var ErrNotOffline = errors.New("demo identities require offline mode")

// State is an immutable snapshot of the session. Authentication is derived
// from identity presence, so the two can never disagree.
type State struct {
	// Loading is true only during bootstrap, until the CSRF liveness
	// check settles. It never becomes true again afterwards.
	Loading bool

	// Identity is nil when logged out.
	Identity *Identity
}

// Authenticated reports whether an identity is present.
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// IsAdmin reports whether the current identity carries the admin role.
func (s State) IsAdmin() bool {
	return s.Identity != nil && s.Identity.IsAdmin()
}

// Backend is the slice of the API client the session store depends on.
type Backend interface {
	FetchCSRF(ctx context.Context) error
	Login(ctx context.Context, username, password string) (*api.LoginUser, error)
	Signup(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
}

// Persister is the durable slot for the identity record.
type Persister interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Navigator switches the active route, replacing history so back-navigation
// cannot loop into a guarded view.
type Navigator interface {
	Replace(route string)
}

// Options configures a Store.
type Options struct {
	Backend   Backend
	Persister Persister
	Notifier  notify.Notifier
	Navigator Navigator
	Offline   bool
	Logger    *slog.Logger
}

// Store holds the process-wide session. All mutation goes through its
// methods; readers subscribe for change notification or take snapshots.
type Store struct {
	backend   Backend
	persister Persister
	notifier  notify.Notifier
	nav       Navigator
	offline   bool
	logger    *slog.Logger

	mu            sync.Mutex
	state         State
	subscribers   map[int]func(State)
	nextSub       int
	loginInFlight bool

	bootstrapOnce sync.Once
}

// New creates a session store in the loading state.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Store{
		backend:     opts.Backend,
		persister:   opts.Persister,
		notifier:    notifier,
		nav:         opts.Navigator,
		offline:     opts.Offline,
		logger:      logger.With("component", "session"),
		state:       State{Loading: true},
		subscribers: make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAdmin reports whether the current identity carries the admin role.
func (s *Store) IsAdmin() bool {
	return s.State().IsAdmin()
}

// Subscribe registers fn to run after every state change. The returned
// function unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// setState replaces the snapshot and notifies subscribers outside the lock.
func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

// Bootstrap initializes the session exactly once. The persisted identity is
// restored synchronously before this returns the first time, so a restart
// never renders a logged-out view for a logged-in user. The CSRF fetch that
// follows is a liveness check only: success and failure both clear Loading.
func (s *Store) Bootstrap(ctx context.Context) {
	s.bootstrapOnce.Do(func() {
		restored := s.restoreIdentity(ctx)

		if s.offline {
			s.setState(State{Loading: false, Identity: restored})
			return
		}

		if err := s.backend.FetchCSRF(ctx); err != nil {
			s.logger.Warn("could not fetch CSRF token", "error", err)
		}
		s.setState(State{Loading: false, Identity: s.State().Identity})
	})
}

// restoreIdentity loads the persisted identity record, if any, and publishes
// it while still loading.
func (s *Store) restoreIdentity(ctx context.Context) *Identity {
	data, err := s.persister.Get(ctx, localstate.IdentityKey)
	if errors.Is(err, localstate.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("could not read persisted identity", "error", err)
		return nil
	}

	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		s.logger.Warn("discarding corrupt persisted identity", "error", err)
		if err := s.persister.Delete(ctx, localstate.IdentityKey); err != nil {
			s.logger.Warn("could not remove corrupt identity record", "error", err)
		}
		return nil
	}

	s.setState(State{Loading: true, Identity: &identity})
	return &identity
}

// Login authenticates with the backend. In offline mode it is a no-op
// success; the login form constructs a demo identity via UseDemoIdentity.
// On any failure the store is fully reset to a clean logged-out state, an
// error notice is surfaced, and the error is returned.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if s.offline {
		return nil
	}

	s.mu.Lock()
	if s.loginInFlight {
		s.mu.Unlock()
		return ErrLoginInFlight
	}
	s.loginInFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loginInFlight = false
		s.mu.Unlock()
	}()

	// CSRF fetch, credential submit, state update, persist: strictly ordered.
	if err := s.backend.FetchCSRF(ctx); err != nil {
		return s.failLogin(ctx, fmt.Errorf("fetching CSRF token: %w", err))
	}

	user, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return s.failLogin(ctx, err)
	}

	identity := identityFromLogin(user)
	if err := s.adopt(ctx, identity); err != nil {
		return s.failLogin(ctx, err)
	}

	s.notifier.Success("Welcome back!", "You've been successfully logged in.")
	return nil
}

// failLogin resets to logged-out and surfaces the failure.
func (s *Store) failLogin(ctx context.Context, err error) error {
	s.reset(ctx)
	s.notifier.Error("Login failed", describeError(err))
	return err
}

// Signup registers an account and then logs in with the same credentials;
// registration alone does not establish a session. The error is returned as
// well as surfaced, so a calling form can keep its own loading state honest.
func (s *Store) Signup(ctx context.Context, displayName, email, password string) error {
	if s.offline {
		return nil
	}

	s.logger.Debug("registering account", "username", email, "display_name", displayName)

	if err := s.backend.FetchCSRF(ctx); err != nil {
		s.notifier.Error("Signup failed", describeError(err))
		return err
	}

	if err := s.backend.Signup(ctx, email, password); err != nil {
		s.notifier.Error("Signup failed", describeError(err))
		return err
	}

	return s.Login(ctx, email, password)
}

// Logout notifies the backend best-effort and unconditionally clears local
// state. Calling it while already logged out is harmless.
func (s *Store) Logout(ctx context.Context) {
	if !s.offline {
		if err := s.backend.Logout(ctx); err != nil {
			s.logger.Warn("backend logout failed", "error", err)
		}
	}
	s.reset(ctx)
}

// SessionExpired is the unauthenticated listener wired to the API client.
// Any 401, from any feature, lands here: the persisted record is erased, the
// user is told, and the app navigates to the login route. Navigation happens
// even if the notifier misbehaves.
func (s *Store) SessionExpired() {
	s.reset(context.Background())

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("notifier panicked during session teardown", "panic", r)
			}
		}()
		s.notifier.Error("Session expired", "Please log in again.")
	}()

	if s.nav != nil {
		s.nav.Replace(RouteLogin)
	}
}

// adopt installs an identity in memory and on disk together. If the record
// cannot be persisted the in-memory state is not kept either, so the two
// slots never diverge.
func (s *Store) adopt(ctx context.Context, identity Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}
	if err := s.persister.Set(ctx, localstate.IdentityKey, data); err != nil {
		return fmt.Errorf("persisting identity: %w", err)
	}
	s.setState(State{Loading: false, Identity: &identity})
	return nil
}

// reset clears the in-memory identity and the persisted record.
func (s *Store) reset(ctx context.Context) {
	if err := s.persister.Delete(ctx, localstate.IdentityKey); err != nil {
		s.logger.Warn("could not remove persisted identity", "error", err)
	}
	s.setState(State{Loading: false, Identity: nil})
}

// describeError extracts a human-readable description, preferring the
// backend's structured validation detail.
func describeError(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if err != nil {
		return err.Error()
	}
	return "request failed"
}
