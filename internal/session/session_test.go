// ABOUTME: Tests for the session store lifecycle: bootstrap, login, signup, logout
// ABOUTME: Covers persistence restore, failure resets, and the 401 teardown path

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botino/botino/internal/api"
	"github.com/botino/botino/internal/localstate"
	"github.com/botino/botino/internal/notify"
)

// fakeBackend is a scripted Backend. Each func field defaults to success.
type fakeBackend struct {
	mu         sync.Mutex
	csrfCalls  int
	loginCalls int

	csrfErr   error
	loginFn   func(username, password string) (*api.LoginUser, error)
	signupErr error
	logoutErr error
}

func (f *fakeBackend) FetchCSRF(ctx context.Context) error {
	f.mu.Lock()
	f.csrfCalls++
	f.mu.Unlock()
	return f.csrfErr
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (*api.LoginUser, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	if f.loginFn != nil {
		return f.loginFn(username, password)
	}
	return &api.LoginUser{ID: "u-1", Username: username, Role: "user"}, nil
}

func (f *fakeBackend) Signup(ctx context.Context, username, password string) error {
	return f.signupErr
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	return f.logoutErr
}

// recordingNavigator captures route replacements.
type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Replace(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) replaced() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.routes))
	copy(out, n.routes)
	return out
}

// newTestPersister opens a real localstate store in a temp directory.
func newTestPersister(t *testing.T) *localstate.Store {
	t.Helper()
	store, err := localstate.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// newTestStore wires a Store with a fake backend, real persister, recorder,
// and recording navigator, returning all the pieces for assertions.
func newTestStore(t *testing.T, offline bool) (*Store, *fakeBackend, *localstate.Store, *notify.Recorder, *recordingNavigator) {
	t.Helper()
	backend := &fakeBackend{}
	persister := newTestPersister(t)
	recorder := notify.NewRecorder()
	nav := &recordingNavigator{}
	store := New(Options{
		Backend:   backend,
		Persister: persister,
		Notifier:  recorder,
		Navigator: nav,
		Offline:   offline,
	})
	return store, backend, persister, recorder, nav
}

// persistIdentity seeds the persister with an identity record.
func persistIdentity(t *testing.T, persister *localstate.Store, identity Identity) {
	t.Helper()
	data, err := json.Marshal(identity)
	require.NoError(t, err)
	require.NoError(t, persister.Set(context.Background(), localstate.IdentityKey, data))
}

func TestNew_StartsLoading(t *testing.T) {
	store, _, _, _, _ := newTestStore(t, false)

	st := store.State()
	assert.True(t, st.Loading)
	assert.False(t, st.Authenticated())
}

func TestBootstrap_RestoresIdentityBeforeLoadingClears(t *testing.T) {
	store, _, persister, _, _ := newTestStore(t, false)
	persistIdentity(t, persister, Identity{ID: "u-7", Username: "ana@example.com", Role: RoleUser})

	var snapshots []State
	store.Subscribe(func(st State) { snapshots = append(snapshots, st) })

	store.Bootstrap(context.Background())

	// The identity is published while still loading, so no subscriber ever
	// observes a loaded-but-logged-out snapshot for a returning user.
	require.NotEmpty(t, snapshots)
	first := snapshots[0]
	assert.True(t, first.Loading)
	require.NotNil(t, first.Identity)
	assert.Equal(t, "u-7", first.Identity.ID)

	final := store.State()
	assert.False(t, final.Loading)
	require.NotNil(t, final.Identity)
	assert.Equal(t, "ana@example.com", final.Identity.Username)
}

func TestBootstrap_NoPersistedIdentity(t *testing.T) {
	store, backend, _, _, _ := newTestStore(t, false)

	store.Bootstrap(context.Background())

	st := store.State()
	assert.False(t, st.Loading)
	assert.False(t, st.Authenticated())
	assert.Equal(t, 1, backend.csrfCalls)
}

func TestBootstrap_CSRFFailureStillClearsLoading(t *testing.T) {
	store, backend, persister, _, _ := newTestStore(t, false)
	backend.csrfErr = errors.New("connection refused")
	persistIdentity(t, persister, Identity{ID: "u-7", Username: "ana@example.com", Role: RoleUser})

	store.Bootstrap(context.Background())

	// An unreachable backend must not strand the app on the loading screen,
	// and the restored identity survives the failed liveness check.
	st := store.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Identity)
	assert.Equal(t, "u-7", st.Identity.ID)
}

func TestBootstrap_OfflineSkipsNetwork(t *testing.T) {
	store, backend, _, _, _ := newTestStore(t, true)

	store.Bootstrap(context.Background())

	assert.Equal(t, 0, backend.csrfCalls)
	assert.False(t, store.State().Loading)
}

func TestBootstrap_RunsOnce(t *testing.T) {
	store, backend, _, _, _ := newTestStore(t, false)

	store.Bootstrap(context.Background())
	store.Bootstrap(context.Background())
	store.Bootstrap(context.Background())

	assert.Equal(t, 1, backend.csrfCalls)
}

func TestBootstrap_CorruptRecordDiscarded(t *testing.T) {
	store, _, persister, _, _ := newTestStore(t, false)
	require.NoError(t, persister.Set(context.Background(), localstate.IdentityKey, []byte("{not json")))

	store.Bootstrap(context.Background())

	assert.False(t, store.State().Authenticated())
	_, err := persister.Get(context.Background(), localstate.IdentityKey)
	assert.ErrorIs(t, err, localstate.ErrNotFound)
}

func TestLogin_SuccessAdoptsAndPersists(t *testing.T) {
	store, backend, persister, recorder, _ := newTestStore(t, false)
	backend.loginFn = func(username, password string) (*api.LoginUser, error) {
		return &api.LoginUser{ID: "u-9", Username: username, Role: "admin", SubscriptionStatus: "active"}, nil
	}

	require.NoError(t, store.Login(context.Background(), "root@example.com", "secret"))

	st := store.State()
	require.NotNil(t, st.Identity)
	assert.Equal(t, "u-9", st.Identity.ID)
	assert.Equal(t, "root", st.Identity.DisplayName)
	assert.True(t, st.IsAdmin())

	// Identity is on disk, so a restart restores the session.
	data, err := persister.Get(context.Background(), localstate.IdentityKey)
	require.NoError(t, err)
	var persisted Identity
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "u-9", persisted.ID)

	notices := recorder.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.LevelSuccess, notices[0].Level)
	assert.Equal(t, "Welcome back!", notices[0].Title)
	assert.Equal(t, "You've been successfully logged in.", notices[0].Description)
}

func TestLogin_FetchesFreshCSRFFirst(t *testing.T) {
	store, backend, _, _, _ := newTestStore(t, false)

	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))

	assert.Equal(t, 1, backend.csrfCalls)
	assert.Equal(t, 1, backend.loginCalls)
}

func TestLogin_BadCredentialsResetsAndNotifies(t *testing.T) {
	store, backend, persister, recorder, _ := newTestStore(t, false)
	backend.loginFn = func(username, password string) (*api.LoginUser, error) {
		return nil, &api.Error{Status: 401, Detail: "incorrect username or password"}
	}

	err := store.Login(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)

	assert.False(t, store.State().Authenticated())
	_, getErr := persister.Get(context.Background(), localstate.IdentityKey)
	assert.ErrorIs(t, getErr, localstate.ErrNotFound)

	errs := recorder.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Login failed", errs[0].Title)
	assert.Equal(t, "incorrect username or password", errs[0].Description)
}

func TestLogin_ValidationDetailInNotice(t *testing.T) {
	store, backend, _, recorder, _ := newTestStore(t, false)
	backend.loginFn = func(username, password string) (*api.LoginUser, error) {
		return nil, &api.Error{Status: 422, Fields: []api.FieldError{
			{Loc: []any{"body", "password"}, Msg: "too short"},
		}}
	}

	err := store.Login(context.Background(), "ana@example.com", "x")
	require.Error(t, err)

	errs := recorder.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "body.password: too short", errs[0].Description)
}

func TestLogin_CSRFFailureResets(t *testing.T) {
	store, backend, _, recorder, _ := newTestStore(t, false)
	backend.csrfErr = errors.New("connection refused")

	err := store.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)

	assert.False(t, store.State().Authenticated())
	assert.Equal(t, 0, backend.loginCalls)
	require.Len(t, recorder.Errors(), 1)
}

func TestLogin_RejectsConcurrentAttempt(t *testing.T) {
	store, backend, _, _, _ := newTestStore(t, false)

	started := make(chan struct{})
	release := make(chan struct{})
	backend.loginFn = func(username, password string) (*api.LoginUser, error) {
		close(started)
		<-release
		return &api.LoginUser{ID: "u-1", Username: username}, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- store.Login(context.Background(), "ana@example.com", "secret")
	}()

	<-started
	err := store.Login(context.Background(), "ana@example.com", "secret")
	assert.ErrorIs(t, err, ErrLoginInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestLogin_OfflineIsNoOp(t *testing.T) {
	store, backend, _, _, _ := newTestStore(t, true)

	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))
	assert.Equal(t, 0, backend.loginCalls)
	assert.False(t, store.State().Authenticated())
}

func TestSignup_ChainsSingleLogin(t *testing.T) {
	store, backend, _, recorder, _ := newTestStore(t, false)

	require.NoError(t, store.Signup(context.Background(), "Ana", "ana@example.com", "secret"))

	assert.Equal(t, 1, backend.loginCalls)
	assert.True(t, store.State().Authenticated())

	notices := recorder.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Welcome back!", notices[0].Title)
}

func TestSignup_FailureNotifiedAndReturned(t *testing.T) {
	store, backend, _, recorder, _ := newTestStore(t, false)
	backend.signupErr = &api.Error{Status: 400, Detail: "username already taken"}

	err := store.Signup(context.Background(), "Ana", "ana@example.com", "secret")
	require.Error(t, err)

	assert.Equal(t, 0, backend.loginCalls)
	assert.False(t, store.State().Authenticated())

	errs := recorder.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Signup failed", errs[0].Title)
	assert.Equal(t, "username already taken", errs[0].Description)
}

func TestLogout_ClearsStateAndPersistence(t *testing.T) {
	store, _, persister, _, _ := newTestStore(t, false)
	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))

	store.Logout(context.Background())

	assert.False(t, store.State().Authenticated())
	_, err := persister.Get(context.Background(), localstate.IdentityKey)
	assert.ErrorIs(t, err, localstate.ErrNotFound)
}

func TestLogout_BackendFailureStillClears(t *testing.T) {
	store, backend, _, _, _ := newTestStore(t, false)
	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))
	backend.logoutErr = errors.New("connection refused")

	store.Logout(context.Background())

	assert.False(t, store.State().Authenticated())
}

func TestLogout_WhileLoggedOutIsHarmless(t *testing.T) {
	store, _, _, _, _ := newTestStore(t, false)

	store.Logout(context.Background())
	store.Logout(context.Background())

	assert.False(t, store.State().Authenticated())
}

func TestSessionExpired_TearsDownAndNavigates(t *testing.T) {
	store, _, persister, recorder, nav := newTestStore(t, false)
	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))
	recorder.Reset()

	store.SessionExpired()

	assert.False(t, store.State().Authenticated())
	_, err := persister.Get(context.Background(), localstate.IdentityKey)
	assert.ErrorIs(t, err, localstate.ErrNotFound)

	errs := recorder.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Session expired", errs[0].Title)
	assert.Equal(t, "Please log in again.", errs[0].Description)

	assert.Equal(t, []string{RouteLogin}, nav.replaced())
}

// panickingNotifier blows up on every call.
type panickingNotifier struct{}

func (panickingNotifier) Success(title, description string) { panic("notifier down") }
func (panickingNotifier) Info(title, description string)    { panic("notifier down") }
func (panickingNotifier) Error(title, description string)   { panic("notifier down") }

func TestSessionExpired_NavigatesEvenIfNotifierPanics(t *testing.T) {
	persister := newTestPersister(t)
	nav := &recordingNavigator{}
	store := New(Options{
		Backend:   &fakeBackend{},
		Persister: persister,
		Notifier:  panickingNotifier{},
		Navigator: nav,
	})

	require.NotPanics(t, func() { store.SessionExpired() })
	assert.Equal(t, []string{RouteLogin}, nav.replaced())
}

// TestSessionExpired_FiredByRealClient wires the real API client to the
// store and drives a 401 through an unrelated endpoint, exercising the full
// teardown path end to end.
func TestSessionExpired_FiredByRealClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/csrf":
			http.SetCookie(w, &http.Cookie{Name: api.CSRFCookieName, Value: "tok"})
		case "/api/login":
			json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]any{"id": "u-1", "username": "ana@example.com", "role": "user"},
			})
		case "/api/bots":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "session expired"}`))
		}
	}))
	defer srv.Close()

	client, err := api.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	persister := newTestPersister(t)
	recorder := notify.NewRecorder()
	nav := &recordingNavigator{}
	store := New(Options{
		Backend:   client,
		Persister: persister,
		Notifier:  recorder,
		Navigator: nav,
	})
	client.SetUnauthenticatedHandler(store.SessionExpired)

	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))
	require.True(t, store.State().Authenticated())
	recorder.Reset()

	_, err = client.ListBots(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	// One 401 from any feature tears the whole session down.
	assert.False(t, store.State().Authenticated())
	_, getErr := persister.Get(context.Background(), localstate.IdentityKey)
	assert.ErrorIs(t, getErr, localstate.ErrNotFound)
	assert.Equal(t, []string{RouteLogin}, nav.replaced())

	errs := recorder.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Session expired", errs[0].Title)
}

func TestSubscribe_UnsubscribeStopsNotifications(t *testing.T) {
	store, _, _, _, _ := newTestStore(t, false)

	var calls int
	unsubscribe := store.Subscribe(func(State) { calls++ })

	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))
	require.Positive(t, calls)
	before := calls

	unsubscribe()
	store.Logout(context.Background())
	assert.Equal(t, before, calls)
}

func TestUseDemoIdentity_AdminHeuristic(t *testing.T) {
	tests := []struct {
		email     string
		wantAdmin bool
	}{
		{"admin@example.com", true},
		{"sysadmin@example.com", true},
		{"ana@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			store, _, _, _, _ := newTestStore(t, true)
			require.NoError(t, store.UseDemoIdentity(context.Background(), tt.email))

			st := store.State()
			require.NotNil(t, st.Identity)
			assert.Equal(t, tt.wantAdmin, st.IsAdmin())
		})
	}
}

func TestUseDemoIdentity_RequiresOffline(t *testing.T) {
	store, _, _, _, _ := newTestStore(t, false)

	err := store.UseDemoIdentity(context.Background(), "admin@example.com")
	assert.ErrorIs(t, err, ErrNotOffline)
	assert.False(t, store.State().Authenticated())
}

func TestIdentityFromLogin_UnknownRoleBecomesUser(t *testing.T) {
	identity := identityFromLogin(&api.LoginUser{ID: "u-1", Username: "ana@example.com", Role: "superuser"})
	assert.Equal(t, RoleUser, identity.Role)
	assert.False(t, identity.IsAdmin())

	identity = identityFromLogin(&api.LoginUser{ID: "u-2", Username: "root@example.com", Role: RoleAdmin})
	assert.True(t, identity.IsAdmin())
}
