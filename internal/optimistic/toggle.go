// ABOUTME: Optimistic toggle helper: flip immediately, reconcile or roll back
// ABOUTME: One implementation shared by every toggle call site, with per-entity in-flight guard

package optimistic

import (
	"context"
	"errors"
	"sync"

	"github.com/botino/botino/internal/notify"
)

// ErrInFlight is returned when a toggle starts for an entity whose previous
// toggle has not settled.
var ErrInFlight = errors.New("toggle already in flight for this entity")

// Toggle describes one optimistic flip of a boolean-like state.
type Toggle struct {
	// Key identifies the entity; concurrent toggles on distinct keys are
	// independent, while a second toggle on the same key is rejected.
	Key string

	// Apply installs the optimistic (flipped) displayed state.
	Apply func()
	// Rollback restores the pre-toggle displayed state.
	Rollback func()
	// Request performs the state-changing backend call.
	Request func(ctx context.Context) error
	// Refresh reconciles the authoritative list after success. Called
	// exactly once per successful toggle.
	Refresh func()

	// PendingTitle and SuccessText feed the progress and success notices.
	PendingTitle string
	SuccessText  string
}

// Toggler runs optimistic toggles and tracks which entities are in flight.
type Toggler struct {
	notifier notify.Notifier

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewToggler creates a Toggler surfacing notices through the given notifier.
func NewToggler(notifier notify.Notifier) *Toggler {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Toggler{
		notifier: notifier,
		inFlight: make(map[string]bool),
	}
}

// InFlight reports whether a toggle for key has not yet settled. Views use
// this to disable the control.
func (t *Toggler) InFlight(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight[key]
}

// Run executes one optimistic toggle: flip the displayed state, issue the
// request, keep the flip and refresh on success, revert on failure.
func (t *Toggler) Run(ctx context.Context, tg Toggle) error {
	t.mu.Lock()
	if t.inFlight[tg.Key] {
		t.mu.Unlock()
		return ErrInFlight
	}
	t.inFlight[tg.Key] = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.inFlight, tg.Key)
		t.mu.Unlock()
	}()

	t.notifier.Info(tg.PendingTitle, "Please wait a moment while we update the bot status.")
	tg.Apply()

	if err := tg.Request(ctx); err != nil {
		tg.Rollback()
		t.notifier.Error("Error", "Could not update bot status")
		return err
	}

	t.notifier.Success("Success!", tg.SuccessText)
	if tg.Refresh != nil {
		tg.Refresh()
	}
	return nil
}
