// ABOUTME: Tests for the optimistic toggle helper
// ABOUTME: Covers rollback on failure, single refresh on success, and the in-flight guard

package optimistic

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botino/botino/internal/notify"
)

// displayed simulates the locally rendered status a view holds.
type displayed struct {
	mu     sync.Mutex
	status string
}

func (d *displayed) set(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = s
}

func (d *displayed) get() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func TestRun_SuccessKeepsFlipAndRefreshesOnce(t *testing.T) {
	rec := notify.NewRecorder()
	toggler := NewToggler(rec)

	disp := &displayed{status: "active"}
	refreshes := 0

	err := toggler.Run(context.Background(), Toggle{
		Key:          "42",
		Apply:        func() { disp.set("inactive") },
		Rollback:     func() { disp.set("active") },
		Request:      func(ctx context.Context) error { return nil },
		Refresh:      func() { refreshes++ },
		PendingTitle: "Stopping bot...",
		SuccessText:  "Bot is now inactive",
	})
	require.NoError(t, err)

	assert.Equal(t, "inactive", disp.get())
	assert.Equal(t, 1, refreshes)

	notices := rec.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, notify.LevelInfo, notices[0].Level)
	assert.Equal(t, "Stopping bot...", notices[0].Title)
	assert.Equal(t, notify.LevelSuccess, notices[1].Level)
	assert.Equal(t, "Bot is now inactive", notices[1].Description)
}

func TestRun_FailureRevertsDisplayedStatus(t *testing.T) {
	rec := notify.NewRecorder()
	toggler := NewToggler(rec)

	disp := &displayed{status: "active"}
	refreshes := 0
	backendErr := errors.New("backend exploded")

	err := toggler.Run(context.Background(), Toggle{
		Key:      "42",
		Apply:    func() { disp.set("inactive") },
		Rollback: func() { disp.set("active") },
		Request:  func(ctx context.Context) error { return backendErr },
		Refresh:  func() { refreshes++ },
	})
	require.ErrorIs(t, err, backendErr)

	// Final displayed status is the pre-toggle value.
	assert.Equal(t, "active", disp.get())
	assert.Zero(t, refreshes, "refresh must not run on failure")

	errNotices := rec.Errors()
	require.Len(t, errNotices, 1)
	assert.Equal(t, "Could not update bot status", errNotices[0].Description)
}

func TestRun_RejectsSecondToggleForSameEntity(t *testing.T) {
	toggler := NewToggler(nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- toggler.Run(context.Background(), Toggle{
			Key:      "42",
			Apply:    func() {},
			Rollback: func() {},
			Request: func(ctx context.Context) error {
				close(started)
				<-release
				return nil
			},
		})
	}()

	<-started
	assert.True(t, toggler.InFlight("42"))

	err := toggler.Run(context.Background(), Toggle{
		Key:      "42",
		Apply:    func() { t.Error("second toggle must not apply") },
		Rollback: func() {},
		Request:  func(ctx context.Context) error { return nil },
	})
	require.ErrorIs(t, err, ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, toggler.InFlight("42"))
}

func TestRun_IndependentEntitiesToggleConcurrently(t *testing.T) {
	toggler := NewToggler(nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- toggler.Run(context.Background(), Toggle{
			Key:      "1",
			Apply:    func() {},
			Rollback: func() {},
			Request: func(ctx context.Context) error {
				close(started)
				<-release
				return nil
			},
		})
	}()

	<-started

	// A different entity is not blocked by the first one being in flight.
	err := toggler.Run(context.Background(), Toggle{
		Key:      "2",
		Apply:    func() {},
		Rollback: func() {},
		Request:  func(ctx context.Context) error { return nil },
	})
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)
}

func TestRun_ClearsInFlightAfterFailure(t *testing.T) {
	toggler := NewToggler(nil)

	err := toggler.Run(context.Background(), Toggle{
		Key:      "42",
		Apply:    func() {},
		Rollback: func() {},
		Request:  func(ctx context.Context) error { return errors.New("nope") },
	})
	require.Error(t, err)

	// The entity can be toggled again once the failed attempt settled.
	assert.False(t, toggler.InFlight("42"))
	err = toggler.Run(context.Background(), Toggle{
		Key:      "42",
		Apply:    func() {},
		Rollback: func() {},
		Request:  func(ctx context.Context) error { return nil },
	})
	require.NoError(t, err)
}
