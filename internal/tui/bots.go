// ABOUTME: Bot list view with optimistic status toggles
// ABOUTME: Space flips a bot immediately; failures roll the row back

package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/botino/botino/internal/api"
	"github.com/botino/botino/internal/optimistic"
)

// botsView is the dashboard bot list.
type botsView struct {
	bots    []api.Bot
	cursor  int
	loading bool
	loadErr error
	spin    spinner.Model
}

func newBotsView() botsView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return botsView{loading: true, spin: sp}
}

// loadBotsCmd fetches the authoritative bot list.
func loadBotsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		bots, err := client.ListBots(context.Background())
		return botsLoadedMsg{bots: bots, err: err}
	}
}

func (v botsView) update(msg tea.Msg, app *App) (botsView, tea.Cmd) {
	switch msg := msg.(type) {
	case botsLoadedMsg:
		v.loading = false
		v.loadErr = msg.err
		if msg.err == nil {
			v.bots = msg.bots
			if v.cursor >= len(v.bots) {
				v.cursor = max(0, len(v.bots)-1)
			}
		}
		return v, nil

	case setBotStatusMsg:
		for i := range v.bots {
			if v.bots[i].ID == msg.id {
				v.bots[i].Status = msg.status
			}
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.bots)-1 {
				v.cursor++
			}
		case "r":
			v.loading = true
			return v, loadBotsCmd(app.client)
		case " ", "enter":
			if v.cursor < len(v.bots) {
				return v, v.toggleCmd(app, v.bots[v.cursor])
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd
	}

	return v, nil
}

// toggleCmd runs one optimistic toggle through the shared Toggler. The flip
// and any rollback are delivered back into the event loop as messages, so
// the row updates before the backend answers and reverts if it refuses.
func (v botsView) toggleCmd(app *App, bot api.Bot) tea.Cmd {
	key := strconv.FormatInt(bot.ID, 10)
	if app.toggler.InFlight(key) {
		// Control is disabled while a toggle for this bot is pending.
		return nil
	}

	previous := bot.Status
	next := api.BotStatusInactive
	pending := "Stopping bot..."
	if previous == api.BotStatusInactive {
		next = api.BotStatusActive
		pending = "Activating bot..."
	}

	id := bot.ID
	return tea.Batch(v.spin.Tick, func() tea.Msg {
		// The flip, any rollback, the refresh, and all notices reach the
		// event loop through pr.send; a settled toggle has nothing left
		// to report.
		_ = app.toggler.Run(context.Background(), optimistic.Toggle{
			Key:          key,
			Apply:        func() { app.pr.send(setBotStatusMsg{id: id, status: next}) },
			Rollback:     func() { app.pr.send(setBotStatusMsg{id: id, status: previous}) },
			Request:      func(ctx context.Context) error { return app.client.ToggleBot(ctx, id) },
			Refresh:      func() { app.pr.send(botsRefreshRequest()) },
			PendingTitle: pending,
			SuccessText:  "Bot is now " + next,
		})
		return nil
	})
}

// botsRefreshRequest asks the app to reload the authoritative list.
type refreshBotsMsg struct{}

func botsRefreshRequest() tea.Msg {
	return refreshBotsMsg{}
}

func (v botsView) view(app *App) string {
	s := titleStyle.Render("My Bots") + "\n"

	if v.loading {
		return s + v.spin.View() + " Loading bots...\n"
	}
	if v.loadErr != nil {
		return s + errorStyle.Render("Failed to fetch bots.") + "\n" +
			helpStyle.Render("r retry · ctrl+c quit")
	}
	if len(v.bots) == 0 {
		return s + dimStyle.Render("No bots yet. Create one with: botino bots create") + "\n"
	}

	s += headerStyle.Render(fmt.Sprintf("  %-24s %-10s %-10s", "NAME", "PLATFORM", "STATUS")) + "\n"
	for i, b := range v.bots {
		status := inactiveStyle.Render(b.Status)
		if b.Status == api.BotStatusActive {
			status = activeStyle.Render(b.Status)
		}
		if app.toggler.InFlight(strconv.FormatInt(b.ID, 10)) {
			status = v.spin.View() + " " + status
		}

		line := fmt.Sprintf("  %-24s %-10s %s", truncate(b.Name, 24), b.Platform, status)
		if i == v.cursor {
			line = selectedStyle.Render(">") + line[1:]
		}
		s += line + "\n"
	}

	s += helpStyle.Render("space toggle · r refresh · a admin · l logout · ctrl+c quit")
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
