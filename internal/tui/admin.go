// ABOUTME: Admin view: platform-wide statistics behind the admin-only guard
// ABOUTME: The guard redirects non-admins before this view ever renders

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/botino/botino/internal/api"
)

// adminView shows system statistics to administrators.
type adminView struct {
	stats   *api.SystemStats
	loading bool
	loadErr error
}

func newAdminView() adminView {
	return adminView{loading: true}
}

func loadStatsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		stats, err := client.GetSystemStats(context.Background())
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (v adminView) update(msg tea.Msg, app *App) (adminView, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		v.loading = false
		v.loadErr = msg.err
		v.stats = msg.stats
		return v, nil
	case tea.KeyMsg:
		if msg.String() == "r" {
			v.loading = true
			return v, loadStatsCmd(app.client)
		}
	}
	return v, nil
}

func (v adminView) view() string {
	s := titleStyle.Render("Admin · System Stats") + "\n"

	if v.loading {
		return s + dimStyle.Render("Loading stats...") + "\n"
	}
	if v.loadErr != nil {
		return s + errorStyle.Render("Failed to fetch system stats.") + "\n" +
			helpStyle.Render("r retry · d dashboard · ctrl+c quit")
	}

	s += fmt.Sprintf("  Users:           %d\n", v.stats.TotalUsers)
	s += fmt.Sprintf("  Bots:            %d\n", v.stats.TotalBots)
	s += fmt.Sprintf("  Active bots:     %d\n", v.stats.ActiveBots)
	s += fmt.Sprintf("  Messages today:  %d\n", v.stats.MessagesToday)
	s += helpStyle.Render("r refresh · d dashboard · l logout · ctrl+c quit")
	return s
}
