// ABOUTME: Interactive dashboard application: routes, guard enforcement, status bar
// ABOUTME: Session state flows in via subscription; navigation replaces the active route

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/botino/botino/internal/api"
	"github.com/botino/botino/internal/guard"
	"github.com/botino/botino/internal/notify"
	"github.com/botino/botino/internal/optimistic"
	"github.com/botino/botino/internal/session"
)

// Route names mirror the web dashboard's paths.
const (
	routeLogin     = session.RouteLogin
	routeDashboard = session.RouteDashboard
	routeAdmin     = "/admin"
)

// adminOnlyRoutes marks which routes require the admin role. Everything
// else guarded requires only authentication.
var adminOnlyRoutes = map[string]bool{
	routeAdmin: true,
}

// App is the top-level Bubble Tea model.
type App struct {
	store   *session.Store
	client  *api.Client
	toggler *optimistic.Toggler
	pr      *program

	route  string
	state  session.State
	notice *notify.Notice
	width  int
	height int

	login loginView
	bots  botsView
	admin adminView

	offline bool
}

// Run wires the session store, API client, and program together and blocks
// until the user quits.
func Run(client *api.Client, persister session.Persister, offline bool) error {
	pr := &program{}

	store := session.New(session.Options{
		Backend:   client,
		Persister: persister,
		Notifier:  &programNotifier{pr: pr},
		Navigator: &programNavigator{pr: pr},
		Offline:   offline,
	})
	client.SetUnauthenticatedHandler(store.SessionExpired)

	app := &App{
		store:   store,
		client:  client,
		toggler: optimistic.NewToggler(&programNotifier{pr: pr}),
		pr:      pr,
		route:   routeDashboard,
		state:   store.State(),
		login:   newLoginView(),
		bots:    newBotsView(),
		admin:   newAdminView(),
		offline: offline,
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	pr.attach(p)

	unsubscribe := store.Subscribe(func(st session.State) {
		pr.send(sessionMsg{state: st})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}

// Init starts session bootstrap off the event loop.
func (a *App) Init() tea.Cmd {
	return func() tea.Msg {
		a.store.Bootstrap(context.Background())
		return bootstrappedMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if a.route != routeLogin || msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
		case "d":
			if a.route != routeLogin {
				return a, a.navigate(routeDashboard)
			}
		case "a":
			if a.route != routeLogin {
				return a, a.navigate(routeAdmin)
			}
		case "l":
			if a.route != routeLogin {
				return a, a.logoutCmd()
			}
		}

	case sessionMsg:
		a.state = msg.state
		return a, a.enforceGuard()

	case navigateMsg:
		return a, a.navigate(msg.route)

	case noticeMsg:
		n := msg.notice
		a.notice = &n
		return a, nil

	case bootstrappedMsg:
		a.state = a.store.State()
		return a, a.enforceGuard()

	case loginDoneMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg, a.store, a.offline)
		if msg.err == nil && a.store.State().Authenticated() {
			return a, tea.Batch(cmd, a.navigate(routeDashboard))
		}
		return a, cmd

	case refreshBotsMsg:
		return a, loadBotsCmd(a.client)
	}

	return a.routeUpdate(msg)
}

// routeUpdate forwards a message to the active view.
func (a *App) routeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.route {
	case routeLogin:
		a.login, cmd = a.login.update(msg, a.store, a.offline)
	case routeDashboard:
		a.bots, cmd = a.bots.update(msg, a)
	case routeAdmin:
		a.admin, cmd = a.admin.update(msg, a)
	}
	return a, cmd
}

// navigate switches the active route after consulting the guard; a denied
// route lands on the guard's redirect target instead. Routes are replaced,
// never stacked, so there is no history to loop back through.
func (a *App) navigate(route string) tea.Cmd {
	decision := guard.Evaluate(a.state, adminOnlyRoutes[route])
	switch decision {
	case guard.Placeholder:
		a.route = route
		return nil
	case guard.Allow:
		a.route = route
		return a.enterRoute(route)
	default:
		a.route = decision.Target()
		return a.enterRoute(a.route)
	}
}

// enforceGuard re-evaluates the current route after a session change. A
// session expiry mid-view redirects immediately.
func (a *App) enforceGuard() tea.Cmd {
	if a.route == routeLogin {
		// The login route is public; an authenticated session moves on.
		if !a.state.Loading && a.state.Authenticated() {
			return a.navigate(routeDashboard)
		}
		return nil
	}
	return a.navigate(a.route)
}

// enterRoute kicks off the route's initial data load, once per visit.
func (a *App) enterRoute(route string) tea.Cmd {
	switch route {
	case routeDashboard:
		a.bots.loading = true
		return tea.Batch(a.bots.spin.Tick, loadBotsCmd(a.client))
	case routeAdmin:
		a.admin.loading = true
		return loadStatsCmd(a.client)
	}
	return nil
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		a.store.Logout(context.Background())
		return navigateMsg{route: routeLogin}
	}
}

func (a *App) View() string {
	body := a.routeView()
	status := a.statusBar()
	if status == "" {
		return body + "\n"
	}
	return body + "\n\n" + status + "\n"
}

// routeView renders the active route through the guard. The guard decides;
// the view only draws what it is told to.
func (a *App) routeView() string {
	if a.route == routeLogin {
		return a.login.view()
	}

	switch guard.Evaluate(a.state, adminOnlyRoutes[a.route]) {
	case guard.Placeholder:
		return skeleton()
	case guard.Allow:
	default:
		// Update redirects on the next session message; render nothing
		// guarded in the meantime.
		return skeleton()
	}

	switch a.route {
	case routeDashboard:
		return a.bots.view(a)
	case routeAdmin:
		return a.admin.view()
	}
	return skeleton()
}

// skeleton is the loading placeholder rendered instead of guarded content.
func skeleton() string {
	s := titleStyle.Render("Botino") + "\n"
	for range 3 {
		s += dimStyle.Render("  ░░░░░░░░░░░░░░░░░░░░░░░░░░░░") + "\n"
	}
	return s
}

func (a *App) statusBar() string {
	who := dimStyle.Render("not signed in")
	if id := a.state.Identity; id != nil {
		who = fmt.Sprintf("%s (%s)", id.DisplayName, id.Role)
	}

	if a.notice == nil {
		return dimStyle.Render("· ") + who
	}

	text := a.notice.Title
	if a.notice.Description != "" {
		text += ": " + a.notice.Description
	}
	switch a.notice.Level {
	case notify.LevelError:
		text = errorStyle.Render(text)
	case notify.LevelSuccess:
		text = successStyle.Render(text)
	default:
		text = dimStyle.Render(text)
	}
	return text + dimStyle.Render(" · ") + who
}
