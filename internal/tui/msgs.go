// ABOUTME: Bubble Tea messages and program-backed adapters for the dashboard
// ABOUTME: Bridges session subscriptions, notices, and navigation into the event loop

package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/botino/botino/internal/api"
	"github.com/botino/botino/internal/notify"
	"github.com/botino/botino/internal/session"
)

// sessionMsg delivers a session state snapshot from the store subscription.
type sessionMsg struct {
	state session.State
}

// navigateMsg switches the active route, replacing history.
type navigateMsg struct {
	route string
}

// noticeMsg delivers a toast-style notice for the status bar.
type noticeMsg struct {
	notice notify.Notice
}

// bootstrappedMsg signals that session bootstrap has settled.
type bootstrappedMsg struct{}

// loginDoneMsg signals a settled login or signup attempt.
type loginDoneMsg struct {
	err error
}

// botsLoadedMsg delivers the authoritative bot list.
type botsLoadedMsg struct {
	bots []api.Bot
	err  error
}

// setBotStatusMsg updates one bot's displayed status (optimistic flip or
// rollback).
type setBotStatusMsg struct {
	id     int64
	status string
}

// statsLoadedMsg delivers the admin system statistics.
type statsLoadedMsg struct {
	stats *api.SystemStats
	err   error
}

// program is a settable handle to the running Bubble Tea program. The
// session store and notifier are created before the program exists, so both
// go through this indirection.
type program struct {
	mu sync.Mutex
	p  *tea.Program
}

func (pr *program) attach(p *tea.Program) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.p = p
}

func (pr *program) send(msg tea.Msg) {
	pr.mu.Lock()
	p := pr.p
	pr.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// programNavigator implements session.Navigator by feeding navigation into
// the event loop.
type programNavigator struct {
	pr *program
}

func (n *programNavigator) Replace(route string) {
	n.pr.send(navigateMsg{route: route})
}

// programNotifier implements notify.Notifier by feeding notices into the
// status bar.
type programNotifier struct {
	pr *program
}

func (n *programNotifier) Success(title, description string) {
	n.pr.send(noticeMsg{notice: notify.Notice{Level: notify.LevelSuccess, Title: title, Description: description}})
}

func (n *programNotifier) Info(title, description string) {
	n.pr.send(noticeMsg{notice: notify.Notice{Level: notify.LevelInfo, Title: title, Description: description}})
}

func (n *programNotifier) Error(title, description string) {
	n.pr.send(noticeMsg{notice: notify.Notice{Level: notify.LevelError, Title: title, Description: description}})
}
