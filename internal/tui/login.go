// ABOUTME: Login view: email and password inputs submitting to the session store
// ABOUTME: In offline mode, submission installs a demo identity instead

package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/botino/botino/internal/session"
)

// loginView is the form rendered on the login route.
type loginView struct {
	email    textinput.Model
	password textinput.Model
	focused  int
	busy     bool
}

func newLoginView() loginView {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword

	return loginView{email: email, password: password}
}

// update handles key input for the form. Submission returns a command that
// runs the login against the session store off the event loop.
func (v loginView) update(msg tea.Msg, store *session.Store, offline bool) (loginView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			v.focused = (v.focused + 1) % 2
			if v.focused == 0 {
				v.email.Focus()
				v.password.Blur()
			} else {
				v.email.Blur()
				v.password.Focus()
			}
			return v, nil
		case "enter":
			if v.busy {
				return v, nil
			}
			email := v.email.Value()
			password := v.password.Value()
			if email == "" {
				return v, nil
			}
			v.busy = true
			return v, loginCmd(store, offline, email, password)
		}
	case loginDoneMsg:
		v.busy = false
		return v, nil
	}

	var cmd tea.Cmd
	if v.focused == 0 {
		v.email, cmd = v.email.Update(msg)
	} else {
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

// loginCmd performs the login attempt. Offline mode constructs the demo
// identity here, in the form, the one caller allowed to do so.
func loginCmd(store *session.Store, offline bool, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if offline {
			return loginDoneMsg{err: store.UseDemoIdentity(ctx, email)}
		}
		return loginDoneMsg{err: store.Login(ctx, email, password)}
	}
}

func (v loginView) view() string {
	s := titleStyle.Render("Sign in to Botino") + "\n\n"
	s += v.email.View() + "\n"
	s += v.password.View() + "\n\n"
	if v.busy {
		s += dimStyle.Render("Signing in...") + "\n"
	}
	s += helpStyle.Render("enter submit · tab switch field · ctrl+c quit")
	return s
}
