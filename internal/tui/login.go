package tui

import (
	"context"
	"strings"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loggedInMsg struct {
	session model.Session
	err     error
}

// loginModel is shown at startup without a token and whenever a request
// comes back unauthorized.
type loginModel struct {
	email      textinput.Model
	password   textinput.Model
	focus      int
	reason     string
	err        string
	submitting bool
}

func newLoginModel(email, reason string) loginModel {
	e := textinput.New()
	e.Prompt = ""
	e.Placeholder = "you@example.com"
	e.CharLimit = 254
	e.SetValue(email)

	p := textinput.New()
	p.Prompt = ""
	p.Placeholder = "password"
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	p.CharLimit = 256

	m := loginModel{email: e, password: p, reason: reason}
	if strings.TrimSpace(email) != "" {
		m.setFocus(1)
	} else {
		m.setFocus(0)
	}
	return m
}

func (m *loginModel) setFocus(i int) tea.Cmd {
	m.focus = i % 2
	m.email.Blur()
	m.password.Blur()
	if m.focus == 0 {
		return m.email.Focus()
	}
	return m.password.Focus()
}

func (m loginModel) input() model.LoginInput {
	return model.LoginInput{Email: strings.TrimSpace(m.email.Value()), Password: m.password.Value()}
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func loginCmd(ctx context.Context, c *api.Client, in model.LoginInput) tea.Cmd {
	return func() tea.Msg {
		sess, err := c.Login(ctx, in)
		return loggedInMsg{session: sess, err: err}
	}
}

func (m loginModel) view(width int, server string) string {
	bodyW := modalBodyWidth(width)
	var b strings.Builder
	if m.reason != "" {
		b.WriteString(styleMuted().Width(bodyW).Render(m.reason))
		b.WriteString("\n\n")
	}
	b.WriteString(renderLabel("Email", true, m.focus == 0))
	b.WriteString("\n")
	b.WriteString(renderInputLine(bodyW, m.email.View()))
	b.WriteString("\n")
	b.WriteString(renderLabel("Password", true, m.focus == 1))
	b.WriteString("\n")
	b.WriteString(renderInputLine(bodyW, m.password.View()))
	b.WriteString("\n\n")
	switch {
	case m.submitting:
		b.WriteString(styleMuted().Render("signing in…"))
	case m.err != "":
		b.WriteString(styleError().Width(bodyW).Render(m.err))
	default:
		b.WriteString(styleMuted().Width(bodyW).Render("tab: field   enter: sign in   ctrl+c: quit"))
	}

	title := "Sign in"
	if server != "" {
		title += " to " + server
	}
	return renderModalBox(width, title, b.String())
}
