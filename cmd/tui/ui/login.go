package ui

import (
	"context"
	"strings"

	"github.com/Varun5711/modesta/internal/client"
	tea "github.com/charmbracelet/bubbletea"
)

type loginDoneMsg struct {
	result *client.LoginResult
}

type loginErrorMsg struct {
	err error
}

type LoginModel struct {
	form    form
	loading bool
	err     string
	notice  string
	session *client.Session
	next    client.Route
}

func NewLoginModel(session *client.Session) *LoginModel {
	return &LoginModel{
		session: session,
		form: newForm(
			field{label: "Email"},
			field{label: "Password", masked: true},
		),
	}
}

func (m *LoginModel) Init() tea.Cmd {
	return nil
}

func loginCmd(s *client.Session, email, password string) tea.Cmd {
	return func() tea.Msg {
		res, err := s.Login(context.Background(), email, password)
		if err != nil {
			return loginErrorMsg{err: err}
		}
		return loginDoneMsg{result: res}
	}
}

// reset clears the form and shows notice above it.
func (m *LoginModel) reset(notice string) {
	m.form.clear()
	m.loading = false
	m.err = ""
	m.notice = notice
}

func (m *LoginModel) takeNext() client.Route {
	r := m.next
	m.next = ""
	return r
}

func (m *LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.loading = false
		m.err = ""
		m.form.fields[1].value = ""
		m.next = msg.result.Next
		return m, nil

	case loginErrorMsg:
		m.loading = false
		m.err = client.UserMessage(msg.err)
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if m.form.handleKey(msg) {
			m.loading = true
			m.err = ""
			m.notice = ""
			// The password may be empty: accounts without one are handed off
			// to the set-password screen.
			return m, loginCmd(m.session, strings.TrimSpace(m.form.value(0)), m.form.value(1))
		}
	}
	return m, nil
}

func (m *LoginModel) View() string {
	var b strings.Builder

	b.WriteString(header("MODESTA", "Welcome back! Sign in to continue.", Primary))
	b.WriteString(m.form.view())

	loading := ""
	if m.loading {
		loading = "Signing in..."
	}
	b.WriteString(status(loading, m.err, m.notice))

	b.WriteString("\n")
	b.WriteString(center(InfoStyle.Render("tab switch  •  enter login  •  ctrl+l clear  •  ctrl+s sign up  •  ctrl+c quit")))

	return frame(b.String(), Primary)
}
