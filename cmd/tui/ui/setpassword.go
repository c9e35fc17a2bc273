package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/Varun5711/modesta/internal/client"
	tea "github.com/charmbracelet/bubbletea"
)

type setPasswordDoneMsg struct {
	next client.Route
}

type setPasswordErrorMsg struct {
	next client.Route
	err  error
}

// SetPasswordModel completes the first-password handoff that login starts
// for accounts created without one.
type SetPasswordModel struct {
	form    form
	email   string
	loading bool
	err     string
	session *client.Session
	next    client.Route
	notice  string
}

func NewSetPasswordModel(session *client.Session) *SetPasswordModel {
	return &SetPasswordModel{
		session: session,
		form: newForm(
			field{label: "New password", masked: true},
			field{label: "Confirm password", masked: true},
		),
	}
}

func (m *SetPasswordModel) Init() tea.Cmd {
	return nil
}

func (m *SetPasswordModel) reset(email string) {
	m.form.clear()
	m.email = email
	m.loading = false
	m.err = ""
}

// takeNext also returns the message to carry to the next screen.
func (m *SetPasswordModel) takeNext() (client.Route, string) {
	r, n := m.next, m.notice
	m.next, m.notice = "", ""
	return r, n
}

func setPasswordCmd(s *client.Session, password, confirm string) tea.Cmd {
	return func() tea.Msg {
		next, err := s.CompleteSetPassword(context.Background(), password, confirm)
		if err != nil {
			return setPasswordErrorMsg{next: next, err: err}
		}
		return setPasswordDoneMsg{next: next}
	}
}

func (m *SetPasswordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case setPasswordDoneMsg:
		m.loading = false
		m.form.clear()
		m.next = msg.next
		return m, nil

	case setPasswordErrorMsg:
		m.loading = false
		m.err = client.UserMessage(msg.err)
		var inputErr *client.InputError
		if msg.next == client.RouteLogin && errors.As(msg.err, &inputErr) {
			m.next, m.notice = client.RouteLogin, m.err
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if m.form.handleKey(msg) {
			m.loading = true
			m.err = ""
			return m, setPasswordCmd(m.session, m.form.value(0), m.form.value(1))
		}
	}
	return m, nil
}

func (m *SetPasswordModel) View() string {
	var b strings.Builder

	subtitle := "Your account does not have a password yet."
	if m.email != "" {
		subtitle = "Choose a password for " + m.email + "."
	}
	b.WriteString(header("SET PASSWORD", subtitle, Warning))
	b.WriteString(m.form.view())

	loading := ""
	if m.loading {
		loading = "Saving password..."
	}
	b.WriteString(status(loading, m.err, ""))

	b.WriteString("\n")
	b.WriteString(center(InfoStyle.Render("tab switch  •  enter save  •  esc login  •  ctrl+c quit")))

	return frame(b.String(), Warning)
}
