package ui

import (
	"context"
	"strings"

	"github.com/Varun5711/modesta/internal/client"
	"github.com/Varun5711/modesta/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

type passwordChangedMsg struct{}

type changePasswordErrorMsg struct {
	err error
}

type ChangePasswordModel struct {
	form    form
	loading bool
	err     string
	notice  string
	session *client.Session
}

func NewChangePasswordModel(session *client.Session) *ChangePasswordModel {
	return &ChangePasswordModel{
		session: session,
		form: newForm(
			field{label: "Current password", masked: true},
			field{label: "New password", masked: true},
			field{label: "Confirm password", masked: true},
		),
	}
}

func (m *ChangePasswordModel) Init() tea.Cmd {
	return nil
}

func (m *ChangePasswordModel) reset() {
	m.form.clear()
	m.loading = false
	m.err = ""
	m.notice = ""
}

func changePasswordCmd(s *client.Session, current, password, confirm string) tea.Cmd {
	return func() tea.Msg {
		if err := s.ChangePassword(context.Background(), current, password, confirm); err != nil {
			return changePasswordErrorMsg{err: err}
		}
		return passwordChangedMsg{}
	}
}

func (m *ChangePasswordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case passwordChangedMsg:
		m.form.clear()
		m.loading = false
		m.notice = service.MsgPasswordUpdated
		return m, nil

	case changePasswordErrorMsg:
		m.loading = false
		m.err = client.UserMessage(msg.err)
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if m.form.handleKey(msg) {
			m.loading = true
			m.err, m.notice = "", ""
			return m, changePasswordCmd(m.session, m.form.value(0), m.form.value(1), m.form.value(2))
		}
	}
	return m, nil
}

func (m *ChangePasswordModel) View() string {
	var b strings.Builder

	b.WriteString(header("CHANGE PASSWORD", "Other signed-in sessions will be logged out.", Warning))
	b.WriteString(m.form.view())

	loading := ""
	if m.loading {
		loading = "Updating password..."
	}
	b.WriteString(status(loading, m.err, m.notice))

	b.WriteString("\n")
	b.WriteString(center(InfoStyle.Render("tab switch  •  enter save  •  esc back  •  ctrl+c quit")))

	return frame(b.String(), Warning)
}
