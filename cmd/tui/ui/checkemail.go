package ui

import (
	"context"
	"strings"

	"github.com/Varun5711/modesta/internal/client"
	tea "github.com/charmbracelet/bubbletea"
)

type verifyDoneMsg struct {
	next client.Route
}

type resendDoneMsg struct {
	message string
}

type checkEmailErrorMsg struct {
	err error
}

// CheckEmailModel is shown after signup. The user pastes the token from the
// verification email, or asks for a new one.
type CheckEmailModel struct {
	form    form
	loading string
	err     string
	notice  string
	session *client.Session
	next    client.Route
}

func NewCheckEmailModel(session *client.Session) *CheckEmailModel {
	return &CheckEmailModel{
		session: session,
		form: newForm(
			field{label: "Token"},
			field{label: "Email"},
		),
	}
}

func (m *CheckEmailModel) Init() tea.Cmd {
	return nil
}

func (m *CheckEmailModel) reset(email string) {
	m.form.clear()
	m.form.fields[1].value = email
	m.loading = ""
	m.err = ""
	m.notice = ""
}

func (m *CheckEmailModel) takeNext() client.Route {
	r := m.next
	m.next = ""
	return r
}

func verifyCmd(s *client.Session, token string) tea.Cmd {
	return func() tea.Msg {
		next, err := s.VerifyEmail(context.Background(), token)
		if err != nil {
			return checkEmailErrorMsg{err: err}
		}
		return verifyDoneMsg{next: next}
	}
}

func resendCmd(s *client.Session, email string) tea.Cmd {
	return func() tea.Msg {
		message, err := s.ResendVerification(context.Background(), email)
		if err != nil {
			return checkEmailErrorMsg{err: err}
		}
		return resendDoneMsg{message: message}
	}
}

func (m *CheckEmailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case verifyDoneMsg:
		m.loading = ""
		m.next = msg.next
		return m, nil

	case resendDoneMsg:
		m.loading = ""
		m.notice = msg.message
		return m, nil

	case checkEmailErrorMsg:
		m.loading = ""
		m.err = client.UserMessage(msg.err)
		return m, nil

	case tea.KeyMsg:
		if m.loading != "" {
			return m, nil
		}
		if msg.String() == "ctrl+r" {
			m.loading = "Sending a new link..."
			m.err, m.notice = "", ""
			return m, resendCmd(m.session, strings.TrimSpace(m.form.value(1)))
		}
		if m.form.handleKey(msg) {
			m.loading = "Verifying..."
			m.err, m.notice = "", ""
			return m, verifyCmd(m.session, strings.TrimSpace(m.form.value(0)))
		}
	}
	return m, nil
}

func (m *CheckEmailModel) View() string {
	var b strings.Builder

	subtitle := "We sent a verification link to your inbox. It expires in 24 hours."
	if email := m.form.value(1); email != "" {
		subtitle = "We sent a verification link to " + email + ". It expires in 24 hours."
	}
	b.WriteString(header("CHECK YOUR EMAIL", subtitle, Secondary))
	b.WriteString(m.form.view())
	b.WriteString(status(m.loading, m.err, m.notice))

	b.WriteString("\n")
	b.WriteString(center(InfoStyle.Render("enter verify  •  ctrl+r resend  •  esc login  •  ctrl+c quit")))

	return frame(b.String(), Secondary)
}
