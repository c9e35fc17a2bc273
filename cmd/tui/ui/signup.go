package ui

import (
	"context"
	"strings"

	"github.com/Varun5711/modesta/internal/client"
	tea "github.com/charmbracelet/bubbletea"
)

type signupDoneMsg struct {
	next  client.Route
	email string
}

type signupErrorMsg struct {
	err error
}

const (
	signupName = iota
	signupEmail
	signupPassword
	signupConfirm
	signupCountry
	signupCity
)

type SignupModel struct {
	form    form
	loading bool
	err     string
	session *client.Session
	next    client.Route
	email   string
}

func NewSignupModel(session *client.Session) *SignupModel {
	return &SignupModel{
		session: session,
		form: newForm(
			field{label: "Full name"},
			field{label: "Email"},
			field{label: "Password", masked: true},
			field{label: "Confirm password", masked: true},
			field{label: "Country"},
			field{label: "City"},
		),
	}
}

func (m *SignupModel) Init() tea.Cmd {
	return nil
}

func signupCmd(s *client.Session, req client.SignupRequest) tea.Cmd {
	return func() tea.Msg {
		next, err := s.Signup(context.Background(), req)
		if err != nil {
			return signupErrorMsg{err: err}
		}
		return signupDoneMsg{next: next, email: req.Email}
	}
}

func (m *SignupModel) takeNext() client.Route {
	r := m.next
	m.next = ""
	return r
}

func (m *SignupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signupDoneMsg:
		m.loading = false
		m.err = ""
		m.email = msg.email
		m.form.clear()
		m.next = msg.next
		return m, nil

	case signupErrorMsg:
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
			return m, signupCmd(m.session, client.SignupRequest{
				FullName:        strings.TrimSpace(m.form.value(signupName)),
				Email:           strings.TrimSpace(m.form.value(signupEmail)),
				Password:        m.form.value(signupPassword),
				ConfirmPassword: m.form.value(signupConfirm),
				Country:         strings.TrimSpace(m.form.value(signupCountry)),
				City:            strings.TrimSpace(m.form.value(signupCity)),
			})
		}
	}
	return m, nil
}

func (m *SignupModel) View() string {
	var b strings.Builder

	b.WriteString(header("CREATE ACCOUNT", "Join Modesta to save your style profile.", Success))
	b.WriteString(m.form.view())
	b.WriteString(center(InfoStyle.Render("(password: 8+ characters, a number and an uppercase letter)")))
	b.WriteString("\n\n")

	loading := ""
	if m.loading {
		loading = "Creating account..."
	}
	b.WriteString(status(loading, m.err, ""))

	b.WriteString("\n")
	b.WriteString(center(InfoStyle.Render("tab switch  •  enter sign up  •  ctrl+l clear  •  ctrl+s login  •  ctrl+c quit")))

	return frame(b.String(), Success)
}
