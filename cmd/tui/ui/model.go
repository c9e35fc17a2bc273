package ui

import (
	"context"

	"github.com/Varun5711/modesta/internal/client"
	usermodel "github.com/Varun5711/modesta/internal/models/user"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type sessionLoadedMsg struct {
	state client.State
}

// protected routes go through the session guard.
var protected = map[client.Route]bool{
	client.RouteHome:           true,
	client.RouteProfile:        true,
	client.RouteChangePassword: true,
	client.RouteActivity:       true,
}

type Model struct {
	route          client.Route
	session        *client.Session
	login          *LoginModel
	signup         *SignupModel
	checkEmail     *CheckEmailModel
	setPassword    *SetPasswordModel
	menu           *MenuModel
	profile        *ProfileModel
	changePassword *ChangePasswordModel
	analytics      *AnalyticsModel
	width          int
	height         int
}

func NewModel(api *client.API, session *client.Session) Model {
	return Model{
		route:          client.RouteHome,
		session:        session,
		login:          NewLoginModel(session),
		signup:         NewSignupModel(session),
		checkEmail:     NewCheckEmailModel(session),
		setPassword:    NewSetPasswordModel(session),
		menu:           NewMenuModel(),
		profile:        NewProfileModel(session),
		changePassword: NewChangePasswordModel(session),
		analytics:      NewAnalyticsModel(api, session),
	}
}

func loadSessionCmd(s *client.Session) tea.Cmd {
	return func() tea.Msg {
		return sessionLoadedMsg{state: s.Load(context.Background())}
	}
}

func (m Model) Init() tea.Cmd {
	return loadSessionCmd(m.session)
}

// navigate switches screens. Protected screens render only for an
// authenticated session; otherwise the guard sends the user to login and
// remembers where they were going.
func (m *Model) navigate(r client.Route) tea.Cmd {
	if protected[r] {
		switch m.session.Guard(r) {
		case client.ShowLoading:
			m.route = r
			return nil
		case client.RedirectToLogin:
			if email, ok := m.session.PendingSetPassword(); ok {
				m.setPassword.reset(email)
				m.route = client.RouteSetPassword
				return nil
			}
			m.login.reset("")
			m.route = client.RouteLogin
			return nil
		}
	}

	m.route = r
	switch r {
	case client.RouteHome:
		user := m.session.User()
		m.menu.setAdmin(user != nil && user.Role == usermodel.RoleAdmin)
	case client.RouteProfile:
		return m.profile.refresh()
	case client.RouteChangePassword:
		m.changePassword.reset()
	case client.RouteActivity:
		return m.analytics.load()
	case client.RouteSetPassword:
		email, _ := m.session.PendingSetPassword()
		m.setPassword.reset(email)
	case client.RouteCheckEmail:
		m.checkEmail.reset(m.signup.email)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionLoadedMsg:
		return m, m.navigate(m.route)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.route == client.RouteHome {
				return m, tea.Quit
			}

		case "esc":
			switch m.route {
			case client.RouteProfile, client.RouteChangePassword, client.RouteActivity:
				return m, m.navigate(client.RouteHome)
			case client.RouteSignup, client.RouteCheckEmail, client.RouteSetPassword:
				m.login.reset("")
				m.route = client.RouteLogin
				return m, nil
			}

		case "ctrl+s":
			if m.route == client.RouteLogin {
				m.route = client.RouteSignup
				return m, nil
			} else if m.route == client.RouteSignup {
				m.route = client.RouteLogin
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.route {
	case client.RouteLogin:
		_, cmd = m.login.Update(msg)
		if next := m.login.takeNext(); next != "" {
			return m, tea.Batch(cmd, m.navigate(next))
		}

	case client.RouteSignup:
		_, cmd = m.signup.Update(msg)
		if next := m.signup.takeNext(); next != "" {
			return m, tea.Batch(cmd, m.navigate(next))
		}

	case client.RouteCheckEmail:
		_, cmd = m.checkEmail.Update(msg)
		if next := m.checkEmail.takeNext(); next != "" {
			if next == client.RouteLogin {
				m.login.reset("Email verified. You can now log in.")
				m.route = client.RouteLogin
				return m, cmd
			}
			return m, tea.Batch(cmd, m.navigate(next))
		}

	case client.RouteSetPassword:
		_, cmd = m.setPassword.Update(msg)
		if next, notice := m.setPassword.takeNext(); next != "" {
			if next == client.RouteLogin {
				m.login.reset(notice)
				m.route = client.RouteLogin
				return m, cmd
			}
			return m, tea.Batch(cmd, m.navigate(next))
		}

	case client.RouteHome:
		_, cmd = m.menu.Update(msg)
		switch selected := m.menu.takeSelected(); selected {
		case "":
		case routeLogout:
			_ = m.session.Logout()
			m.login.reset("You have been logged out.")
			m.route = client.RouteLogin
		default:
			return m, tea.Batch(cmd, m.navigate(selected))
		}

	case client.RouteProfile:
		_, cmd = m.profile.Update(msg)
		if next := m.profile.takeNext(); next != "" {
			return m, tea.Batch(cmd, m.navigate(next))
		}

	case client.RouteChangePassword:
		_, cmd = m.changePassword.Update(msg)

	case client.RouteActivity:
		_, cmd = m.analytics.Update(msg)
	}

	return m, cmd
}

func (m Model) View() string {
	if m.session.State() == client.Unknown {
		return frame(header("MODESTA", "Restoring your session...", Primary), Primary)
	}

	var statusBar string
	if user := m.session.User(); user != nil && protected[m.route] {
		userInfo := lipgloss.NewStyle().
			Foreground(Success).
			Render(user.FullName)

		emailInfo := lipgloss.NewStyle().
			Foreground(Muted).
			Render(" (" + user.Email + ")")

		statusBar = lipgloss.NewStyle().
			Width(80).
			Align(lipgloss.Left).
			Background(BgDark).
			Padding(0, 2).
			Render(userInfo + emailInfo)
	}

	var content string
	switch m.route {
	case client.RouteLogin:
		content = m.login.View()
	case client.RouteSignup:
		content = m.signup.View()
	case client.RouteCheckEmail:
		content = m.checkEmail.View()
	case client.RouteSetPassword:
		content = m.setPassword.View()
	case client.RouteHome:
		content = m.menu.View()
	case client.RouteProfile:
		content = m.profile.View()
	case client.RouteChangePassword:
		content = m.changePassword.View()
	case client.RouteActivity:
		content = m.analytics.View()
	}

	if statusBar != "" {
		return lipgloss.JoinVertical(lipgloss.Left, statusBar, "\n", content)
	}
	return content
}
