package ui

import (
	"context"
	"strings"

	"github.com/Varun5711/modesta/internal/client"
	usermodel "github.com/Varun5711/modesta/internal/models/user"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type profileLoadedMsg struct {
	state client.State
}

type ProfileModel struct {
	user    *usermodel.PublicUser
	loading bool
	session *client.Session
	next    client.Route
}

func NewProfileModel(session *client.Session) *ProfileModel {
	return &ProfileModel{session: session}
}

func (m *ProfileModel) Init() tea.Cmd {
	return nil
}

func (m *ProfileModel) takeNext() client.Route {
	r := m.next
	m.next = ""
	return r
}

// refresh re-reads the current user from the server.
func (m *ProfileModel) refresh() tea.Cmd {
	m.user = m.session.User()
	m.loading = true
	s := m.session
	return func() tea.Msg {
		return profileLoadedMsg{state: s.Load(context.Background())}
	}
}

func (m *ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		if msg.state != client.Authenticated {
			m.next = client.RouteLogin
			return m, nil
		}
		m.user = m.session.User()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" && !m.loading {
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m *ProfileModel) View() string {
	var b strings.Builder

	b.WriteString(header("MY PROFILE", "Your account and style preferences.", Accent))

	if m.user == nil {
		b.WriteString(status("Loading profile...", "", ""))
		return frame(b.String(), Accent)
	}

	u := m.user
	verified := ErrorStyle.Render("not verified")
	if u.IsEmailVerified {
		verified = SuccessStyle.Render("verified")
	}

	rows := [][2]string{
		{"Name", u.FullName},
		{"Email", u.Email},
		{"Email status", verified},
		{"Role", string(u.Role)},
		{"Member since", u.CreatedAt.Format("Jan 2, 2006")},
		{"Country", u.Country},
		{"City", u.City},
		{"Hijab style", u.HijabStyle},
		{"Brands", strings.Join(u.Brands, ", ")},
		{"Favorite colors", strings.Join(u.FavoriteColors, ", ")},
		{"Style", strings.Join(u.StylePersonality, ", ")},
	}

	var lines []string
	for _, r := range rows {
		value := r[1]
		if value == "" {
			value = InfoStyle.Render("-")
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Left,
			LabelStyle.Render(r[0]),
			ValueStyle.Render(value),
		))
	}
	b.WriteString(center(BoxStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(status("Refreshing...", "", ""))
	}
	b.WriteString(center(InfoStyle.Render("r refresh  •  esc back  •  ctrl+c quit")))

	return frame(b.String(), Accent)
}
