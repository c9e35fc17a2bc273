package ui

import (
	"strings"

	"github.com/Varun5711/modesta/internal/client"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// routeLogout is a menu-only pseudo route.
const routeLogout client.Route = "logout"

type menuItem struct {
	label string
	route client.Route
}

type MenuModel struct {
	cursor   int
	selected client.Route
	items    []menuItem
}

func (m *MenuModel) Init() tea.Cmd {
	return nil
}

func NewMenuModel() *MenuModel {
	m := &MenuModel{}
	m.setAdmin(false)
	return m
}

func (m *MenuModel) setAdmin(admin bool) {
	m.items = []menuItem{
		{"My Profile", client.RouteProfile},
		{"Change Password", client.RouteChangePassword},
	}
	if admin {
		m.items = append(m.items, menuItem{"Auth Activity", client.RouteActivity})
	}
	m.items = append(m.items, menuItem{"Log Out", routeLogout})
	if m.cursor >= len(m.items) {
		m.cursor = 0
	}
}

func (m *MenuModel) takeSelected() client.Route {
	r := m.selected
	m.selected = ""
	return r
}

func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.items[m.cursor].route
		}
	}
	return m, nil
}

func (m *MenuModel) View() string {
	var b strings.Builder

	title := TitleStyle.Render("MODESTA") + " " + SubtitleStyle.Render("Modest fashion, your way")
	b.WriteString(lipgloss.NewStyle().
		Width(80).
		Align(lipgloss.Center).
		MarginTop(2).
		MarginBottom(1).
		Render(title))
	b.WriteString("\n\n")

	var rows []string
	for i, item := range m.items {
		cursor := "  "
		style := ItemStyle

		if i == m.cursor {
			cursor = "> "
			style = SelectedItemStyle
		}

		rows = append(rows, style.Render(cursor+item.label))
	}

	menu := BoxStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString(center(menu))
	b.WriteString("\n\n")
	b.WriteString(center(InfoStyle.Render("↑/↓ navigate  •  enter select  •  q quit")))

	return lipgloss.NewStyle().
		Width(80).
		Height(20).
		Align(lipgloss.Center, lipgloss.Center).
		Render(b.String())
}
