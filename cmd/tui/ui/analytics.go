package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Varun5711/modesta/internal/client"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var windows = []int{1, 7, 30, 90}

type activityLoadedMsg struct {
	counts   []client.EventCount
	failures uint64
}

type activityErrorMsg struct {
	err error
}

// AnalyticsModel shows auth event counts for admins.
type AnalyticsModel struct {
	counts   []client.EventCount
	failures uint64
	window   int
	loading  bool
	err      string
	api      *client.API
	session  *client.Session
}

func NewAnalyticsModel(api *client.API, session *client.Session) *AnalyticsModel {
	return &AnalyticsModel{api: api, session: session, window: 1}
}

func (m *AnalyticsModel) Init() tea.Cmd {
	return nil
}

func fetchActivityCmd(api *client.API, token string, days int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		counts, err := api.EventCounts(ctx, token, days)
		if err != nil {
			return activityErrorMsg{err: err}
		}
		failures, err := api.EmailFailures(ctx, token, days)
		if err != nil {
			return activityErrorMsg{err: err}
		}
		return activityLoadedMsg{counts: counts, failures: failures.Total}
	}
}

func (m *AnalyticsModel) load() tea.Cmd {
	m.loading = true
	m.err = ""
	return fetchActivityCmd(m.api, m.session.Token(), windows[m.window])
}

func (m *AnalyticsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activityLoadedMsg:
		m.loading = false
		m.counts = msg.counts
		m.failures = msg.failures
		return m, nil

	case activityErrorMsg:
		m.loading = false
		m.err = client.UserMessage(msg.err)
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "left", "h":
			if m.window > 0 {
				m.window--
				return m, m.load()
			}
		case "right", "l":
			if m.window < len(windows)-1 {
				m.window++
				return m, m.load()
			}
		case "r":
			return m, m.load()
		}
	}
	return m, nil
}

func (m *AnalyticsModel) View() string {
	var b strings.Builder

	b.WriteString(header("AUTH ACTIVITY", fmt.Sprintf("Last %d day(s)", windows[m.window]), Success))

	switch {
	case m.loading:
		b.WriteString(status("Loading auth events...", "", ""))
	case m.err != "":
		b.WriteString(status("", m.err, ""))
	case len(m.counts) == 0:
		b.WriteString(center(InfoStyle.Render("No auth events recorded in this window.")))
		b.WriteString("\n")
	default:
		headerStyle := lipgloss.NewStyle().Foreground(Accent).Bold(true).Padding(0, 1)
		rowStyle := lipgloss.NewStyle().Foreground(Text).Padding(0, 1)

		rows := []string{
			lipgloss.JoinHorizontal(lipgloss.Left,
				headerStyle.Width(34).Render("Event"),
				headerStyle.Width(12).Render("Count"),
			),
			lipgloss.NewStyle().Foreground(Muted).Render(strings.Repeat("─", 46)),
		}
		for _, c := range m.counts {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
				rowStyle.Width(34).Render(c.EventType),
				rowStyle.Width(12).Render(fmt.Sprintf("%d", c.Count)),
			))
		}
		b.WriteString(center(lipgloss.JoinVertical(lipgloss.Left, rows...)))
		b.WriteString("\n\n")

		failures := SuccessStyle.Render("0")
		if m.failures > 0 {
			failures = ErrorStyle.Render(fmt.Sprintf("%d", m.failures))
		}
		b.WriteString(center(StatsStyle.Render("Verification emails not delivered:") + " " + failures))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(center(InfoStyle.Render("←/→ window  •  r refresh  •  esc back  •  ctrl+c quit")))

	return frame(b.String(), Success)
}
