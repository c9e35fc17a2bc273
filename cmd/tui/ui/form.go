package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type field struct {
	label  string
	value  string
	masked bool
}

// form is a column of single-line text inputs with one focused field.
type form struct {
	fields  []field
	focused int
}

func newForm(fields ...field) form {
	return form{fields: fields}
}

func (f *form) value(i int) string {
	return f.fields[i].value
}

func (f *form) clear() {
	for i := range f.fields {
		f.fields[i].value = ""
	}
	f.focused = 0
}

// handleKey edits the focused field and reports whether enter was pressed.
func (f *form) handleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "tab", "down":
		f.focused = (f.focused + 1) % len(f.fields)
	case "shift+tab", "up":
		f.focused = (f.focused + len(f.fields) - 1) % len(f.fields)
	case "enter":
		return true
	case "backspace":
		v := []rune(f.fields[f.focused].value)
		if len(v) > 0 {
			f.fields[f.focused].value = string(v[:len(v)-1])
		}
	case "ctrl+l":
		f.clear()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			f.fields[f.focused].value += string(msg.Runes)
		}
	}
	return false
}

func (f *form) view() string {
	var b strings.Builder
	for i, fl := range f.fields {
		style := InputStyle
		if i == f.focused {
			style = FocusedInputStyle
		}
		v := fl.value
		if fl.masked {
			v = strings.Repeat("•", len([]rune(v)))
		}
		row := lipgloss.JoinHorizontal(lipgloss.Left,
			LabelStyle.Width(18).Render(fl.label+":"),
			style.Width(46).Render(v),
		)
		b.WriteString(center(row))
		b.WriteString("\n\n")
	}
	return b.String()
}

func center(s string) string {
	return lipgloss.NewStyle().Width(80).Align(lipgloss.Center).Render(s)
}

func header(title, subtitle string, color lipgloss.Color) string {
	t := lipgloss.NewStyle().Foreground(color).Bold(true).Render(title)
	sub := lipgloss.NewStyle().Foreground(Muted).Render(subtitle)
	return lipgloss.NewStyle().Width(80).Align(lipgloss.Center).MarginTop(1).Render(t) + "\n" +
		lipgloss.NewStyle().Width(80).Align(lipgloss.Center).MarginBottom(2).Render(sub) + "\n\n"
}

// status renders the loading line, the error and a notice, in that order.
func status(loading string, err string, notice string) string {
	var b strings.Builder
	if loading != "" {
		b.WriteString(center(InfoStyle.Render("… " + loading)))
		b.WriteString("\n")
	}
	if err != "" {
		b.WriteString(center(ErrorStyle.Render("✗ " + err)))
		b.WriteString("\n")
	}
	if notice != "" {
		b.WriteString(center(SuccessStyle.Render("✓ " + notice)))
		b.WriteString("\n")
	}
	return b.String()
}

func frame(content string, color lipgloss.Color) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 4).
		Width(76).
		Render(content)
}
