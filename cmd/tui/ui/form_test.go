package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeString(f *form, s string) {
	for _, r := range s {
		f.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestFormEditing(t *testing.T) {
	f := newForm(field{label: "Email"}, field{label: "Password", masked: true})

	typeString(&f, "amina@example.com")
	f.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	typeString(&f, "Pässword1")
	f.handleKey(tea.KeyMsg{Type: tea.KeyBackspace})

	if got := f.value(0); got != "amina@example.com" {
		t.Errorf("email = %q", got)
	}
	if got := f.value(1); got != "Pässword" {
		t.Errorf("password = %q", got)
	}

	if !f.handleKey(tea.KeyMsg{Type: tea.KeyEnter}) {
		t.Error("enter should submit")
	}

	f.handleKey(tea.KeyMsg{Type: tea.KeyShiftTab})
	if f.focused != 0 {
		t.Errorf("focused = %d after shift+tab", f.focused)
	}

	f.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	if f.value(0) != "" || f.value(1) != "" {
		t.Error("ctrl+l should clear every field")
	}
}

func TestMenuAdminItems(t *testing.T) {
	m := NewMenuModel()
	if len(m.items) != 3 {
		t.Fatalf("user menu has %d items", len(m.items))
	}

	m.setAdmin(true)
	found := false
	for _, it := range m.items {
		if it.label == "Auth Activity" {
			found = true
		}
	}
	if !found {
		t.Error("admin menu should list auth activity")
	}
}
