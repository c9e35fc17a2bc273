package main

import (
	"fmt"
	"os"

	"github.com/Varun5711/modesta/cmd/tui/ui"
	"github.com/Varun5711/modesta/internal/client"
	"github.com/Varun5711/modesta/internal/config"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg := config.LoadClient()

	api := client.NewAPI(cfg.APIURL, cfg.Timeout)
	session := client.NewSession(api, client.NewFileStore(cfg.SessionFile))

	p := tea.NewProgram(
		ui.NewModel(api, session),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
