package enrichment

import (
	"strings"

	"github.com/mssola/user_agent"
)

type UAInfo struct {
	Browser    string
	OS         string
	DeviceType string
}

// ParseUserAgent classifies a client as desktop, mobile, bot or unknown.
// The TUI client identifies itself as modesta-tui and is reported as cli.
func ParseUserAgent(uaString string) *UAInfo {
	if strings.TrimSpace(uaString) == "" {
		return &UAInfo{DeviceType: "unknown"}
	}
	if strings.HasPrefix(uaString, "modesta-tui") {
		return &UAInfo{Browser: "modesta-tui", DeviceType: "cli"}
	}

	ua := user_agent.New(uaString)
	browser, _ := ua.Browser()

	deviceType := "desktop"
	switch {
	case ua.Bot():
		deviceType = "bot"
	case ua.Mobile():
		deviceType = "mobile"
	}

	return &UAInfo{
		Browser:    browser,
		OS:         ua.OS(),
		DeviceType: deviceType,
	}
}
