package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/appstate"
	"github.com/nhle/marketplace/internal/keys"
	"github.com/nhle/marketplace/internal/model"
	appsync "github.com/nhle/marketplace/internal/sync"
	"github.com/nhle/marketplace/internal/theme"
)

// Context bundles the collaborators every view needs. The root model
// creates it once and hands the same pointer to each view. Styles is
// replaced in place when the theme changes.
type Context struct {
	API      *api.Client
	State    *appstate.State
	Sync     *appsync.Synchronizer
	Styles   *theme.Styles
	Keys     *keys.KeyMap
	PageSize int
	Log      *logrus.Entry

	// Config is the loaded configuration and ConfigPath the file it is
	// saved to.
	Config     *model.AppConfig
	ConfigPath string
}

// Token returns the bearer token of the current session, or "".
func (c *Context) Token() string {
	return c.State.Token()
}

// StatusMsg asks the root model to show a line in the status bar.
type StatusMsg struct {
	Text    string
	IsError bool
}

// Status returns a command that shows an informational status line.
func Status(format string, args ...interface{}) tea.Cmd {
	text := fmt.Sprintf(format, args...)
	return func() tea.Msg {
		return StatusMsg{Text: text}
	}
}

// Error returns a command that shows err in the status bar.
func Error(err error) tea.Cmd {
	text := api.UserMessage(err)
	return func() tea.Msg {
		return StatusMsg{Text: text, IsError: true}
	}
}

// LoggedInMsg is emitted by the login and register views after the server
// issued a token.
type LoggedInMsg struct {
	Session model.Session
}

// FormatPrice renders an amount of money for display.
func FormatPrice(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// FormatTimestamp renders a server timestamp as a short local date, or the
// raw value when it cannot be parsed.
func FormatTimestamp(raw string) string {
	t, ok := model.ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.Format("Jan 02 2006 15:04")
}

// Truncate shortens s to at most max runes, appending an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
