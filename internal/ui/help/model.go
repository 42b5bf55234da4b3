package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/ui"
	"github.com/nhle/marketplace/internal/ui/command"
)

// Model is the help overlay view.
type Model struct {
	ctx    *ui.Context
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(ctx *ui.Context, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		ctx:    ctx,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "?", "q":
			return m, ui.Back()
		}
	}
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	s := m.ctx.Styles

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	m.help.Styles.FullKey = s.Badge
	m.help.Styles.FullDesc = s.Muted

	var commands strings.Builder
	for _, c := range command.Commands {
		fmt.Fprintf(&commands, "%-20s %s\n", c.Usage(), s.Muted.Render(c.Desc))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render("Keyboard Shortcuts"),
		m.help.View(m.ctx.Keys),
		"",
		s.Title.MarginBottom(1).Render("Commands"),
		commands.String(),
	)

	return s.Panel.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
