package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/model"
)

// Mode is the user's color scheme preference.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode maps a stored preference to a Mode. Anything unknown is Light.
func ParseMode(s string) Mode {
	if Mode(s) == Dark {
		return Dark
	}
	return Light
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Palette is the set of colors a mode renders with.
type Palette struct {
	Accent  lipgloss.Color
	Green   lipgloss.Color
	Yellow  lipgloss.Color
	Red     lipgloss.Color
	Orange  lipgloss.Color
	Magenta lipgloss.Color
	Gray    lipgloss.Color
	Text    lipgloss.Color
	Subtle  lipgloss.Color
	Border  lipgloss.Color
}

var palettes = map[Mode]Palette{
	Dark: {
		Accent:  "#5B9BD5",
		Green:   "#6BCB77",
		Yellow:  "#FFD93D",
		Red:     "#FF6B6B",
		Orange:  "#FFA94D",
		Magenta: "#CC5DE8",
		Gray:    "#868E96",
		Text:    "#F8F9FA",
		Subtle:  "#495057",
		Border:  "#495057",
	},
	Light: {
		Accent:  "#2B6CB0",
		Green:   "#2F855A",
		Yellow:  "#B7791F",
		Red:     "#C53030",
		Orange:  "#C05621",
		Magenta: "#805AD5",
		Gray:    "#718096",
		Text:    "#1A202C",
		Subtle:  "#CBD5E0",
		Border:  "#E2E8F0",
	},
}

// Styles is the full style set for one mode. Views receive it by pointer
// and must not cache individual styles across a theme change.
type Styles struct {
	Mode    Mode
	Palette Palette

	// Header is used for the application title bar.
	Header lipgloss.Style
	// StatusBar is used for the bottom status bar.
	StatusBar lipgloss.Style
	// Panel wraps detail content areas.
	Panel        lipgloss.Style
	ListItem     lipgloss.Style
	SelectedItem lipgloss.Style
	Help         lipgloss.Style
	Border       lipgloss.Style
	Title        lipgloss.Style
	Muted        lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	Badge        lipgloss.Style
	Price        lipgloss.Style
	Unread       lipgloss.Style
}

// New builds the style set for mode.
func New(mode Mode) *Styles {
	p := palettes[ParseMode(string(mode))]

	return &Styles{
		Mode:    ParseMode(string(mode)),
		Palette: p,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(p.Accent).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Subtle).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),
		ListItem: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(p.Text),
		SelectedItem: lipgloss.NewStyle().
			PaddingLeft(1).
			Bold(true).
			Foreground(p.Accent).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.Accent),
		Help: lipgloss.NewStyle().
			Foreground(p.Gray).
			Italic(true),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),
		Muted: lipgloss.NewStyle().
			Foreground(p.Gray),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Red),
		Success: lipgloss.NewStyle().
			Foreground(p.Green),
		Badge: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(p.Orange).
			Padding(0, 1),
		Price: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Green),
		Unread: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),
	}
}

// OrderStatus returns a color-coded style for an order status.
func (s *Styles) OrderStatus(status model.OrderStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case model.OrderCreated:
		return base.Foreground(s.Palette.Accent)
	case model.OrderPaidFromBalance:
		return base.Foreground(s.Palette.Magenta)
	case model.OrderAccepted:
		return base.Foreground(s.Palette.Yellow)
	case model.OrderDelivered:
		return base.Foreground(s.Palette.Green)
	case model.OrderRejectByCustomer, model.OrderRejectByMerchant:
		return base.Foreground(s.Palette.Red)
	default:
		return base.Foreground(s.Palette.Gray)
	}
}

// Stock returns the style for a stock count: red when sold out, orange
// when low.
func (s *Styles) Stock(count int) lipgloss.Style {
	switch {
	case count <= 0:
		return lipgloss.NewStyle().Foreground(s.Palette.Red)
	case count < 5:
		return lipgloss.NewStyle().Foreground(s.Palette.Orange)
	default:
		return lipgloss.NewStyle().Foreground(s.Palette.Gray)
	}
}
