package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/theme"
)

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with a title on the left and
// the account and notification summary on the right.
func (l Layout) RenderHeader(s *theme.Styles, title string, right string) string {
	titleRendered := s.Header.Render(title)

	rightRendered := s.Header.
		Align(lipgloss.Right).
		Render(right)

	return l.fill(s.Header, titleRendered, rightRendered)
}

// RenderStatusBar renders the bottom status bar with keyboard hints or a
// status message.
func (l Layout) RenderStatusBar(s *theme.Styles, text string, isError bool) string {
	style := s.StatusBar
	if isError {
		style = style.Foreground(s.Palette.Red).Bold(true)
	}
	return l.fill(style, style.Render(text), "")
}

func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := l.Width -
		lipgloss.Width(left) -
		lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
