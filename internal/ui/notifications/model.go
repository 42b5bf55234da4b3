package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/model"
	appsync "github.com/nhle/marketplace/internal/sync"
	"github.com/nhle/marketplace/internal/ui"
)

// actionDoneMsg reports the end of a mark-read or refresh call. The list
// itself is re-read from the synchronizer.
type actionDoneMsg struct {
	err error
}

// Model renders the synchronizer's notification list. It never owns the
// list; Sync copies the current snapshot.
type Model struct {
	ctx         *ui.Context
	items       []model.Notification
	loading     bool
	state       appsync.State
	selectedIdx int
	width       int
	height      int
}

// New creates the notifications view.
func New(ctx *ui.Context, width, height int) Model {
	return Model{
		ctx:    ctx,
		width:  width,
		height: height,
	}
}

// Sync copies the synchronizer's current list into the view. The cursor
// follows the selected notification when it moves.
func (m *Model) Sync() {
	var selectedID int64
	if m.selectedIdx < len(m.items) {
		selectedID = m.items[m.selectedIdx].ID
	}

	m.items = m.ctx.Sync.Notifications()
	m.loading = m.ctx.Sync.Loading()
	m.state = m.ctx.Sync.State()

	m.selectedIdx = ui.Clamp(m.selectedIdx, len(m.items))
	for i, n := range m.items {
		if n.ID == selectedID {
			m.selectedIdx = i
			break
		}
	}
}

// Load shows the current snapshot and asks the server for a fresh one.
func (m *Model) Load() tea.Cmd {
	m.Sync()
	m.loading = true
	syncer := m.ctx.Sync
	return func() tea.Msg {
		return actionDoneMsg{err: syncer.Refresh(context.Background())}
	}
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		m.Sync()
		if msg.err != nil {
			return m, ui.Error(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.ctx.Keys
	syncer := m.ctx.Sync

	switch {
	case key.Matches(msg, k.Back):
		return m, ui.Back()

	case key.Matches(msg, k.Down):
		m.selectedIdx = ui.Step(m.selectedIdx, 1, len(m.items))

	case key.Matches(msg, k.Up):
		m.selectedIdx = ui.Step(m.selectedIdx, -1, len(m.items))

	case key.Matches(msg, k.Refresh):
		m.loading = true
		return m, func() tea.Msg {
			return actionDoneMsg{err: syncer.Refresh(context.Background())}
		}

	case key.Matches(msg, k.MarkAllRead):
		return m, func() tea.Msg {
			return actionDoneMsg{err: syncer.MarkAllAsRead(context.Background())}
		}

	case key.Matches(msg, k.MarkRead):
		n, ok := m.selected()
		if !ok || n.Read {
			return m, nil
		}
		id := n.ID
		return m, func() tea.Msg {
			return actionDoneMsg{err: syncer.MarkAsRead(context.Background(), id)}
		}

	case key.Matches(msg, k.Select):
		n, ok := m.selected()
		if !ok || n.OrderID == nil {
			return m, nil
		}
		route := ui.RouteOrders
		if m.ctx.State.IsMerchant() {
			route = ui.RouteMerchantOrders
		}
		cmds := []tea.Cmd{ui.Navigate(route)}
		if !n.Read {
			id := n.ID
			cmds = append(cmds, func() tea.Msg {
				return actionDoneMsg{err: syncer.MarkAsRead(context.Background(), id)}
			})
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) selected() (model.Notification, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.items) {
		return model.Notification{}, false
	}
	return m.items[m.selectedIdx], true
}

func (m Model) unread() int {
	count := 0
	for _, n := range m.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// View renders the notification list.
func (m Model) View() string {
	s := m.ctx.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Notifications"))
	b.WriteString("  ")
	b.WriteString(s.Muted.Render(fmt.Sprintf("%d unread · %s", m.unread(), m.state)))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.items) == 0:
		b.WriteString(s.Muted.Render("Loading notifications..."))
	case len(m.items) == 0:
		b.WriteString(s.Muted.Italic(true).Render("You're all caught up."))
	default:
		for i, n := range m.items {
			b.WriteString(m.row(n, i == m.selectedIdx))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(s.Help.Render("m mark read | M mark all read | enter open order | r refresh | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) row(n model.Notification, selected bool) string {
	s := m.ctx.Styles

	marker := "  "
	message := n.Message
	if !n.Read {
		marker = s.Unread.Render("● ")
		message = s.Unread.Render(message)
	} else {
		message = s.Muted.Render(message)
	}

	line := marker + message + "  " + s.Muted.Render(ui.FormatTimestamp(n.CreatedAt))
	if selected {
		return s.SelectedItem.Render(line)
	}
	return s.ListItem.Render(line)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
