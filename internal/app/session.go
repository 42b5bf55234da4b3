package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/marketplace/internal/api"
	appsync "github.com/nhle/marketplace/internal/sync"
	"github.com/nhle/marketplace/internal/ui"
)

// syncStartedMsg reports the initial notification fetch of a session.
type syncStartedMsg struct {
	token string
	err   error
}

// startSync enters the notification lifecycle for the current session.
func (m Model) startSync() tea.Cmd {
	sess := m.ctx.State.Session()
	if sess == nil {
		return nil
	}
	syncer := m.ctx.Sync
	return func() tea.Msg {
		return syncStartedMsg{token: sess.Token, err: syncer.Start(context.Background(), sess)}
	}
}

func (m *Model) handleSyncStarted(msg syncStartedMsg) tea.Cmd {
	if msg.err == nil {
		return nil
	}
	if msg.token != m.ctx.Token() {
		return nil
	}

	if api.IsUnauthorized(msg.err) {
		m.ctx.Log.Info("stored session rejected by the server")
		return m.logout(ui.StatusMsg{Text: "Your session has expired. Log in again.", IsError: true})
	}

	m.ctx.Log.WithError(msg.err).Warn("initial notification fetch failed")
	return nil
}

// handleLoggedIn stores the new session, starts the sync and leaves the
// login screen for the route that sent the user there.
func (m *Model) handleLoggedIn(msg ui.LoggedInMsg) tea.Cmd {
	if err := m.ctx.State.Login(msg.Session); err != nil {
		return ui.Error(err)
	}

	cmds := []tea.Cmd{
		m.startSync(),
		ui.Status("Logged in as %s", msg.Session.Email),
	}

	pending := m.pending
	m.pending = nil

	st := m.ctx.State
	switch {
	case pending != nil && pending.Route.Allowed(true, st.IsCustomer(), st.IsMerchant()):
		cmds = append(cmds, m.open(*pending))
	case len(m.history) > 0:
		cmds = append(cmds, m.back())
	case st.IsMerchant():
		cmds = append(cmds, m.open(ui.NavigateMsg{Route: ui.RouteMerchantProducts}))
	default:
		cmds = append(cmds, m.open(ui.NavigateMsg{Route: ui.RouteProducts}))
	}
	return tea.Batch(cmds...)
}

// logout stops the sync, forgets the session and returns to the catalog
// showing status. A failure to clear the stored session replaces status.
func (m *Model) logout(status ui.StatusMsg) tea.Cmd {
	m.ctx.Sync.Stop()
	err := m.ctx.State.Logout()

	m.unread = 0
	m.syncState = appsync.StateDisconnected
	m.history = nil
	m.pending = nil
	m.current = ui.RouteProducts

	load := m.products.Load()
	if err != nil {
		return tea.Batch(load, ui.Error(err))
	}
	return tea.Batch(load, func() tea.Msg { return status })
}
