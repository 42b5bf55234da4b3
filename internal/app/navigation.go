package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/marketplace/internal/ui"
)

// transient routes are never returned to with back.
func transient(r ui.Route) bool {
	switch r {
	case ui.RouteLogin, ui.RouteRegister, ui.RouteProductNew, ui.RouteProductEdit,
		ui.RouteHelp, ui.RouteCommand, ui.RouteSettings:
		return true
	}
	return false
}

// navigate opens msg.Route when the session may see it. Anonymous users
// are sent to the login screen and return to the route after logging in.
func (m *Model) navigate(msg ui.NavigateMsg) tea.Cmd {
	r := msg.Route
	st := m.ctx.State

	if r.Allowed(st.IsLoggedIn(), st.IsCustomer(), st.IsMerchant()) {
		return m.open(msg)
	}

	if !st.IsLoggedIn() {
		pending := msg
		m.pending = &pending
		return tea.Batch(
			m.open(ui.NavigateMsg{Route: ui.RouteLogin}),
			ui.Status("Log in to open %s", r.Title()),
		)
	}

	who := "customers"
	if r.Access() == ui.MerchantOnly {
		who = "merchants"
	}
	text := fmt.Sprintf("%s is only available to %s", r.Title(), who)
	return func() tea.Msg {
		return ui.StatusMsg{Text: text, IsError: true}
	}
}

// open switches to msg.Route and starts loading it.
func (m *Model) open(msg ui.NavigateMsg) tea.Cmd {
	if m.current != msg.Route && !transient(m.current) {
		m.history = append(m.history, m.current)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
	}
	m.current = msg.Route
	return m.enter(msg)
}

// enter runs the load command of the route being opened.
func (m *Model) enter(msg ui.NavigateMsg) tea.Cmd {
	switch msg.Route {
	case ui.RouteProducts:
		return m.products.Load()
	case ui.RouteProductDetail:
		return m.detail.Load(msg.ProductID)
	case ui.RouteLogin:
		return m.login.Start()
	case ui.RouteRegister:
		return m.register.Start()
	case ui.RouteCart:
		return m.cart.Load()
	case ui.RouteWishlist:
		return m.wishlist.Load()
	case ui.RouteOrders:
		return m.orders.Load()
	case ui.RouteMerchantOrders:
		return m.merchantOrders.Load()
	case ui.RouteNotifications:
		return m.notifications.Load()
	case ui.RouteProfile:
		return m.profile.Load()
	case ui.RouteMerchantProducts:
		return m.merchantProducts.LoadOwn()
	case ui.RouteMerchantStore:
		return m.merchantProducts.LoadStore(msg.MerchantID)
	case ui.RouteProductNew:
		return m.productForm.StartCreate()
	case ui.RouteProductEdit:
		return m.productForm.StartEdit(msg.ProductID)
	case ui.RouteCommand:
		return m.commandView.Focus()
	case ui.RouteSettings:
		return m.settingsView.Start()
	}
	return nil
}

// popHistory removes and returns the most recent route, or the catalog
// when the history is empty.
func (m *Model) popHistory() ui.Route {
	n := len(m.history)
	if n == 0 {
		return ui.RouteProducts
	}
	r := m.history[n-1]
	m.history = m.history[:n-1]
	return r
}

// back returns to the previous route. Collections are re-fetched on the
// way back; overlays close without reloading what is under them.
func (m *Model) back() tea.Cmd {
	overlay := m.current == ui.RouteHelp || m.current == ui.RouteCommand
	m.current = m.popHistory()
	if overlay {
		return nil
	}

	switch m.current {
	case ui.RouteProductDetail, ui.RouteMerchantStore:
		return nil
	}
	return m.enter(ui.NavigateMsg{Route: m.current})
}
