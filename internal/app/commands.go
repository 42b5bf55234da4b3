package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/marketplace/internal/theme"
	"github.com/nhle/marketplace/internal/ui"
	"github.com/nhle/marketplace/internal/ui/command"
)

// executeCommand runs a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	to := func(r ui.Route) tea.Cmd {
		return m.navigate(ui.NavigateMsg{Route: r})
	}

	switch c.Name {
	case "products":
		return to(ui.RouteProducts)
	case "product":
		return m.navigate(ui.NavigateMsg{Route: ui.RouteProductDetail, ProductID: c.ID})
	case "store":
		return m.navigate(ui.NavigateMsg{Route: ui.RouteMerchantStore, MerchantID: c.ID})
	case "cart":
		return to(ui.RouteCart)
	case "wishlist":
		return to(ui.RouteWishlist)
	case "orders":
		return to(m.sectionRoute(ui.RouteOrders))
	case "notifications":
		return to(ui.RouteNotifications)
	case "profile":
		return to(ui.RouteProfile)
	case "my-products":
		return to(ui.RouteMerchantProducts)
	case "new-product":
		return to(ui.RouteProductNew)
	case "login":
		return to(ui.RouteLogin)
	case "register":
		return to(ui.RouteRegister)
	case "logout":
		if !m.ctx.State.IsLoggedIn() {
			return ui.Status("Not logged in")
		}
		return m.logout(ui.StatusMsg{Text: "Logged out"})
	case "theme":
		return m.toggleTheme(c.Arg)
	case "settings":
		return to(ui.RouteSettings)
	case "help":
		return to(ui.RouteHelp)
	case "quit":
		return m.quit()
	default:
		return nil
	}
}

// toggleTheme switches to mode, or to the other mode when mode is empty,
// and restyles every view in place. "reset" drops the stored theme.
func (m *Model) toggleTheme(mode string) tea.Cmd {
	st := m.ctx.State
	ctx := context.Background()

	var (
		next theme.Mode
		err  error
	)
	switch mode {
	case "":
		next, err = st.ToggleTheme(ctx)
	case "reset":
		next, err = st.ResetTheme(ctx)
	default:
		next = theme.ParseMode(mode)
		err = st.SetTheme(ctx, next)
	}

	*m.ctx.Styles = *theme.New(next)

	if err != nil {
		return ui.Error(err)
	}
	return ui.Status("Theme: %s", next)
}
