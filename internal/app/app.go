package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	appsync "github.com/nhle/marketplace/internal/sync"
	"github.com/nhle/marketplace/internal/ui"
	"github.com/nhle/marketplace/internal/ui/cart"
	"github.com/nhle/marketplace/internal/ui/command"
	helpview "github.com/nhle/marketplace/internal/ui/help"
	"github.com/nhle/marketplace/internal/ui/login"
	"github.com/nhle/marketplace/internal/ui/merchantproducts"
	"github.com/nhle/marketplace/internal/ui/notifications"
	"github.com/nhle/marketplace/internal/ui/orders"
	"github.com/nhle/marketplace/internal/ui/productdetail"
	"github.com/nhle/marketplace/internal/ui/productform"
	"github.com/nhle/marketplace/internal/ui/products"
	"github.com/nhle/marketplace/internal/ui/profile"
	"github.com/nhle/marketplace/internal/ui/register"
	"github.com/nhle/marketplace/internal/ui/settings"
	"github.com/nhle/marketplace/internal/ui/wishlist"
)

// maxHistory bounds the back stack.
const maxHistory = 32

// Model is the root Bubble Tea model that manages routing, layout, the
// session lifecycle and the notification bell.
type Model struct {
	ctx *ui.Context

	current ui.Route
	history []ui.Route
	pending *ui.NavigateMsg // guarded route to open after login

	layout ui.Layout
	ready  bool

	products         products.Model
	detail           productdetail.Model
	login            login.Model
	register         register.Model
	cart             cart.Model
	wishlist         wishlist.Model
	orders           orders.Model
	merchantOrders   orders.Model
	notifications    notifications.Model
	profile          profile.Model
	merchantProducts merchantproducts.Model
	productForm      productform.Model
	helpView         helpview.Model
	commandView      command.Model
	settingsView     settings.Model

	unread    int
	syncState appsync.State
	status    ui.StatusMsg

	initCmds []tea.Cmd
}

// New creates the root model. The catalog starts loading immediately and
// the notification sync starts when a stored session exists.
func New(ctx *ui.Context) Model {
	const w, h = 80, 24

	m := Model{
		ctx:              ctx,
		current:          ui.RouteProducts,
		products:         products.New(ctx, w, h),
		detail:           productdetail.New(ctx, w, h),
		login:            login.New(ctx, w, h),
		register:         register.New(ctx, w, h),
		cart:             cart.New(ctx, w, h),
		wishlist:         wishlist.New(ctx, w, h),
		orders:           orders.New(ctx, false, w, h),
		merchantOrders:   orders.New(ctx, true, w, h),
		notifications:    notifications.New(ctx, w, h),
		profile:          profile.New(ctx, w, h),
		merchantProducts: merchantproducts.New(ctx, w, h),
		productForm:      productform.New(ctx, w, h),
		helpView:         helpview.New(ctx, w, h),
		commandView:      command.New(ctx, w, h),
		settingsView:     settings.New(ctx, w, h),
	}

	m.initCmds = append(m.initCmds, m.products.Load(), ctx.Sync.WaitForChange())
	if ctx.State.IsLoggedIn() {
		m.initCmds = append(m.initCmds, m.startSync())
	}
	return m
}

// Init returns the initial commands: the first catalog page, the sync
// start and the sync change listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize(m.layout.ContentWidth(), m.layout.ContentHeight())
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.ChangedMsg:
		m.unread = msg.Unread
		m.syncState = msg.State
		if m.current == ui.RouteNotifications {
			m.notifications.Sync()
		}
		return m, m.ctx.Sync.WaitForChange()

	case syncStartedMsg:
		cmd := m.handleSyncStarted(msg)
		return m, cmd

	case ui.StatusMsg:
		m.status = msg
		return m, nil

	case ui.NavigateMsg:
		cmd := m.navigate(msg)
		return m, cmd

	case ui.BackMsg:
		cmd := m.back()
		return m, cmd

	case ui.LoggedInMsg:
		cmd := m.handleLoggedIn(msg)
		return m, cmd

	case cart.CheckedOutMsg:
		cmd := m.navigate(ui.NavigateMsg{Route: ui.RouteOrders})
		return m, cmd

	case command.CommandMsg:
		m.current = m.popHistory()
		cmd := m.executeCommand(msg)
		return m, cmd

	case tea.KeyMsg:
		m.status = ui.StatusMsg{}
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the active view.
// Keys are left to the view while it has a text field focused.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m.quit(), true
	}
	if m.editing() {
		return nil, false
	}

	k := m.ctx.Keys
	switch {
	case key.Matches(msg, k.Quit):
		if m.current == ui.RouteProducts {
			return m.quit(), true
		}
		return m.back(), true

	case key.Matches(msg, k.Help):
		if m.current == ui.RouteHelp {
			return m.back(), true
		}
		return m.navigate(ui.NavigateMsg{Route: ui.RouteHelp}), true

	case key.Matches(msg, k.Command):
		return m.navigate(ui.NavigateMsg{Route: ui.RouteCommand}), true

	case key.Matches(msg, k.ToggleTheme):
		return m.toggleTheme(""), true

	case key.Matches(msg, k.Login):
		if m.ctx.State.IsLoggedIn() {
			return m.logout(ui.StatusMsg{Text: "Logged out"}), true
		}
		return m.navigate(ui.NavigateMsg{Route: ui.RouteLogin}), true

	case key.Matches(msg, k.GoProducts):
		return m.navigate(ui.NavigateMsg{Route: ui.RouteProducts}), true
	case key.Matches(msg, k.GoCart):
		return m.navigate(ui.NavigateMsg{Route: m.sectionRoute(ui.RouteCart)}), true
	case key.Matches(msg, k.GoWishlist):
		return m.navigate(ui.NavigateMsg{Route: m.sectionRoute(ui.RouteWishlist)}), true
	case key.Matches(msg, k.GoOrders):
		return m.navigate(ui.NavigateMsg{Route: m.sectionRoute(ui.RouteOrders)}), true
	case key.Matches(msg, k.GoNotifications):
		return m.navigate(ui.NavigateMsg{Route: ui.RouteNotifications}), true
	case key.Matches(msg, k.GoProfile):
		return m.navigate(ui.NavigateMsg{Route: ui.RouteProfile}), true
	}

	return nil, false
}

// sectionRoute maps the customer sections to their merchant counterparts:
// a merchant's cart key opens their inventory and the orders key opens
// incoming orders.
func (m Model) sectionRoute(r ui.Route) ui.Route {
	if !m.ctx.State.IsMerchant() {
		return r
	}
	switch r {
	case ui.RouteCart:
		return ui.RouteMerchantProducts
	case ui.RouteOrders:
		return ui.RouteMerchantOrders
	}
	return r
}

// editing reports whether the active view owns the keyboard.
func (m Model) editing() bool {
	switch m.current {
	case ui.RouteLogin, ui.RouteRegister, ui.RouteProductNew, ui.RouteProductEdit, ui.RouteCommand,
		ui.RouteSettings:
		return true
	case ui.RouteProducts:
		return m.products.Searching()
	case ui.RouteMerchantProducts, ui.RouteMerchantStore:
		return m.merchantProducts.Editing()
	case ui.RouteOrders:
		return m.orders.Editing()
	case ui.RouteMerchantOrders:
		return m.merchantOrders.Editing()
	case ui.RouteCart:
		return m.cart.Editing()
	}
	return false
}

func (m *Model) quit() tea.Cmd {
	m.ctx.Sync.Stop()
	return tea.Quit
}

func (m *Model) resize(w, h int) {
	m.products.SetSize(w, h)
	m.detail.SetSize(w, h)
	m.login.SetSize(w, h)
	m.register.SetSize(w, h)
	m.cart.SetSize(w, h)
	m.wishlist.SetSize(w, h)
	m.orders.SetSize(w, h)
	m.merchantOrders.SetSize(w, h)
	m.notifications.SetSize(w, h)
	m.profile.SetSize(w, h)
	m.merchantProducts.SetSize(w, h)
	m.productForm.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
	m.settingsView.SetSize(w, h)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.current {
	case ui.RouteProducts:
		m.products, cmd = m.products.Update(msg)
	case ui.RouteProductDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ui.RouteLogin:
		m.login, cmd = m.login.Update(msg)
	case ui.RouteRegister:
		m.register, cmd = m.register.Update(msg)
	case ui.RouteCart:
		m.cart, cmd = m.cart.Update(msg)
	case ui.RouteWishlist:
		m.wishlist, cmd = m.wishlist.Update(msg)
	case ui.RouteOrders:
		m.orders, cmd = m.orders.Update(msg)
	case ui.RouteMerchantOrders:
		m.merchantOrders, cmd = m.merchantOrders.Update(msg)
	case ui.RouteNotifications:
		m.notifications, cmd = m.notifications.Update(msg)
	case ui.RouteProfile:
		m.profile, cmd = m.profile.Update(msg)
	case ui.RouteMerchantProducts, ui.RouteMerchantStore:
		m.merchantProducts, cmd = m.merchantProducts.Update(msg)
	case ui.RouteProductNew, ui.RouteProductEdit:
		m.productForm, cmd = m.productForm.Update(msg)
	case ui.RouteHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ui.RouteCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ui.RouteSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	s := m.ctx.Styles
	header := m.layout.RenderHeader(s, m.headerTitle(), m.headerRight())
	content := m.renderContent()

	text, isError := m.keyHints(), false
	if m.status.Text != "" {
		text, isError = m.status.Text, m.status.IsError
	}
	statusBar := m.layout.RenderStatusBar(s, text, isError)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) headerTitle() string {
	title := "Marketplace"
	if t := m.current.Title(); t != "" {
		title += " · " + t
	}
	return title
}

// headerRight summarizes the account, the bell and the sync state.
func (m Model) headerRight() string {
	sess := m.ctx.State.Session()
	if sess == nil {
		return "guest · L log in"
	}

	bell := "🔔 0"
	if m.unread > 0 {
		bell = fmt.Sprintf("🔔 %d", m.unread)
	}
	return fmt.Sprintf("%s (%s) · %s · %s", sess.Email, m.roleLabel(), bell, m.syncState)
}

func (m Model) roleLabel() string {
	if m.ctx.State.IsMerchant() {
		return "merchant"
	}
	return "customer"
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.current {
	case ui.RouteProducts:
		return m.products.View()
	case ui.RouteProductDetail:
		return m.detail.View()
	case ui.RouteLogin:
		return m.login.View()
	case ui.RouteRegister:
		return m.register.View()
	case ui.RouteCart:
		return m.cart.View()
	case ui.RouteWishlist:
		return m.wishlist.View()
	case ui.RouteOrders:
		return m.orders.View()
	case ui.RouteMerchantOrders:
		return m.merchantOrders.View()
	case ui.RouteNotifications:
		return m.notifications.View()
	case ui.RouteProfile:
		return m.profile.View()
	case ui.RouteMerchantProducts, ui.RouteMerchantStore:
		return m.merchantProducts.View()
	case ui.RouteProductNew, ui.RouteProductEdit:
		return m.productForm.View()
	case ui.RouteHelp:
		return m.helpView.View()
	case ui.RouteCommand:
		return m.commandView.View()
	case ui.RouteSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.current {
	case ui.RouteHelp:
		return "? close help | esc back"
	case ui.RouteCommand:
		return "enter execute | esc back"
	case ui.RouteLogin, ui.RouteRegister, ui.RouteProductNew, ui.RouteProductEdit, ui.RouteSettings:
		return "enter submit | esc cancel"
	}

	hints := "q quit | ? help | : command | T theme | 1 products"
	switch {
	case m.ctx.State.IsMerchant():
		hints += " | 2 my products | 4 orders | 5 notifications | 6 profile | L log out"
	case m.ctx.State.IsCustomer():
		hints += " | 2 cart | 3 wishlist | 4 orders | 5 notifications | 6 profile | L log out"
	default:
		hints += " | L log in"
	}
	return hints
}
