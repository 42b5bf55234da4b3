package productdetail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/ui"
)

type productLoadedMsg struct {
	product *model.Product
	err     error
}

type addedToCartMsg struct {
	name  string
	count int
	err   error
}

type addedToWishlistMsg struct {
	name string
	err  error
}

// Model shows one product and lets a customer put it in the cart or the
// wishlist.
type Model struct {
	ctx      *ui.Context
	spinner  spinner.Model
	id       int64
	product  *model.Product
	quantity int
	notice   string
	loading  bool
	busy     bool
	err      error
	width    int
	height   int
}

// New creates the product detail view.
func New(ctx *ui.Context, width, height int) Model {
	return Model{
		ctx:      ctx,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		quantity: 1,
		width:    width,
		height:   height,
	}
}

// Load resets the view and fetches product id.
func (m *Model) Load(id int64) tea.Cmd {
	m.id = id
	m.product = nil
	m.quantity = 1
	m.notice = ""
	m.err = nil
	m.loading = true

	client := m.ctx.API
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		p, err := client.Product(context.Background(), id)
		return productLoadedMsg{product: p, err: err}
	})
}

// Update handles messages for the product detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case productLoadedMsg:
		m.loading = false
		m.product = msg.product
		m.err = msg.err
		if msg.err == nil && msg.product == nil {
			m.err = fmt.Errorf("product %d not found", m.id)
		}
		return m, nil

	case addedToCartMsg:
		m.busy = false
		if msg.err != nil {
			return m, ui.Error(msg.err)
		}
		m.quantity = 1
		return m, ui.Status("Added %d × %s to your cart", msg.count, msg.name)

	case addedToWishlistMsg:
		m.busy = false
		if msg.err != nil {
			return m, ui.Error(msg.err)
		}
		return m, ui.Status("Added %s to your wishlist", msg.name)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.ctx.Keys

	switch {
	case key.Matches(msg, k.Back):
		return m, ui.Back()

	case key.Matches(msg, k.Refresh):
		return m, m.Load(m.id)
	}

	if m.product == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Increment):
		m.quantity++
		m.notice = model.ValidateQuantity(*m.product, m.quantity)

	case key.Matches(msg, k.Decrement):
		if m.quantity > 1 {
			m.quantity--
		}
		m.notice = model.ValidateQuantity(*m.product, m.quantity)

	case key.Matches(msg, k.Storefront):
		merchantID := m.product.MerchantID
		if merchantID != 0 {
			return m, func() tea.Msg {
				return ui.NavigateMsg{Route: ui.RouteMerchantStore, MerchantID: merchantID}
			}
		}

	case key.Matches(msg, k.AddToCart):
		if cmd := m.requireCustomer("add items to your cart"); cmd != nil {
			return m, cmd
		}
		if notice := model.ValidateQuantity(*m.product, m.quantity); notice != "" {
			m.notice = notice
			return m, nil
		}
		m.notice = ""
		m.busy = true
		return m, m.addToCart()

	case key.Matches(msg, k.Wishlist):
		if cmd := m.requireCustomer("use the wishlist"); cmd != nil {
			return m, cmd
		}
		m.busy = true
		return m, m.addToWishlist()
	}

	return m, nil
}

// requireCustomer returns a command that explains why the action is not
// available, or nil when a customer is logged in. Anonymous users are sent
// to the login screen.
func (m Model) requireCustomer(action string) tea.Cmd {
	state := m.ctx.State
	switch {
	case !state.IsLoggedIn():
		return tea.Batch(
			ui.Navigate(ui.RouteLogin),
			ui.Status("Log in to %s", action),
		)
	case !state.IsCustomer():
		return func() tea.Msg {
			return ui.StatusMsg{Text: "Only customers can " + action, IsError: true}
		}
	}
	return nil
}

func (m Model) addToCart() tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	id, name, count := m.product.ID, m.product.Name, m.quantity
	return func() tea.Msg {
		err := client.AddToCart(context.Background(), id, count, token)
		return addedToCartMsg{name: name, count: count, err: err}
	}
}

func (m Model) addToWishlist() tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	id, name := m.product.ID, m.product.Name
	return func() tea.Msg {
		err := client.AddToWishlist(context.Background(), id, token)
		return addedToWishlistMsg{name: name, err: err}
	}
}

// View renders the product.
func (m Model) View() string {
	s := m.ctx.Styles

	switch {
	case m.loading:
		return s.Panel.Render(m.spinner.View() + " Loading product...")
	case m.err != nil:
		return s.Panel.Render(s.Error.Render(api.UserMessage(m.err)))
	case m.product == nil:
		return ""
	}

	p := m.product
	width := m.width - 4
	if width < 20 {
		width = 20
	}

	lines := []string{
		s.Title.Render(p.Name),
		s.Price.Render(ui.FormatPrice(p.Price)) + "  " +
			s.Stock(p.StockCount).Render(fmt.Sprintf("%d in stock", p.StockCount)),
	}

	meta := []string{}
	if p.CategoryName != "" {
		meta = append(meta, "Category: "+p.CategoryName)
	}
	if p.MerchantCompanyName != "" {
		meta = append(meta, "Sold by: "+p.MerchantCompanyName)
	}
	if p.CreatedAt != "" {
		meta = append(meta, "Listed: "+ui.FormatTimestamp(p.CreatedAt))
	}
	if len(meta) > 0 {
		lines = append(lines, s.Muted.Render(strings.Join(meta, " · ")))
	}

	lines = append(lines, "", lipgloss.NewStyle().Width(width-4).Render(p.Details), "")

	if urls := m.ctx.API.PhotoURLs(*p); len(urls) > 0 {
		lines = append(lines, s.Title.Render("Photos"))
		for _, u := range urls {
			lines = append(lines, s.Muted.Render("  "+u))
		}
		lines = append(lines, "")
	}

	qty := fmt.Sprintf("Quantity: %d", m.quantity)
	if m.busy {
		qty += "  " + s.Muted.Render("working...")
	}
	lines = append(lines, qty)
	if m.notice != "" {
		lines = append(lines, s.Error.Render(m.notice))
	}

	return s.Panel.
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
