package wishlist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/ui"
	"github.com/nhle/marketplace/internal/ui/products"
)

type wishlistLoadedMsg struct {
	products []model.Product
	err      error
}

type removedMsg struct {
	name string
	err  error
}

type movedToCartMsg struct {
	name string
	err  error
}

// Model is the customer's wishlist.
type Model struct {
	ctx     *ui.Context
	list    list.Model
	loaded  bool
	loading bool
	err     error
	width   int
	height  int
}

// New creates the wishlist view.
func New(ctx *ui.Context, width, height int) Model {
	l := list.New([]list.Item{}, products.NewDelegate(ctx, true), width, height-4)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return Model{
		ctx:    ctx,
		list:   l,
		width:  width,
		height: height,
	}
}

// Load fetches the wishlist.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	return m.fetch()
}

// Update handles messages for the wishlist view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wishlistLoadedMsg:
		m.loading = false
		m.loaded = true
		m.err = msg.err
		cmd := m.list.SetItems(products.Items(msg.products))
		return m, cmd

	case removedMsg:
		if msg.err != nil {
			return m, tea.Batch(ui.Error(msg.err), m.fetch())
		}
		return m, tea.Batch(ui.Status("Removed %s from your wishlist", msg.name), m.fetch())

	case movedToCartMsg:
		if msg.err != nil {
			return m, ui.Error(msg.err)
		}
		return m, ui.Status("Added %s to your cart", msg.name)

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
		m.loading = true
		return m, m.fetch()
	}

	item, ok := m.list.SelectedItem().(products.Item)
	if ok {
		switch {
		case key.Matches(msg, k.Select):
			return m, ui.OpenProduct(item.Product.ID)
		case key.Matches(msg, k.Remove):
			return m, m.remove(item.Product)
		case key.Matches(msg, k.AddToCart):
			if notice := model.ValidateQuantity(item.Product, 1); notice != "" {
				return m, func() tea.Msg { return ui.StatusMsg{Text: notice, IsError: true} }
			}
			return m, m.addToCart(item.Product)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) fetch() tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	return func() tea.Msg {
		list, err := client.Wishlist(context.Background(), token)
		return wishlistLoadedMsg{products: list, err: err}
	}
}

func (m Model) remove(p model.Product) tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	return func() tea.Msg {
		err := client.RemoveFromWishlist(context.Background(), p.ID, token)
		return removedMsg{name: p.Name, err: err}
	}
}

func (m Model) addToCart(p model.Product) tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	return func() tea.Msg {
		err := client.AddToCart(context.Background(), p.ID, 1, token)
		return movedToCartMsg{name: p.Name, err: err}
	}
}

// View renders the wishlist.
func (m Model) View() string {
	s := m.ctx.Styles

	lines := []string{s.Title.MarginBottom(1).Render("Wishlist")}
	switch {
	case m.loading && !m.loaded:
		lines = append(lines, s.Muted.Render("Loading wishlist..."))
	case m.err != nil:
		lines = append(lines, s.Error.Render(api.UserMessage(m.err)))
	case len(m.list.Items()) == 0:
		lines = append(lines, s.Muted.Italic(true).Render("Nothing saved yet. Press w on a product to save it."))
	default:
		lines = append(lines, m.list.View())
	}
	lines = append(lines, s.Help.Render("enter open | a add to cart | d remove | r refresh | esc back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-4, height-6)
}
