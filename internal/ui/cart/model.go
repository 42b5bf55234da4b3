package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/ui"
)

// CheckedOutMsg is emitted after the server turned the cart into orders.
type CheckedOutMsg struct {
	Orders []model.Order
}

type cartMode int

const (
	modeList cartMode = iota
	modeConfirmCheckout
)

type cartLoadedMsg struct {
	items []model.CartItem
	err   error
}

type itemRemovedMsg struct{ err error }

type checkoutResultMsg struct {
	orders []model.Order
	err    error
}

type formBindings struct {
	confirm bool
}

// Model is the customer's cart.
type Model struct {
	ctx         *ui.Context
	mode        cartMode
	items       []model.CartItem
	selectedIdx int
	confirmForm *huh.Form
	fb          *formBindings
	loading     bool
	busy        bool
	err         error
	width       int
	height      int
}

// New creates the cart view.
func New(ctx *ui.Context, width, height int) Model {
	return Model{
		ctx:    ctx,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Load fetches the cart.
func (m *Model) Load() tea.Cmd {
	m.mode = modeList
	m.loading = true
	return m.loadCart()
}

// Update handles messages for the cart view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cartLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.items = msg.items
		m.selectedIdx = ui.Clamp(m.selectedIdx, len(m.items))
		return m, nil

	case itemRemovedMsg:
		m.busy = false
		if msg.err != nil {
			return m, tea.Batch(ui.Error(msg.err), m.loadCart())
		}
		return m, tea.Batch(ui.Status("Removed from cart"), m.loadCart())

	case checkoutResultMsg:
		m.busy = false
		if msg.err != nil {
			return m, tea.Batch(ui.Error(msg.err), m.loadCart())
		}
		orders := msg.orders
		return m, tea.Batch(
			ui.Status("Placed %d order(s)", len(orders)),
			m.loadCart(),
			func() tea.Msg { return CheckedOutMsg{Orders: orders} },
		)

	case tea.KeyMsg:
		if m.mode == modeConfirmCheckout {
			return m.updateConfirm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.mode == modeConfirmCheckout {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.ctx.Keys

	switch {
	case key.Matches(msg, k.Back):
		return m, ui.Back()

	case key.Matches(msg, k.Down):
		m.selectedIdx = ui.Step(m.selectedIdx, 1, len(m.items))

	case key.Matches(msg, k.Up):
		m.selectedIdx = ui.Step(m.selectedIdx, -1, len(m.items))

	case key.Matches(msg, k.Refresh):
		m.loading = true
		return m, m.loadCart()

	case key.Matches(msg, k.Select):
		if it, ok := m.selected(); ok {
			return m, ui.OpenProduct(it.ProductID)
		}

	case key.Matches(msg, k.Remove):
		if it, ok := m.selected(); ok && !m.busy {
			m.busy = true
			return m, m.removeItem(it.ItemID)
		}

	case key.Matches(msg, k.Checkout):
		if len(m.items) == 0 || m.busy {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmCheckout
		return m, m.confirmForm.Init()
	}

	return m, nil
}

func (m Model) selected() (model.CartItem, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.items) {
		return model.CartItem{}, false
	}
	return m.items[m.selectedIdx], true
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Place orders for %s?", ui.FormatPrice(model.CartTotal(m.items)))).
				Description("One order is created per cart line.").
				Affirmative("Yes, checkout").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeList
		return m, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		m.mode = modeList
		return m, nil
	}

	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.mode = modeList
		if m.fb.confirm {
			m.busy = true
			return m, m.checkout()
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) loadCart() tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	return func() tea.Msg {
		items, err := client.Cart(context.Background(), token)
		return cartLoadedMsg{items: items, err: err}
	}
}

func (m Model) removeItem(itemID int64) tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	return func() tea.Msg {
		return itemRemovedMsg{err: client.RemoveCartItem(context.Background(), itemID, token)}
	}
}

func (m Model) checkout() tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	return func() tea.Msg {
		orders, err := client.Checkout(context.Background(), token)
		return checkoutResultMsg{orders: orders, err: err}
	}
}

// View renders the cart.
func (m Model) View() string {
	if m.mode == modeConfirmCheckout && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	s := m.ctx.Styles
	var b strings.Builder

	b.WriteString(s.Title.MarginBottom(1).Render("Cart"))
	b.WriteString("\n\n")

	switch {
	case m.loading && m.items == nil:
		b.WriteString(s.Muted.Render("Loading cart..."))
	case m.err != nil:
		b.WriteString(s.Error.Render(api.UserMessage(m.err)))
	case len(m.items) == 0:
		b.WriteString(s.Muted.Italic(true).Render("Your cart is empty."))
	default:
		for i, it := range m.items {
			label := fmt.Sprintf(
				"%-32s %3d × %-10s %s",
				ui.Truncate(it.ProductName, 32),
				it.Count,
				ui.FormatPrice(it.PricePerUnit),
				s.Price.Render(ui.FormatPrice(it.TotalPrice)),
			)
			if i == m.selectedIdx {
				b.WriteString(s.SelectedItem.Render(label))
			} else {
				b.WriteString(s.ListItem.Render(label))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(s.Title.Render("Total: ") + s.Price.Render(ui.FormatPrice(model.CartTotal(m.items))))
	}

	if m.busy {
		b.WriteString("\n\n")
		b.WriteString(s.Muted.Render("working..."))
	}

	b.WriteString("\n\n")
	b.WriteString(s.Help.Render("enter open | d remove | o checkout | r refresh | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Editing reports whether the checkout confirmation has focus.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
