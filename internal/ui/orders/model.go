package orders

import (
	"context"
	"errors"
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

// ErrReasonRequired is returned when a cancellation or rejection has no
// reason.
var ErrReasonRequired = errors.New("a reason is required")

type ordersMode int

const (
	modeList ordersMode = iota
	modeCancel
	modeStatus
)

type ordersLoadedMsg struct {
	orders []model.Order
	err    error
}

type orderChangedMsg struct {
	order *model.Order
	id    int64
	err   error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	reason string
	status model.OrderStatus
}

// CancelRequest builds the body of a customer cancellation.
func CancelRequest(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", ErrReasonRequired
	}
	return reason, nil
}

// StatusRequest builds the body of a merchant status change. The reason
// is only sent for REJECT_BY_MERCHANT, where it is mandatory.
func StatusRequest(status model.OrderStatus, reason string) (model.UpdateOrderStatusRequest, error) {
	req := model.UpdateOrderStatusRequest{Status: status}
	if status != model.OrderRejectByMerchant {
		return req, nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return req, ErrReasonRequired
	}
	req.RejectReason = reason
	return req, nil
}

// Model lists orders. In customer mode it shows the user's purchases and
// allows cancellation; in merchant mode it shows incoming orders and
// allows status changes.
type Model struct {
	ctx      *ui.Context
	merchant bool
	mode     ordersMode
	form     *huh.Form
	fb       *formBindings
	target   model.Order

	orders      []model.Order
	sections    model.OrderSections
	showHistory bool
	filterIdx   int // 0 means every status
	sortIdx     int
	selectedIdx int

	loading bool
	busy    bool
	err     error
	width   int
	height  int
}

// New creates an orders view. merchant selects the incoming-orders mode.
func New(ctx *ui.Context, merchant bool, width, height int) Model {
	return Model{
		ctx:      ctx,
		merchant: merchant,
		fb:       &formBindings{},
		width:    width,
		height:   height,
	}
}

// Load fetches the orders.
func (m *Model) Load() tea.Cmd {
	m.mode = modeList
	m.loading = true
	return m.fetch()
}

func (m Model) completed() func(model.OrderStatus) bool {
	if m.merchant {
		return model.MerchantCompleted
	}
	return model.CustomerCompleted
}

func (m Model) statusFilter() model.OrderStatus {
	if m.filterIdx == 0 || m.filterIdx > len(model.CustomerStatusFilters) {
		return ""
	}
	return model.CustomerStatusFilters[m.filterIdx-1]
}

// regroup recomputes the Active/History sections from the loaded orders.
func (m *Model) regroup() {
	m.sections = model.SplitOrders(
		m.orders,
		m.statusFilter(),
		model.OrderSorts[m.sortIdx],
		m.completed(),
	)
	m.selectedIdx = ui.Clamp(m.selectedIdx, len(m.current()))
}

func (m Model) current() []model.Order {
	if m.showHistory {
		return m.sections.History
	}
	return m.sections.Active
}

func (m Model) selected() (model.Order, bool) {
	list := m.current()
	if m.selectedIdx < 0 || m.selectedIdx >= len(list) {
		return model.Order{}, false
	}
	return list[m.selectedIdx], true
}

// Update handles messages for the orders view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ordersLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.orders = msg.orders
		m.regroup()
		return m, nil

	case orderChangedMsg:
		m.busy = false
		if msg.err != nil {
			return m, tea.Batch(ui.Error(msg.err), m.fetch())
		}
		text := fmt.Sprintf("Order #%d updated", msg.id)
		if msg.order != nil {
			text = fmt.Sprintf("Order #%d is now %s", msg.id, msg.order.Status.Label())
		}
		return m, tea.Batch(ui.Status("%s", text), m.fetch())

	case tea.KeyMsg:
		if m.mode != modeList {
			return m.updateForm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.mode != modeList {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.ctx.Keys

	switch {
	case key.Matches(msg, k.Back):
		return m, ui.Back()

	case key.Matches(msg, k.Down):
		m.selectedIdx = ui.Step(m.selectedIdx, 1, len(m.current()))

	case key.Matches(msg, k.Up):
		m.selectedIdx = ui.Step(m.selectedIdx, -1, len(m.current()))

	case key.Matches(msg, k.Refresh):
		m.loading = true
		return m, m.fetch()

	case key.Matches(msg, k.ToggleHistory):
		m.showHistory = !m.showHistory
		m.selectedIdx = 0

	case key.Matches(msg, k.CycleFilter):
		m.filterIdx = (m.filterIdx + 1) % (len(model.CustomerStatusFilters) + 1)
		m.selectedIdx = 0
		m.regroup()

	case key.Matches(msg, k.CycleSort):
		m.sortIdx = (m.sortIdx + 1) % len(model.OrderSorts)
		m.regroup()

	case key.Matches(msg, k.Select):
		if o, ok := m.selected(); ok {
			return m, ui.OpenProduct(o.ProductID)
		}

	case !m.merchant && key.Matches(msg, k.CancelOrder):
		o, ok := m.selected()
		if !ok || !o.Cancellable() || m.busy {
			return m, nil
		}
		m.fb.reason = ""
		m.target = o
		m.form = m.buildCancelForm(o)
		m.mode = modeCancel
		return m, m.form.Init()

	case m.merchant && key.Matches(msg, k.SetStatus):
		o, ok := m.selected()
		if !ok || model.MerchantCompleted(o.Status) || m.busy {
			return m, nil
		}
		m.fb.reason = ""
		m.fb.status = o.Status
		m.target = o
		m.form = m.buildStatusForm(o)
		m.mode = modeStatus
		return m, m.form.Init()
	}

	return m, nil
}

func (m Model) buildCancelForm(o model.Order) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(fmt.Sprintf("Cancel order #%d (%s)?", o.OrderID, o.ProductName)).
				Placeholder("Why are you cancelling?").
				Value(&m.fb.reason).
				Validate(ui.Required("Reason")),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) buildStatusForm(o model.Order) *huh.Form {
	opts := make([]huh.Option[model.OrderStatus], len(model.MerchantStatuses))
	for i, s := range model.MerchantStatuses {
		opts[i] = huh.NewOption(s.Label(), s)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.OrderStatus]().
				Title(fmt.Sprintf("Status of order #%d (%s)", o.OrderID, o.ProductName)).
				Options(opts...).
				Value(&m.fb.status),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Rejection reason").
				Value(&m.fb.reason).
				Validate(ui.Required("Reason")),
		).WithHideFunc(func() bool {
			return m.fb.status != model.OrderRejectByMerchant
		}),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		m.mode = modeList
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		mode := m.mode
		m.mode = modeList
		if mode == modeCancel {
			return m.submitCancel(m.target)
		}
		return m.submitStatus(m.target)
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) submitCancel(o model.Order) (Model, tea.Cmd) {
	reason, err := CancelRequest(m.fb.reason)
	if err != nil {
		return m, ui.Error(err)
	}
	m.busy = true
	client := m.ctx.API
	token := m.ctx.Token()
	return m, func() tea.Msg {
		updated, err := client.CancelOrder(context.Background(), o.OrderID, reason, token)
		return orderChangedMsg{order: updated, id: o.OrderID, err: err}
	}
}

func (m Model) submitStatus(o model.Order) (Model, tea.Cmd) {
	req, err := StatusRequest(m.fb.status, m.fb.reason)
	if err != nil {
		return m, ui.Error(err)
	}
	m.busy = true
	client := m.ctx.API
	token := m.ctx.Token()
	return m, func() tea.Msg {
		updated, err := client.UpdateOrderStatus(context.Background(), o.OrderID, req, token)
		return orderChangedMsg{order: updated, id: o.OrderID, err: err}
	}
}

func (m Model) fetch() tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	merchant := m.merchant
	return func() tea.Msg {
		var (
			list []model.Order
			err  error
		)
		if merchant {
			list, err = client.MerchantOrders(context.Background(), token)
		} else {
			list, err = client.Orders(context.Background(), token)
		}
		return ordersLoadedMsg{orders: list, err: err}
	}
}

// View renders the orders list or the active form.
func (m Model) View() string {
	if m.mode != modeList && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	s := m.ctx.Styles
	var b strings.Builder

	title := "My Orders"
	if m.merchant {
		title = "Incoming Orders"
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("  ")
	b.WriteString(m.tabs())
	b.WriteString("\n")

	filter := "all"
	if f := m.statusFilter(); f != "" {
		filter = f.Label()
	}
	b.WriteString(s.Muted.Render(fmt.Sprintf("status: %s · sort: %s", filter, model.OrderSorts[m.sortIdx])))
	b.WriteString("\n\n")

	list := m.current()
	switch {
	case m.loading && m.orders == nil:
		b.WriteString(s.Muted.Render("Loading orders..."))
	case m.err != nil:
		b.WriteString(s.Error.Render(api.UserMessage(m.err)))
	case len(list) == 0:
		b.WriteString(s.Muted.Italic(true).Render("No orders here."))
	default:
		for i, o := range list {
			b.WriteString(m.row(o, i == m.selectedIdx))
			b.WriteString("\n")
		}
	}

	if m.busy {
		b.WriteString("\n")
		b.WriteString(s.Muted.Render("working..."))
	}

	b.WriteString("\n\n")
	b.WriteString(s.Help.Render(m.hints()))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) tabs() string {
	s := m.ctx.Styles
	active := fmt.Sprintf("Active (%d)", len(m.sections.Active))
	history := fmt.Sprintf("History (%d)", len(m.sections.History))
	if m.showHistory {
		return s.Muted.Render(active) + "  " + s.Unread.Render(history)
	}
	return s.Unread.Render(active) + "  " + s.Muted.Render(history)
}

func (m Model) row(o model.Order, selected bool) string {
	s := m.ctx.Styles

	line := fmt.Sprintf(
		"#%-5d %-28s ×%-3d %-10s %s  %s",
		o.OrderID,
		ui.Truncate(o.ProductName, 28),
		o.Count,
		ui.FormatPrice(o.TotalAmount),
		s.OrderStatus(o.Status).Render(o.Status.Label()),
		s.Muted.Render(ui.FormatTimestamp(o.CreatedAt)),
	)
	if o.RejectReason != "" {
		line += s.Muted.Render("  reason: " + o.RejectReason)
	}

	if selected {
		return s.SelectedItem.Render(line)
	}
	return s.ListItem.Render(line)
}

func (m Model) hints() string {
	if m.merchant {
		return "s set status | h active/history | f filter | tab sort | r refresh | esc back"
	}
	return "x cancel | enter product | h active/history | f filter | tab sort | r refresh | esc back"
}

// Editing reports whether a cancel or status form has focus.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
