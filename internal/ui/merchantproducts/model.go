package merchantproducts

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/ui"
	"github.com/nhle/marketplace/internal/ui/products"
)

type viewMode int

const (
	modeList viewMode = iota
	modeSearch
	modeUpload
	modeConfirmDelete
)

type inventoryLoadedMsg struct {
	merchantID int64
	company    string
	products   []model.Product
	err        error
}

type deletedMsg struct {
	name string
	err  error
}

type uploadedMsg struct {
	name string
	err  error
}

type formBindings struct {
	confirm bool
}

// Model lists one merchant's products. It is the logged-in merchant's
// inventory when owner is set, and a read-only storefront otherwise.
type Model struct {
	ctx    *ui.Context
	list   list.Model
	input  textinput.Model
	mode   viewMode
	owner  bool
	target model.Product

	confirmForm *huh.Form
	fb          *formBindings

	merchantID int64
	company    string
	all        []model.Product
	query      string
	sortIdx    int
	loading    bool
	busy       bool
	err        error

	width  int
	height int
}

// New creates the merchant products view.
func New(ctx *ui.Context, width, height int) Model {
	l := list.New([]list.Item{}, products.NewDelegate(ctx, false), width, height-4)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	ti := textinput.New()
	ti.Width = width - 6

	return Model{
		ctx:    ctx,
		list:   l,
		input:  ti,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// LoadOwn shows the logged-in merchant's inventory.
func (m *Model) LoadOwn() tea.Cmd {
	m.reset(true, 0)
	return m.fetch()
}

// LoadStore shows the public storefront of merchantID.
func (m *Model) LoadStore(merchantID int64) tea.Cmd {
	m.reset(false, merchantID)
	return m.fetch()
}

func (m *Model) reset(owner bool, merchantID int64) {
	if m.owner != owner || (!owner && m.merchantID != merchantID) {
		m.query = ""
		m.sortIdx = 0
		m.company = ""
		m.all = nil
		m.list.SetItems(nil)
	}
	m.owner = owner
	m.merchantID = merchantID
	m.mode = modeList
	m.loading = true
}

// Update handles messages for the merchant products view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inventoryLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.merchantID = msg.merchantID
		if msg.company != "" {
			m.company = msg.company
		}
		m.all = msg.products
		cmd := m.list.SetItems(products.Items(m.visible()))
		return m, cmd

	case deletedMsg:
		m.busy = false
		if msg.err != nil {
			return m, tea.Batch(ui.Error(msg.err), m.fetch())
		}
		return m, tea.Batch(ui.Status("Deleted %s", msg.name), m.fetch())

	case uploadedMsg:
		m.busy = false
		if msg.err != nil {
			return m, tea.Batch(ui.Error(msg.err), m.fetch())
		}
		return m, tea.Batch(ui.Status("Added a photo to %s", msg.name), m.fetch())

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearchKeys(msg)
		case modeUpload:
			return m.handleUploadKeys(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.handleListKeys(msg)
	}

	if m.mode == modeConfirmDelete {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.query = strings.TrimSpace(m.input.Value())
		cmd := m.list.SetItems(products.Items(m.visible()))
		return m, cmd
	case "esc":
		m.mode = modeList
		m.query = ""
		cmd := m.list.SetItems(products.Items(m.visible()))
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleUploadKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.input.Value())
		if err := ui.CheckPhoto(path); err != nil {
			return m, ui.Error(err)
		}
		m.mode = modeList
		m.busy = true
		return m, m.upload(m.target, path)
	case "esc":
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.ctx.Keys

	switch {
	case key.Matches(msg, k.Back):
		return m, ui.Back()

	case key.Matches(msg, k.Select):
		if p, ok := m.selected(); ok {
			return m, ui.OpenProduct(p.ID)
		}
		return m, nil

	case key.Matches(msg, k.Search):
		m.mode = modeSearch
		m.input.Prompt = "/ "
		m.input.Placeholder = "search products..."
		m.input.SetValue(m.query)
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, k.CycleSort):
		m.sortIdx = (m.sortIdx + 1) % len(model.ProductSorts)
		cmd := m.list.SetItems(products.Items(m.visible()))
		return m, cmd

	case key.Matches(msg, k.Refresh):
		m.loading = true
		return m, m.fetch()
	}

	if !m.owner {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, k.New):
		return m, ui.Navigate(ui.RouteProductNew)

	case key.Matches(msg, k.Edit):
		if p, ok := m.selected(); ok {
			id := p.ID
			return m, func() tea.Msg {
				return ui.NavigateMsg{Route: ui.RouteProductEdit, ProductID: id}
			}
		}
		return m, nil

	case key.Matches(msg, k.Remove):
		p, ok := m.selected()
		if !ok || m.busy {
			return m, nil
		}
		m.target = p
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()

	case key.Matches(msg, k.Upload):
		p, ok := m.selected()
		if !ok || m.busy {
			return m, nil
		}
		m.target = p
		m.mode = modeUpload
		m.input.Prompt = "photo: "
		m.input.Placeholder = "/path/to/image.jpg"
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", m.target.Name)).
				Description("This removes the product from the catalog.").
				Affirmative("Yes, delete").
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
			return m, m.remove(m.target)
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) selected() (model.Product, bool) {
	item, ok := m.list.SelectedItem().(products.Item)
	if !ok {
		return model.Product{}, false
	}
	return item.Product, true
}

// visible returns this merchant's products with the search and sort applied.
func (m Model) visible() []model.Product {
	return model.FilterProducts(m.all, model.ProductFilter{
		Query: m.query,
		Sort:  model.ProductSorts[m.sortIdx],
	})
}

func (m Model) fetch() tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	owner := m.owner
	merchantID := m.merchantID

	return func() tea.Msg {
		ctx := context.Background()
		var company string

		if owner {
			profile, err := client.MerchantProfile(ctx, token)
			if err != nil {
				return inventoryLoadedMsg{err: err}
			}
			merchantID = profile.ID
			company = profile.CompanyName
		}

		all, err := client.Products(ctx)
		if err != nil {
			return inventoryLoadedMsg{merchantID: merchantID, err: err}
		}

		mine := make([]model.Product, 0, len(all))
		for _, p := range all {
			if p.MerchantID == merchantID {
				mine = append(mine, p)
			}
		}
		if company == "" && len(mine) > 0 {
			company = mine[0].MerchantCompanyName
		}

		return inventoryLoadedMsg{merchantID: merchantID, company: company, products: mine}
	}
}

func (m Model) remove(p model.Product) tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	return func() tea.Msg {
		return deletedMsg{name: p.Name, err: client.DeleteProduct(context.Background(), p.ID, token)}
	}
}

func (m Model) upload(p model.Product, path string) tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	return func() tea.Msg {
		_, err := client.UploadProductPhoto(context.Background(), p.ID, path, token)
		return uploadedMsg{name: p.Name, err: err}
	}
}

// Editing reports whether a text input or form has focus.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// View renders the product list.
func (m Model) View() string {
	if m.mode == modeConfirmDelete && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	s := m.ctx.Styles

	title := "My Products"
	help := "enter open | / search | tab sort | n new | e edit | d delete | u add photo | r refresh | esc back"
	if !m.owner {
		title = "Storefront"
		if m.company != "" {
			title = m.company
		}
		help = "enter open | / search | tab sort | r refresh | esc back"
	}

	summary := fmt.Sprintf("%d products · sort: %s", len(m.list.Items()), model.ProductSorts[m.sortIdx])
	if m.query != "" {
		summary += fmt.Sprintf(" · search: %q", m.query)
	}

	lines := []string{s.Title.Render(title) + "  " + s.Muted.Render(summary)}

	switch m.mode {
	case modeSearch:
		lines = append(lines, m.input.View())
	case modeUpload:
		lines = append(lines, s.Muted.Render("Add a photo to "+m.target.Name), m.input.View())
	}

	switch {
	case m.loading && m.all == nil:
		lines = append(lines, s.Muted.Render("Loading products..."))
	case m.err != nil:
		lines = append(lines, s.Error.Render(api.UserMessage(m.err)))
	case len(m.list.Items()) == 0:
		lines = append(lines, s.Muted.Italic(true).Render("No products yet."))
	default:
		lines = append(lines, m.list.View())
	}

	if m.busy {
		lines = append(lines, s.Muted.Render("working..."))
	}
	lines = append(lines, s.Help.Render(help))

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-2, height-4)
	m.input.Width = width - 6
}
