package productform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/ui"
)

// newCategory is the category option that creates a category on save.
const newCategory int64 = 0

// Input is the raw text of the product form.
type Input struct {
	CategoryID  int64
	NewCategory string
	Name        string
	Details     string
	Price       string
	Stock       string
	Photos      string
}

// Draft is a validated form ready to be sent.
type Draft struct {
	Request     model.ProductRequest
	NewCategory string
	Photos      []string
}

// fields carries the client-side rules for a product.
type fields struct {
	CategoryID  int64
	NewCategory string  `label:"Category name" validate:"required_if=CategoryID 0"`
	Name        string  `label:"Name" validate:"required"`
	Details     string  `label:"Details" validate:"required"`
	Price       float64 `label:"Price" validate:"gte=0"`
	Stock       int     `label:"Stock" validate:"gte=0"`
}

// Parse validates in. Photos are required and checked only when creating.
func Parse(in Input, creating bool) (Draft, error) {
	priceText := strings.TrimSpace(in.Price)
	if priceText == "" {
		return Draft{}, errors.New("Price is required")
	}
	price, err := strconv.ParseFloat(priceText, 64)
	if err != nil {
		return Draft{}, errors.New("Price must be a number")
	}

	stockText := strings.TrimSpace(in.Stock)
	if stockText == "" {
		return Draft{}, errors.New("Stock is required")
	}
	stock, err := strconv.Atoi(stockText)
	if err != nil {
		return Draft{}, errors.New("Stock must be a whole number")
	}

	f := fields{
		CategoryID:  in.CategoryID,
		NewCategory: strings.TrimSpace(in.NewCategory),
		Name:        strings.TrimSpace(in.Name),
		Details:     strings.TrimSpace(in.Details),
		Price:       price,
		Stock:       stock,
	}
	if err := ui.CheckStruct(f); err != nil {
		return Draft{}, err
	}

	d := Draft{
		Request: model.ProductRequest{
			CategoryID: f.CategoryID,
			Name:       f.Name,
			Details:    f.Details,
			Price:      f.Price,
			StockCount: f.Stock,
		},
	}
	if f.CategoryID == newCategory {
		d.NewCategory = f.NewCategory
	}

	if creating {
		photos, err := ui.CheckPhotos(in.Photos)
		if err != nil {
			return Draft{}, err
		}
		d.Photos = photos
	}
	return d, nil
}

type formLoadedMsg struct {
	product    *model.Product
	categories []model.Category
	err        error
}

type savedMsg struct {
	product *model.Product
	err     error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	in Input
}

// Model creates and edits the merchant's products.
type Model struct {
	ctx        *ui.Context
	form       *huh.Form
	fb         *formBindings
	categories []model.Category
	productID  int64 // 0 when creating
	loading    bool
	pending    bool
	err        error
	width      int
	height     int
}

// New creates the product form view.
func New(ctx *ui.Context, width, height int) Model {
	return Model{
		ctx:    ctx,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate opens an empty form.
func (m *Model) StartCreate() tea.Cmd {
	m.productID = 0
	m.fb.in = Input{}
	return m.load(0)
}

// StartEdit opens the form filled with product id.
func (m *Model) StartEdit(id int64) tea.Cmd {
	m.productID = id
	m.fb.in = Input{}
	return m.load(id)
}

func (m *Model) load(id int64) tea.Cmd {
	m.form = nil
	m.err = nil
	m.pending = false
	m.loading = true

	client := m.ctx.API
	return func() tea.Msg {
		ctx := context.Background()
		cats, err := client.Categories(ctx)
		if err != nil {
			return formLoadedMsg{err: err}
		}
		if id == 0 {
			return formLoadedMsg{categories: cats}
		}
		p, err := client.Product(ctx, id)
		return formLoadedMsg{product: p, categories: cats, err: err}
	}
}

func (m Model) creating() bool {
	return m.productID == 0
}

func (m *Model) buildForm() *huh.Form {
	options := make([]huh.Option[int64], 0, len(m.categories)+1)
	for _, c := range m.categories {
		options = append(options, huh.NewOption(c.Name, c.ID))
	}
	options = append(options, huh.NewOption("+ New category", newCategory))

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Category").
				Options(options...).
				Value(&m.fb.in.CategoryID),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Category name").
				Value(&m.fb.in.NewCategory).
				Validate(ui.Required("Category name")),
		).WithHideFunc(func() bool {
			return m.fb.in.CategoryID != newCategory
		}),
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.in.Name).
				Validate(ui.Required("Name")),
			huh.NewText().
				Title("Details").
				Value(&m.fb.in.Details).
				Validate(ui.Required("Details")),
			huh.NewInput().
				Title("Price").
				Placeholder("0.00").
				Value(&m.fb.in.Price).
				Validate(ui.Required("Price")),
			huh.NewInput().
				Title("Stock").
				Placeholder("0").
				Value(&m.fb.in.Stock).
				Validate(ui.Required("Stock")),
		),
	}

	if m.creating() {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Photos").
				Description("Comma separated image paths").
				Value(&m.fb.in.Photos).
				Validate(func(s string) error {
					_, err := ui.CheckPhotos(s)
					return err
				}),
		))
	}

	return huh.NewForm(groups...).
		WithWidth(ui.FormWidth(m.width)).
		WithHeight(ui.FormHeight(m.height))
}

// Update handles messages for the product form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case formLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.categories = msg.categories
		if p := msg.product; p != nil {
			m.fb.in = Input{
				CategoryID: p.CategoryID,
				Name:       p.Name,
				Details:    p.Details,
				Price:      strconv.FormatFloat(p.Price, 'f', -1, 64),
				Stock:      strconv.Itoa(p.StockCount),
			}
		} else if len(m.categories) > 0 {
			m.fb.in.CategoryID = m.categories[0].ID
		}
		m.form = m.buildForm()
		return m, m.form.Init()

	case savedMsg:
		m.pending = false
		if msg.err != nil {
			m.err = msg.err
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		verb := "Updated"
		if m.creating() {
			verb = "Created"
		}
		return m, tea.Batch(
			ui.Status("%s %s", verb, msg.product.Name),
			ui.Navigate(ui.RouteMerchantProducts),
		)

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, ui.Back()
		}
	}

	if m.form == nil || m.pending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		d, err := Parse(m.fb.in, m.creating())
		if err != nil {
			m.err = err
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		m.err = nil
		m.pending = true
		return m, m.save(d)
	case huh.StateAborted:
		return m, ui.Back()
	}

	return m, cmd
}

func (m Model) save(d Draft) tea.Cmd {
	client := m.ctx.API
	token := m.ctx.Token()
	id := m.productID

	return func() tea.Msg {
		ctx := context.Background()

		if d.NewCategory != "" {
			cat, err := client.CreateCategory(ctx, d.NewCategory, token)
			if err != nil {
				return savedMsg{err: fmt.Errorf("creating category: %w", err)}
			}
			d.Request.CategoryID = cat.ID
		}

		var (
			p   *model.Product
			err error
		)
		if id == 0 {
			p, err = client.CreateProduct(ctx, d.Request, d.Photos, token)
		} else {
			p, err = client.UpdateProduct(ctx, id, d.Request, token)
		}
		return savedMsg{product: p, err: err}
	}
}

// View renders the product form.
func (m Model) View() string {
	s := m.ctx.Styles

	title := "New product"
	if !m.creating() {
		title = "Edit product"
	}

	lines := []string{s.Title.MarginBottom(1).Render(title)}
	if m.err != nil {
		lines = append(lines, s.Error.Render(api.UserMessage(m.err)))
	}
	switch {
	case m.loading:
		lines = append(lines, s.Muted.Render("Loading..."))
	case m.pending:
		lines = append(lines, s.Muted.Render("Saving..."))
	case m.form != nil:
		lines = append(lines, m.form.View())
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(ui.FormWidth(width)).WithHeight(ui.FormHeight(height))
	}
}
