package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/ui"
)

// pageLoadedMsg carries one page of the catalog.
type pageLoadedMsg struct {
	page *model.ProductPage
	err  error
}

// categoriesLoadedMsg carries the category list for the filter.
type categoriesLoadedMsg struct {
	categories []model.Category
	err        error
}

// serverSorts maps a client sort mode to the server's sort parameter.
var serverSorts = map[model.ProductSort]string{
	model.SortNewest:    api.DefaultProductSort,
	model.SortPriceAsc:  "price,ASC",
	model.SortPriceDesc: "price,DESC",
	model.SortStock:     "stockCount,DESC",
}

// Model is the paged product catalog.
type Model struct {
	ctx         *ui.Context
	list        list.Model
	spinner     spinner.Model
	searchInput textinput.Model
	searchMode  bool

	categories  []model.Category
	categoryIdx int // 0 means all categories
	sortIdx     int
	query       string

	page    *model.ProductPage
	pageNum int
	loading bool
	err     error

	width  int
	height int
}

// New creates the catalog view.
func New(ctx *ui.Context, width, height int) Model {
	l := list.New([]list.Item{}, NewDelegate(ctx, true), width, height-4)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	si := textinput.New()
	si.Placeholder = "search products..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		ctx:         ctx,
		list:        l,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Load fetches the categories and the current page.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.loadCategories(), m.loadPage())
}

// Update handles messages for the catalog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.page = nil
			m.list.SetItems(nil)
			return m, ui.Error(msg.err)
		}
		m.page = msg.page
		cmd := m.list.SetItems(Items(m.visible()))
		return m, cmd

	case categoriesLoadedMsg:
		if msg.err == nil {
			m.categories = msg.categories
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		m.pageNum = 0
		cmd := m.reload()
		return m, cmd

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		if m.query == "" {
			return m, nil
		}
		m.query = ""
		m.pageNum = 0
		cmd := m.reload()
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.ctx.Keys

	switch {
	case key.Matches(msg, k.Select):
		item, ok := m.list.SelectedItem().(Item)
		if !ok {
			return m, nil
		}
		return m, ui.OpenProduct(item.Product.ID)

	case key.Matches(msg, k.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.query)
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, k.CycleSort):
		m.sortIdx = (m.sortIdx + 1) % len(model.ProductSorts)
		m.pageNum = 0
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, k.CycleCategory):
		m.categoryIdx = (m.categoryIdx + 1) % (len(m.categories) + 1)
		m.pageNum = 0
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, k.NextPage):
		if m.page == nil || m.page.Last || m.loading {
			return m, nil
		}
		m.pageNum++
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, k.PrevPage):
		if m.pageNum == 0 || m.loading {
			return m, nil
		}
		m.pageNum--
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, k.Refresh):
		cmd := m.reload()
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// reload marks the view as loading and fetches the current page.
func (m *Model) reload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.loadPage())
}

// filter returns the client-side filter matching the current controls.
func (m Model) filter() model.ProductFilter {
	return model.ProductFilter{
		Query:      m.query,
		CategoryID: m.categoryID(),
		Sort:       model.ProductSorts[m.sortIdx],
	}
}

// visible applies the client-side filter to the loaded page. The server
// already filtered the page, but not every deployment honors the search
// and category parameters.
func (m Model) visible() []model.Product {
	if m.page == nil {
		return nil
	}
	return model.FilterProducts(m.page.Content, m.filter())
}

func (m Model) categoryID() int64 {
	if m.categoryIdx == 0 || m.categoryIdx > len(m.categories) {
		return 0
	}
	return m.categories[m.categoryIdx-1].ID
}

func (m Model) categoryName() string {
	if m.categoryIdx == 0 || m.categoryIdx > len(m.categories) {
		return "all"
	}
	return m.categories[m.categoryIdx-1].Name
}

func (m Model) loadPage() tea.Cmd {
	client := m.ctx.API
	q := api.PageQuery{
		Page:       m.pageNum,
		Size:       m.ctx.PageSize,
		Search:     m.query,
		CategoryID: m.categoryID(),
		Sort:       serverSorts[model.ProductSorts[m.sortIdx]],
	}
	return func() tea.Msg {
		page, err := client.ProductsPaged(context.Background(), q)
		return pageLoadedMsg{page: page, err: err}
	}
}

func (m Model) loadCategories() tea.Cmd {
	client := m.ctx.API
	return func() tea.Msg {
		cats, err := client.Categories(context.Background())
		return categoriesLoadedMsg{categories: cats, err: err}
	}
}

// View renders the catalog.
func (m Model) View() string {
	s := m.ctx.Styles

	summary := fmt.Sprintf(
		"category: %s · sort: %s",
		m.categoryName(),
		model.ProductSorts[m.sortIdx],
	)
	if m.query != "" {
		summary += fmt.Sprintf(" · search: %q", m.query)
	}

	lines := []string{
		s.Title.Render("Products") + "  " + s.Muted.Render(summary),
	}

	if m.searchMode {
		lines = append(lines, m.searchInput.View())
	}

	switch {
	case m.loading && m.page == nil:
		lines = append(lines, m.spinner.View()+" Loading products...")
	case m.err != nil:
		lines = append(lines, s.Error.Render(api.UserMessage(m.err)))
	case len(m.list.Items()) == 0:
		lines = append(lines, s.Muted.Render("No products found."))
	default:
		lines = append(lines, m.list.View())
	}

	lines = append(lines, m.pager())

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) pager() string {
	s := m.ctx.Styles
	if m.page == nil {
		return ""
	}

	text := fmt.Sprintf("page %d", m.pageNum+1)
	if m.page.TotalPages > 0 {
		text = fmt.Sprintf("page %d of %d", m.pageNum+1, m.page.TotalPages)
	}
	if m.loading {
		text += " " + m.spinner.View()
	}
	return s.Muted.Render(text)
}

// SetSize updates the catalog dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-2, height-4)
	m.searchInput.Width = width - 6
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}
