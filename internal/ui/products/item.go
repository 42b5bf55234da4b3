package products

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/ui"
)

// Item wraps a model.Product so it can be used in a bubbles/list.
type Item struct {
	Product model.Product
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Product.Name }

// Items converts products into list items.
func Items(products []model.Product) []list.Item {
	items := make([]list.Item, len(products))
	for i, p := range products {
		items[i] = Item{Product: p}
	}
	return items
}

// Delegate implements list.ItemDelegate for product rows.
type Delegate struct {
	ctx *ui.Context
	// now is the reference time for the NEW badge.
	now func() time.Time
	// ShowMerchant adds the seller's company name to each row.
	ShowMerchant bool
}

// NewDelegate creates a product row renderer.
func NewDelegate(ctx *ui.Context, showMerchant bool) Delegate {
	return Delegate{ctx: ctx, now: time.Now, ShowMerchant: showMerchant}
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single product line.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, d.line(it.Product, index == m.Index()))
}

func (d Delegate) line(p model.Product, selected bool) string {
	s := d.ctx.Styles

	parts := []string{
		ui.Truncate(p.Name, 40),
		s.Price.Render(ui.FormatPrice(p.Price)),
		s.Stock(p.StockCount).Render(stockLabel(p.StockCount)),
	}
	if p.CategoryName != "" {
		parts = append(parts, s.Muted.Render(p.CategoryName))
	}
	if d.ShowMerchant && p.MerchantCompanyName != "" {
		parts = append(parts, s.Muted.Render("by "+p.MerchantCompanyName))
	}
	if p.IsNew(d.now()) {
		parts = append(parts, s.Badge.Render("NEW"))
	}

	line := strings.Join(parts, "  ")
	if selected {
		return s.SelectedItem.Render(line)
	}
	return s.ListItem.Render(line)
}

func stockLabel(count int) string {
	if count <= 0 {
		return "out of stock"
	}
	return fmt.Sprintf("%d in stock", count)
}
