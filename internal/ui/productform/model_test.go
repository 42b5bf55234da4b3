package productform

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/testutil"
	"github.com/nhle/marketplace/internal/ui"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func photo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lamp.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))
	return path
}

func validInput(t *testing.T) Input {
	return Input{
		CategoryID: 1,
		Name:       "Lamp",
		Details:    "Desk lamp",
		Price:      "19.50",
		Stock:      "3",
		Photos:     photo(t),
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*Input)
		wantErr string
	}{
		{name: "valid"},
		{name: "blank name", edit: func(in *Input) { in.Name = "  " }, wantErr: "Name is required"},
		{name: "blank details", edit: func(in *Input) { in.Details = "" }, wantErr: "Details is required"},
		{name: "price not a number", edit: func(in *Input) { in.Price = "abc" }, wantErr: "Price must be a number"},
		{name: "negative price", edit: func(in *Input) { in.Price = "-1" }, wantErr: "Price must be at least 0"},
		{name: "fractional stock", edit: func(in *Input) { in.Stock = "1.5" }, wantErr: "Stock must be a whole number"},
		{name: "negative stock", edit: func(in *Input) { in.Stock = "-2" }, wantErr: "Stock must be at least 0"},
		{name: "no photos", edit: func(in *Input) { in.Photos = "" }, wantErr: ui.ErrNoPhotos.Error()},
		{
			name:    "new category without name",
			edit:    func(in *Input) { in.CategoryID = newCategory },
			wantErr: "Category name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(t)
			if tt.edit != nil {
				tt.edit(&in)
			}
			d, err := Parse(in, true)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.ProductRequest{
				CategoryID: 1, Name: "Lamp", Details: "Desk lamp", Price: 19.5, StockCount: 3,
			}, d.Request)
			assert.Len(t, d.Photos, 1)
		})
	}
}

func TestParse_EditSkipsPhotos(t *testing.T) {
	in := validInput(t)
	in.Photos = ""

	d, err := Parse(in, false)
	require.NoError(t, err)
	assert.Empty(t, d.Photos)
}

func TestParse_ZeroPriceAndStockAllowed(t *testing.T) {
	in := validInput(t)
	in.Price, in.Stock = "0", "0"

	d, err := Parse(in, true)
	require.NoError(t, err)
	assert.Zero(t, d.Request.Price)
	assert.Zero(t, d.Request.StockCount)
}

func newForm(t *testing.T) (Model, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	ctx := testutil.NewUIContext(t, backend.URL)
	testutil.LoginAs(t, ctx, model.RoleMerchant)
	return New(ctx, 100, 30), backend
}

// feed delivers the single message cmd produces and returns the
// messages of the follow-up command. Form init commands are not run.
func feed(t *testing.T, m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	t.Helper()
	msgs := testutil.Collect(cmd)
	require.Len(t, msgs, 1)
	m, next := m.Update(msgs[0])
	if _, loaded := msgs[0].(formLoadedMsg); loaded {
		return m, nil
	}
	return m, testutil.Collect(next)
}

func TestSave_CreatesCategoryThenProduct(t *testing.T) {
	m, backend := newForm(t)
	cmd := m.StartCreate()
	m, _ = feed(t, m, cmd)
	require.NotNil(t, m.form)

	in := validInput(t)
	in.CategoryID = newCategory
	in.NewCategory = "Lighting"
	d, err := Parse(in, true)
	require.NoError(t, err)

	_, msgs := feed(t, m, m.save(d))

	var nav ui.NavigateMsg
	for _, msg := range msgs {
		if n, ok := msg.(ui.NavigateMsg); ok {
			nav = n
		}
	}
	assert.Equal(t, ui.RouteMerchantProducts, nav.Route)

	reqs := backend.Requests()
	assert.Contains(t, reqs, "POST /categories")
	assert.Contains(t, reqs, "POST /products")
}

func TestStartEdit_PrefillsAndUpdates(t *testing.T) {
	m, backend := newForm(t)
	id := backend.AddProduct("Lamp", 10, 3)

	cmd := m.StartEdit(id)
	m, _ = feed(t, m, cmd)

	assert.Equal(t, "Lamp", m.fb.in.Name)
	assert.Equal(t, "10", m.fb.in.Price)
	assert.Equal(t, "3", m.fb.in.Stock)
	assert.Contains(t, m.View(), "Edit product")

	in := m.fb.in
	in.Price = "12.25"
	d, err := Parse(in, false)
	require.NoError(t, err)
	_, _ = feed(t, m, m.save(d))

	p, _ := backend.Product(id)
	assert.InDelta(t, 12.25, p.Price, 0.001)
	assert.Contains(t, backend.Requests(), fmt.Sprintf("PUT /products/%d", id))
}

func TestEsc_GoesBack(t *testing.T) {
	m, _ := newForm(t)
	cmd := m.StartCreate()
	m, _ = feed(t, m, cmd)

	_, cmd = m.Update(testutil.Key("esc"))

	assert.Equal(t, []tea.Msg{ui.BackMsg{}}, testutil.Collect(cmd))
}
