package model

import (
	"sort"
	"strings"
	"time"
)

// NewProductWindow is how long after creation a product carries the NEW badge.
const NewProductWindow = 24 * time.Hour

// Product is a catalog entry as returned by the products endpoints.
type Product struct {
	ID                  int64    `json:"id"`
	Name                string   `json:"name"`
	Details             string   `json:"details"`
	Price               float64  `json:"price"`
	StockCount          int      `json:"stockCount"`
	MerchantID          int64    `json:"merchantId"`
	MerchantCompanyName string   `json:"merchantCompanyName"`
	CategoryID          int64    `json:"categoryId"`
	CategoryName        string   `json:"categoryName"`
	PhotoURLs           []string `json:"photoUrls"`
	PhotoIDs            []int64  `json:"photoIds"`
	CreatedAt           string   `json:"createdAt"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.StockCount > 0
}

// IsNew reports whether the product was created within NewProductWindow of now.
func (p Product) IsNew(now time.Time) bool {
	created, ok := ParseTimestamp(p.CreatedAt)
	if !ok {
		return false
	}
	return now.Sub(created) <= NewProductWindow
}

// Category groups products.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductRequest is the JSON body for product updates.
type ProductRequest struct {
	CategoryID int64   `json:"categoryId"`
	Name       string  `json:"name"`
	Details    string  `json:"details"`
	Price      float64 `json:"price"`
	StockCount int     `json:"stockCount"`
}

// ProductPage is the paginated envelope of the products listing.
type ProductPage struct {
	Content       []Product `json:"content"`
	Number        int       `json:"number"`
	Size          int       `json:"size"`
	TotalElements int       `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Last          bool      `json:"last"`
}

// ProductSort selects the ordering applied by FilterProducts.
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "priceAsc"
	SortPriceDesc ProductSort = "priceDesc"
	SortStock     ProductSort = "stock"
)

// ProductSorts lists the sort modes in the order the UI cycles through them.
var ProductSorts = []ProductSort{SortNewest, SortPriceAsc, SortPriceDesc, SortStock}

// ProductFilter holds the ephemeral browse controls of the catalog view.
type ProductFilter struct {
	Query      string
	CategoryID int64
	Sort       ProductSort
}

// FilterProducts returns a new slice with the filter applied. The input
// is not modified.
func FilterProducts(products []Product, f ProductFilter) []Product {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Details), q) &&
			!strings.Contains(strings.ToLower(p.CategoryName), q) {
			continue
		}
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortStock:
		sort.SliceStable(out, func(i, j int) bool { return out[i].StockCount > out[j].StockCount })
	default:
		sortNewest(out)
	}
	return out
}

// sortNewest orders by createdAt descending, or by id descending when no
// product carries a timestamp.
func sortNewest(products []Product) {
	hasCreatedAt := false
	for _, p := range products {
		if p.CreatedAt != "" {
			hasCreatedAt = true
			break
		}
	}

	if !hasCreatedAt {
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ID > products[j].ID
		})
		return
	}

	key := func(p Product) int64 {
		t, ok := ParseTimestamp(p.CreatedAt)
		if !ok {
			return 0
		}
		return t.UnixMilli()
	}
	sort.SliceStable(products, func(i, j int) bool {
		return key(products[i]) > key(products[j])
	})
}

// ValidateQuantity checks a requested cart quantity against stock. It
// returns a user-facing message, or "" when the quantity is acceptable.
func ValidateQuantity(p Product, quantity int) string {
	switch {
	case p.StockCount <= 0:
		return "Out of stock."
	case quantity < 1:
		return "Quantity must be at least 1."
	case quantity > p.StockCount:
		return "Not enough stock for that quantity."
	default:
		return ""
	}
}

// ProductPhoto is returned by the photo upload endpoint.
type ProductPhoto struct {
	ID       int64  `json:"id"`
	PhotoURL string `json:"photoUrl"`
}
