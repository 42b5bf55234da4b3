package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func productIDs(products []Product) []int64 {
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func sampleProducts() []Product {
	return []Product{
		{ID: 1, Name: "Red Mug", Details: "ceramic", CategoryID: 1, CategoryName: "Kitchen", Price: 8, StockCount: 3, CreatedAt: "2025-03-01T09:00:00"},
		{ID: 2, Name: "Desk Lamp", Details: "LED", CategoryID: 2, CategoryName: "Office", Price: 25, StockCount: 10, CreatedAt: "2025-03-03T09:00:00"},
		{ID: 3, Name: "Notebook", Details: "red cover", CategoryID: 2, CategoryName: "Office", Price: 4, StockCount: 0, CreatedAt: "2025-03-02T09:00:00"},
	}
}

func TestFilterProducts_Query(t *testing.T) {
	got := FilterProducts(sampleProducts(), ProductFilter{Query: "  RED "})
	assert.ElementsMatch(t, []int64{1, 3}, productIDs(got))

	got = FilterProducts(sampleProducts(), ProductFilter{Query: "office"})
	assert.ElementsMatch(t, []int64{2, 3}, productIDs(got))
}

func TestFilterProducts_Category(t *testing.T) {
	got := FilterProducts(sampleProducts(), ProductFilter{CategoryID: 1})
	assert.Equal(t, []int64{1}, productIDs(got))
}

func TestFilterProducts_Sorts(t *testing.T) {
	tests := []struct {
		sort ProductSort
		want []int64
	}{
		{SortNewest, []int64{2, 3, 1}},
		{SortPriceAsc, []int64{3, 1, 2}},
		{SortPriceDesc, []int64{2, 1, 3}},
		{SortStock, []int64{2, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			got := FilterProducts(sampleProducts(), ProductFilter{Sort: tt.sort})
			assert.Equal(t, tt.want, productIDs(got))
		})
	}
}

func TestFilterProducts_NewestFallsBackToID(t *testing.T) {
	products := []Product{{ID: 1}, {ID: 3}, {ID: 2}}
	got := FilterProducts(products, ProductFilter{})
	assert.Equal(t, []int64{3, 2, 1}, productIDs(got))
}

func TestFilterProducts_DoesNotMutateInput(t *testing.T) {
	in := sampleProducts()
	_ = FilterProducts(in, ProductFilter{Sort: SortPriceAsc})
	assert.Equal(t, []int64{1, 2, 3}, productIDs(in))
}

func TestProductIsNew(t *testing.T) {
	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.Local)

	assert.True(t, Product{CreatedAt: "2025-03-03T09:00:00"}.IsNew(now))
	assert.True(t, Product{CreatedAt: "2025-03-02 13:00:00"}.IsNew(now))
	assert.False(t, Product{CreatedAt: "2025-03-01T09:00:00"}.IsNew(now))
	assert.False(t, Product{CreatedAt: "garbage"}.IsNew(now))
}

func TestValidateQuantity(t *testing.T) {
	p := Product{StockCount: 3}

	assert.Empty(t, ValidateQuantity(p, 2))
	assert.Empty(t, ValidateQuantity(p, 3))
	assert.Equal(t, "Quantity must be at least 1.", ValidateQuantity(p, 0))
	assert.Equal(t, "Not enough stock for that quantity.", ValidateQuantity(p, 4))
	assert.Equal(t, "Out of stock.", ValidateQuantity(Product{}, 1))
}
