package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderIDs(orders []Order) []int64 {
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
	}
	return ids
}

func TestSplitOrders_CustomerSections(t *testing.T) {
	orders := []Order{
		{OrderID: 1, Status: OrderCreated, CreatedAt: "2025-01-01T10:00:00"},
		{OrderID: 2, Status: OrderDelivered, CreatedAt: "2025-01-02T10:00:00"},
		{OrderID: 3, Status: OrderRejectByCustomer, CreatedAt: "2025-01-03T10:00:00"},
		{OrderID: 4, Status: OrderAccepted, CreatedAt: "2025-01-04T10:00:00"},
	}

	s := SplitOrders(orders, "", OrderSortNewest, CustomerCompleted)

	assert.Equal(t, []int64{4, 1}, orderIDs(s.Active))
	assert.Equal(t, []int64{3, 2}, orderIDs(s.History))
}

func TestSplitOrders_MerchantRejectMovesToHistory(t *testing.T) {
	before := []Order{{OrderID: 7, Status: OrderCreated}}
	s := SplitOrders(before, "", OrderSortNewest, MerchantCompleted)
	require.Len(t, s.Active, 1)
	assert.Empty(t, s.History)

	after := []Order{{
		OrderID:      7,
		Status:       OrderRejectByMerchant,
		RejectReason: "out of stock",
	}}
	s = SplitOrders(after, "", OrderSortNewest, MerchantCompleted)
	assert.Empty(t, s.Active)
	require.Len(t, s.History, 1)
	assert.Equal(t, "out of stock", s.History[0].RejectReason)
}

func TestSplitOrders_MerchantKeepsCustomerCancelActive(t *testing.T) {
	orders := []Order{{OrderID: 1, Status: OrderRejectByCustomer}}

	s := SplitOrders(orders, "", OrderSortNewest, MerchantCompleted)

	assert.Len(t, s.Active, 1)
	assert.Empty(t, s.History)
}

func TestSplitOrders_FilterAndSort(t *testing.T) {
	orders := []Order{
		{OrderID: 1, Status: OrderCreated, TotalAmount: 30, CreatedAt: "2025-01-01T10:00:00"},
		{OrderID: 2, Status: OrderCreated, TotalAmount: 10, CreatedAt: "2025-01-03T10:00:00"},
		{OrderID: 3, Status: OrderAccepted, TotalAmount: 20, CreatedAt: "2025-01-02T10:00:00"},
	}

	tests := []struct {
		name   string
		status OrderStatus
		sort   OrderSort
		want   []int64
	}{
		{"newest", "", OrderSortNewest, []int64{2, 3, 1}},
		{"oldest", "", OrderSortOldest, []int64{1, 3, 2}},
		{"amount desc", "", OrderSortAmountDesc, []int64{1, 3, 2}},
		{"amount asc", "", OrderSortAmountAsc, []int64{2, 3, 1}},
		{"created only", OrderCreated, OrderSortNewest, []int64{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SplitOrders(orders, tt.status, tt.sort, CustomerCompleted)
			assert.Equal(t, tt.want, orderIDs(s.Active))
		})
	}
}

func TestOrderCancellable(t *testing.T) {
	assert.True(t, Order{Status: OrderCreated}.Cancellable())
	assert.True(t, Order{Status: OrderPaidFromBalance}.Cancellable())
	assert.False(t, Order{Status: OrderDelivered}.Cancellable())
	assert.False(t, Order{Status: OrderRejectByMerchant}.Cancellable())
}

func TestCartTotal(t *testing.T) {
	items := []CartItem{
		{Count: 2, PricePerUnit: 5, TotalPrice: 10},
		{Count: 1, PricePerUnit: 2.5, TotalPrice: 2.5},
	}
	assert.InDelta(t, 12.5, CartTotal(items), 1e-9)
	assert.Zero(t, CartTotal(nil))
}
