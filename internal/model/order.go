package model

import "sort"

// OrderStatus is the server-side lifecycle state of an order.
type OrderStatus string

const (
	OrderCreated          OrderStatus = "CREATED"
	OrderPaidFromBalance  OrderStatus = "PAID_FROM_BALANCE"
	OrderAccepted         OrderStatus = "ACCEPTED"
	OrderDelivered        OrderStatus = "DELIVERED"
	OrderRejectByCustomer OrderStatus = "REJECT_BY_CUSTOMER"
	OrderRejectByMerchant OrderStatus = "REJECT_BY_MERCHANT"
)

// Label returns the customer-facing label for a status.
func (s OrderStatus) Label() string {
	switch s {
	case OrderCreated:
		return "Created"
	case OrderPaidFromBalance:
		return "Paid from balance"
	case OrderAccepted:
		return "Accepted"
	case OrderDelivered:
		return "Delivered"
	case OrderRejectByCustomer:
		return "Cancelled by you"
	case OrderRejectByMerchant:
		return "Rejected by merchant"
	default:
		return string(s)
	}
}

// MerchantStatuses are the statuses a merchant may set.
var MerchantStatuses = []OrderStatus{
	OrderCreated,
	OrderAccepted,
	OrderRejectByMerchant,
	OrderDelivered,
}

// CustomerStatusFilters are the statuses offered in the customer orders filter.
var CustomerStatusFilters = []OrderStatus{
	OrderCreated,
	OrderPaidFromBalance,
	OrderAccepted,
	OrderDelivered,
	OrderRejectByCustomer,
	OrderRejectByMerchant,
}

// CustomerCompleted reports whether a customer sees the order under History.
func CustomerCompleted(s OrderStatus) bool {
	switch s {
	case OrderDelivered, OrderRejectByCustomer, OrderRejectByMerchant:
		return true
	}
	return false
}

// MerchantCompleted reports whether a merchant sees the order under History.
func MerchantCompleted(s OrderStatus) bool {
	return s == OrderDelivered || s == OrderRejectByMerchant
}

// Order is a single-product order as returned by the orders endpoints.
type Order struct {
	OrderID      int64       `json:"orderId"`
	ProductID    int64       `json:"productId"`
	ProductName  string      `json:"productName"`
	Count        int         `json:"count"`
	TotalAmount  float64     `json:"totalAmount"`
	Status       OrderStatus `json:"status"`
	RejectReason string      `json:"rejectReason,omitempty"`
	CreatedAt    string      `json:"createdAt"`
}

// Cancellable reports whether a customer may still cancel the order.
func (o Order) Cancellable() bool {
	return !CustomerCompleted(o.Status)
}

// CancelOrderRequest is the body of the order cancellation endpoint.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// UpdateOrderStatusRequest is the body of the merchant status endpoint.
type UpdateOrderStatusRequest struct {
	Status       OrderStatus `json:"status"`
	RejectReason string      `json:"rejectReason"`
}

// OrderSort selects the ordering of the orders views.
type OrderSort string

const (
	OrderSortNewest     OrderSort = "newest"
	OrderSortOldest     OrderSort = "oldest"
	OrderSortAmountDesc OrderSort = "amount_desc"
	OrderSortAmountAsc  OrderSort = "amount_asc"
)

// OrderSorts lists the sort modes in UI cycling order.
var OrderSorts = []OrderSort{
	OrderSortNewest, OrderSortOldest, OrderSortAmountDesc, OrderSortAmountAsc,
}

// OrderSections is an orders list split into the Active and History sections.
type OrderSections struct {
	Active  []Order
	History []Order
}

// SplitOrders filters by status (empty = all), sorts, and partitions the
// orders using completed to decide which section each order belongs to.
func SplitOrders(
	orders []Order,
	status OrderStatus,
	by OrderSort,
	completed func(OrderStatus) bool,
) OrderSections {
	list := make([]Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		list = append(list, o)
	}

	created := func(o Order) int64 {
		t, ok := ParseTimestamp(o.CreatedAt)
		if !ok {
			return 0
		}
		return t.UnixMilli()
	}

	switch by {
	case OrderSortOldest:
		sort.SliceStable(list, func(i, j int) bool { return created(list[i]) < created(list[j]) })
	case OrderSortAmountDesc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].TotalAmount > list[j].TotalAmount })
	case OrderSortAmountAsc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].TotalAmount < list[j].TotalAmount })
	default:
		sort.SliceStable(list, func(i, j int) bool { return created(list[i]) > created(list[j]) })
	}

	var sections OrderSections
	for _, o := range list {
		if completed(o.Status) {
			sections.History = append(sections.History, o)
		} else {
			sections.Active = append(sections.Active, o)
		}
	}
	return sections
}
