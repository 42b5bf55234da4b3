package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/testutil"
	"github.com/nhle/marketplace/internal/ui"
)

func TestStatusRequest(t *testing.T) {
	req, err := StatusRequest(model.OrderAccepted, "ignored")
	require.NoError(t, err)
	assert.Equal(t, model.UpdateOrderStatusRequest{Status: model.OrderAccepted}, req)

	_, err = StatusRequest(model.OrderRejectByMerchant, "  ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	req, err = StatusRequest(model.OrderRejectByMerchant, " out of stock ")
	require.NoError(t, err)
	assert.Equal(t, "out of stock", req.RejectReason)
}

func TestCancelRequest(t *testing.T) {
	_, err := CancelRequest("")
	assert.ErrorIs(t, err, ErrReasonRequired)

	reason, err := CancelRequest(" changed my mind ")
	require.NoError(t, err)
	assert.Equal(t, "changed my mind", reason)
}

// placeOrder puts one order for a product of the fake backend through
// checkout and returns its id.
func placeOrder(t *testing.T, ctx *ui.Context, backend *testutil.Backend) int64 {
	t.Helper()
	lamp := backend.AddProduct("Lamp", 10, 3)
	require.NoError(t, ctx.API.AddToCart(context.Background(), lamp, 1, testutil.CustomerToken))
	placed, err := ctx.API.Checkout(context.Background(), testutil.CustomerToken)
	require.NoError(t, err)
	require.Len(t, placed, 1)
	return placed[0].OrderID
}

func load(m Model) Model {
	cmd := m.Load()
	m, _ = testutil.Drain(m, cmd)
	return m
}

func TestMerchantReject_MovesOrderToHistory(t *testing.T) {
	backend := testutil.NewBackend(t)
	ctx := testutil.NewUIContext(t, backend.URL)
	orderID := placeOrder(t, ctx, backend)
	testutil.LoginAs(t, ctx, model.RoleMerchant)

	m := load(New(ctx, true, 100, 30))
	require.Len(t, m.sections.Active, 1)
	assert.Empty(t, m.sections.History)

	m.target = m.sections.Active[0]
	m.fb.status = model.OrderRejectByMerchant
	m.fb.reason = "sold out"
	m, cmd := m.submitStatus(m.target)
	m, _ = testutil.Drain(m, cmd)

	assert.Empty(t, m.sections.Active)
	require.Len(t, m.sections.History, 1)
	assert.Equal(t, orderID, m.sections.History[0].OrderID)
	assert.Equal(t, model.OrderRejectByMerchant, m.sections.History[0].Status)

	m, _ = m.Update(testutil.Key("h"))
	assert.Contains(t, m.View(), "reason: sold out")
}

func TestMerchantStatus_FallsBackToPost(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.BlockPatch = true
	ctx := testutil.NewUIContext(t, backend.URL)
	placeOrder(t, ctx, backend)
	testutil.LoginAs(t, ctx, model.RoleMerchant)

	m := load(New(ctx, true, 100, 30))
	m.target = m.sections.Active[0]
	m.fb.status = model.OrderAccepted
	m, cmd := m.submitStatus(m.target)
	m, _ = testutil.Drain(m, cmd)

	require.Len(t, m.sections.Active, 1)
	assert.Equal(t, model.OrderAccepted, m.sections.Active[0].Status)

	var patches, posts int
	for _, r := range backend.Requests() {
		switch r {
		case fmt.Sprintf("PATCH /merchant/orders/%d/status", m.target.OrderID):
			patches++
		case fmt.Sprintf("POST /merchant/orders/%d/status", m.target.OrderID):
			posts++
		}
	}
	assert.Equal(t, 1, patches)
	assert.Equal(t, 1, posts)
}

func TestCustomerCancel(t *testing.T) {
	backend := testutil.NewBackend(t)
	ctx := testutil.NewUIContext(t, backend.URL)
	placeOrder(t, ctx, backend)
	testutil.LoginAs(t, ctx, model.RoleCustomer)

	m := load(New(ctx, false, 100, 30))
	require.Len(t, m.sections.Active, 1)

	m, _ = m.Update(testutil.Key("x"))
	assert.Equal(t, modeCancel, m.mode)

	m.fb.reason = "  "
	m, cmd := m.submitCancel(m.target)
	msgs := testutil.Collect(cmd)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].(ui.StatusMsg).IsError)
	assert.False(t, m.busy)

	m.fb.reason = "changed my mind"
	m, cmd = m.submitCancel(m.target)
	m, _ = testutil.Drain(m, cmd)

	assert.Empty(t, m.sections.Active)
	require.Len(t, m.sections.History, 1)
	assert.Equal(t, model.OrderRejectByCustomer, m.sections.History[0].Status)
}

func TestFilterAndSort(t *testing.T) {
	ctx := testutil.NewUIContext(t, "http://localhost")
	m := New(ctx, false, 100, 30)
	m.orders = []model.Order{
		{OrderID: 1, TotalAmount: 5, Status: model.OrderCreated, CreatedAt: "2025-01-01T00:00:00"},
		{OrderID: 2, TotalAmount: 50, Status: model.OrderAccepted, CreatedAt: "2025-01-02T00:00:00"},
		{OrderID: 3, TotalAmount: 20, Status: model.OrderDelivered, CreatedAt: "2025-01-03T00:00:00"},
	}
	m.regroup()
	require.Len(t, m.sections.Active, 2)
	assert.Equal(t, int64(2), m.sections.Active[0].OrderID, "newest first")

	m, _ = m.Update(testutil.Key("f"))
	assert.Equal(t, model.OrderCreated, m.statusFilter())
	require.Len(t, m.sections.Active, 1)
	assert.Equal(t, int64(1), m.sections.Active[0].OrderID)

	m, _ = m.Update(testutil.Key("f"))
	m, _ = m.Update(testutil.Key("f"))
	m, _ = m.Update(testutil.Key("f"))
	m, _ = m.Update(testutil.Key("f"))
	m, _ = m.Update(testutil.Key("f"))
	m, _ = m.Update(testutil.Key("f"))
	assert.Equal(t, model.OrderStatus(""), m.statusFilter(), "wraps back to all")

	m, _ = m.Update(testutil.Key("tab"))
	m, _ = m.Update(testutil.Key("tab"))
	assert.Equal(t, model.OrderSortAmountDesc, model.OrderSorts[m.sortIdx])
	assert.Equal(t, int64(2), m.sections.Active[0].OrderID)
}
