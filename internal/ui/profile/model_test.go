package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/testutil"
	"github.com/nhle/marketplace/internal/ui"
)

func load(t *testing.T, role model.Role) Model {
	t.Helper()
	backend := testutil.NewBackend(t)
	ctx := testutil.NewUIContext(t, backend.URL)
	testutil.LoginAs(t, ctx, role)

	m := New(ctx, 100, 30)
	cmd := m.Load()
	m, _ = testutil.Drain(m, cmd)
	return m
}

func TestLoad_Customer(t *testing.T) {
	m := load(t, model.RoleCustomer)

	require.NotNil(t, m.customer)
	view := m.View()
	assert.Contains(t, view, "Ada Lovelace")
	assert.Contains(t, view, "$1000.00")
	assert.NotContains(t, view, "storefront")
}

func TestLoad_Merchant(t *testing.T) {
	m := load(t, model.RoleMerchant)

	require.NotNil(t, m.merchant)
	assert.Contains(t, m.View(), "Acme")

	_, msgs := testutil.Press(m, "v")
	require.Len(t, msgs, 1)
	assert.Equal(t, ui.NavigateMsg{Route: ui.RouteMerchantStore, MerchantID: testutil.MerchantID}, msgs[0])
}

func TestSessionLine_OpaqueTokenHidden(t *testing.T) {
	m := load(t, model.RoleCustomer)
	assert.Empty(t, m.sessionLine())
}
