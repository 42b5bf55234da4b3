package app

import (
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	appsync "github.com/nhle/marketplace/internal/sync"
	"github.com/nhle/marketplace/internal/testutil"
	"github.com/nhle/marketplace/internal/theme"
	"github.com/nhle/marketplace/internal/ui"
	"github.com/nhle/marketplace/internal/ui/cart"
	"github.com/nhle/marketplace/internal/ui/command"
)

func newApp(t *testing.T, role model.Role) (Model, *ui.Context, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	ctx := testutil.NewUIContext(t, backend.URL)
	if role != "" {
		testutil.LoginAs(t, ctx, role)
	}
	return New(ctx), ctx, backend
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// settle runs cmd and feeds what it produces back into m for a few
// rounds. It must not be given form init commands, which tick forever.
func settle(m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	var seen []tea.Msg
	pending := []tea.Cmd{cmd}
	for round := 0; round < 3 && len(pending) > 0; round++ {
		var next []tea.Cmd
		for _, c := range pending {
			for _, msg := range testutil.Collect(c) {
				if _, tick := msg.(spinner.TickMsg); tick {
					continue
				}
				seen = append(seen, msg)
				var nc tea.Cmd
				m, nc = send(m, msg)
				if nc != nil {
					next = append(next, nc)
				}
			}
		}
		pending = next
	}
	return m, seen
}

func statusOf(msgs []tea.Msg) (ui.StatusMsg, bool) {
	for _, msg := range msgs {
		if s, ok := msg.(ui.StatusMsg); ok {
			return s, true
		}
	}
	return ui.StatusMsg{}, false
}

func statusesOf(msgs []tea.Msg) []ui.StatusMsg {
	var out []ui.StatusMsg
	for _, msg := range msgs {
		if s, ok := msg.(ui.StatusMsg); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestGuard_AnonymousLogsInThenContinues(t *testing.T) {
	m, ctx, _ := newApp(t, "")

	m, _ = send(m, testutil.Key("2"))
	assert.Equal(t, ui.RouteLogin, m.current)
	require.NotNil(t, m.pending)
	assert.Equal(t, ui.RouteCart, m.pending.Route)

	m, cmd := send(m, ui.LoggedInMsg{Session: model.Session{
		Token: testutil.CustomerToken, TokenType: "Bearer", Email: "ada@example.com", Type: model.RoleCustomer,
	}})
	m, msgs := settle(m, cmd)

	assert.Equal(t, ui.RouteCart, m.current)
	assert.True(t, ctx.State.IsCustomer())
	assert.Equal(t, []ui.Route{ui.RouteProducts}, m.history, "login is not kept in the history")
	status, ok := statusOf(msgs)
	require.True(t, ok)
	assert.Equal(t, "Logged in as ada@example.com", status.Text)
}

func TestGuard_WrongRoleStays(t *testing.T) {
	m, _, _ := newApp(t, model.RoleMerchant)

	m, cmd := send(m, ui.NavigateMsg{Route: ui.RouteWishlist})

	assert.Equal(t, ui.RouteProducts, m.current)
	status, ok := statusOf(testutil.Collect(cmd))
	require.True(t, ok)
	assert.True(t, status.IsError)
	assert.Contains(t, status.Text, "customers")
}

func TestSectionKeys_FollowRole(t *testing.T) {
	m, _, _ := newApp(t, model.RoleMerchant)

	m, _ = send(m, testutil.Key("4"))
	assert.Equal(t, ui.RouteMerchantOrders, m.current)

	m, _ = send(m, testutil.Key("2"))
	assert.Equal(t, ui.RouteMerchantProducts, m.current)

	c, _, _ := newApp(t, model.RoleCustomer)
	c, _ = send(c, testutil.Key("4"))
	assert.Equal(t, ui.RouteOrders, c.current)
}

func TestToggleTheme_RestylesInPlace(t *testing.T) {
	m, ctx, _ := newApp(t, "")
	styles := ctx.Styles

	m, _ = send(m, testutil.Key("T"))

	assert.Equal(t, theme.Dark, ctx.State.Theme())
	assert.Same(t, styles, ctx.Styles, "views keep the same pointer")
	assert.Equal(t, theme.New(theme.Dark).Palette, ctx.Styles.Palette)

	_, _ = send(m, command.CommandMsg{Name: "theme", Arg: "light"})
	assert.Equal(t, theme.Light, ctx.State.Theme())
}

func TestThemeReset_RestoresLight(t *testing.T) {
	m, ctx, _ := newApp(t, "")

	m, _ = send(m, command.CommandMsg{Name: "theme", Arg: "dark"})
	require.Equal(t, theme.Dark, ctx.State.Theme())

	_, cmd := send(m, command.CommandMsg{Name: "theme", Arg: "reset"})

	assert.Equal(t, theme.Light, ctx.State.Theme())
	assert.Equal(t, theme.New(theme.Light).Palette, ctx.Styles.Palette)
	assert.Equal(t, []ui.StatusMsg{{Text: "Theme: light"}}, statusesOf(testutil.Collect(cmd)))
}

func TestLogout_ClearsSessionAndBell(t *testing.T) {
	m, ctx, _ := newApp(t, model.RoleCustomer)
	m, _ = send(m, appsync.ChangedMsg{Unread: 2, State: appsync.StateConnected})
	m, _ = send(m, testutil.Key("5"))
	require.Equal(t, ui.RouteNotifications, m.current)

	m, cmd := send(m, testutil.Key("L"))

	assert.Equal(t, []ui.StatusMsg{{Text: "Logged out"}}, statusesOf(testutil.Collect(cmd)))
	assert.False(t, ctx.State.IsLoggedIn())
	assert.Equal(t, ui.RouteProducts, m.current)
	assert.Zero(t, m.unread)
	assert.Empty(t, m.history)
}

func TestBack_ReturnsToPreviousRoute(t *testing.T) {
	m, _, backend := newApp(t, "")
	id := backend.AddProduct("Lamp", 10, 3)

	m, _ = send(m, ui.NavigateMsg{Route: ui.RouteProductDetail, ProductID: id})
	assert.Equal(t, ui.RouteProductDetail, m.current)

	m, _ = send(m, ui.NavigateMsg{Route: ui.RouteMerchantStore, MerchantID: testutil.MerchantID})
	m, _ = send(m, ui.BackMsg{})
	assert.Equal(t, ui.RouteProductDetail, m.current)

	m, _ = send(m, ui.BackMsg{})
	assert.Equal(t, ui.RouteProducts, m.current)

	m, _ = send(m, ui.BackMsg{})
	assert.Equal(t, ui.RouteProducts, m.current, "the catalog is the bottom of the stack")
}

func TestCommandPalette_RunsCommand(t *testing.T) {
	m, _, _ := newApp(t, model.RoleCustomer)

	m, _ = send(m, testutil.Key(":"))
	require.Equal(t, ui.RouteCommand, m.current)

	m, _ = send(m, command.CommandMsg{Name: "wishlist"})

	assert.Equal(t, ui.RouteWishlist, m.current)
	assert.Equal(t, []ui.Route{ui.RouteProducts}, m.history)
}

func TestEditing_LeavesKeysToTheForm(t *testing.T) {
	m, _, _ := newApp(t, "")

	m, _ = send(m, testutil.Key("L"))
	require.Equal(t, ui.RouteLogin, m.current)

	m, _ = send(m, testutil.Key("1"))
	assert.Equal(t, ui.RouteLogin, m.current)
}

func TestChangedMsg_UpdatesHeader(t *testing.T) {
	m, _, _ := newApp(t, model.RoleCustomer)
	m, _ = send(m, tea.WindowSizeMsg{Width: 160, Height: 40})

	m, cmd := send(m, appsync.ChangedMsg{Unread: 3, State: appsync.StateConnected})

	assert.NotNil(t, cmd, "the app keeps listening")
	view := m.View()
	assert.Contains(t, view, "🔔 3")
	assert.Contains(t, view, "live")
}

func TestSyncStarted_RejectedSessionLogsOut(t *testing.T) {
	m, ctx, _ := newApp(t, model.RoleCustomer)

	m, cmd := send(m, syncStartedMsg{
		token: testutil.CustomerToken,
		err:   &api.APIError{StatusCode: 401, Message: "401"},
	})

	assert.False(t, ctx.State.IsLoggedIn())
	assert.Equal(t, ui.RouteProducts, m.current)
	statuses := statusesOf(testutil.Collect(cmd))
	require.Len(t, statuses, 1, "the expiry notice is the only status")
	assert.True(t, statuses[0].IsError)
	assert.Contains(t, statuses[0].Text, "expired")
}

func TestCheckout_OpensOrders(t *testing.T) {
	m, ctx, backend := newApp(t, model.RoleCustomer)
	lamp := backend.AddProduct("Lamp", 10, 3)
	require.NoError(t, ctx.API.AddToCart(context.Background(), lamp, 2, testutil.CustomerToken))

	m, cmd := send(m, testutil.Key("2"))
	m, _ = settle(m, cmd)
	require.Equal(t, ui.RouteCart, m.current)

	orders, err := ctx.API.Checkout(context.Background(), testutil.CustomerToken)
	require.NoError(t, err)

	m, cmd = send(m, cart.CheckedOutMsg{Orders: orders})
	m, _ = settle(m, cmd)

	assert.Equal(t, ui.RouteOrders, m.current)
	assert.Contains(t, m.orders.View(), "Lamp")
}

func TestSettingsCommand_OpensForm(t *testing.T) {
	m, _, _ := newApp(t, "")

	m, _ = send(m, command.CommandMsg{Name: "settings"})
	require.Equal(t, ui.RouteSettings, m.current)
	assert.True(t, m.editing())

	m, cmd := send(m, testutil.Key("esc"))
	msgs := testutil.Collect(cmd)
	require.Equal(t, []tea.Msg{ui.BackMsg{}}, msgs)

	m, _ = send(m, msgs[0])
	assert.Equal(t, ui.RouteProducts, m.current)
}
