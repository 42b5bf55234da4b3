package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/session"
	"github.com/nhle/marketplace/internal/ui"
)

type profileLoadedMsg struct {
	customer *model.CustomerProfile
	merchant *model.MerchantProfile
	err      error
}

// Model shows the logged-in account.
type Model struct {
	ctx      *ui.Context
	customer *model.CustomerProfile
	merchant *model.MerchantProfile
	loading  bool
	err      error
	now      func() time.Time
	width    int
	height   int
}

// New creates the profile view.
func New(ctx *ui.Context, width, height int) Model {
	return Model{
		ctx:    ctx,
		now:    time.Now,
		width:  width,
		height: height,
	}
}

// Load fetches the profile matching the session's account type.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	m.err = nil
	m.customer = nil
	m.merchant = nil

	client := m.ctx.API
	token := m.ctx.Token()
	merchant := m.ctx.State.IsMerchant()

	return func() tea.Msg {
		ctx := context.Background()
		if merchant {
			p, err := client.MerchantProfile(ctx, token)
			return profileLoadedMsg{merchant: p, err: err}
		}
		p, err := client.CustomerProfile(ctx, token)
		return profileLoadedMsg{customer: p, err: err}
	}
}

// Update handles messages for the profile view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.customer = msg.customer
		m.merchant = msg.merchant
		return m, nil

	case tea.KeyMsg:
		k := m.ctx.Keys
		switch {
		case key.Matches(msg, k.Back):
			return m, ui.Back()
		case key.Matches(msg, k.Refresh):
			cmd := m.Load()
			return m, cmd
		case key.Matches(msg, k.Storefront):
			if m.merchant == nil {
				return m, nil
			}
			id := m.merchant.ID
			return m, func() tea.Msg {
				return ui.NavigateMsg{Route: ui.RouteMerchantStore, MerchantID: id}
			}
		}
	}
	return m, nil
}

// View renders the profile.
func (m Model) View() string {
	s := m.ctx.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Profile"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(s.Muted.Render("Loading profile..."))
	case m.err != nil:
		b.WriteString(s.Error.Render(api.UserMessage(m.err)))
	case m.customer != nil:
		p := m.customer
		m.field(&b, "Name", p.Name+" "+p.Surname)
		m.field(&b, "Email", p.Email)
		m.field(&b, "Account", "Customer")
		m.field(&b, "Balance", s.Price.Render(ui.FormatPrice(p.Balance)))
		m.field(&b, "Member since", ui.FormatTimestamp(p.CreatedAt))
	case m.merchant != nil:
		p := m.merchant
		m.field(&b, "Name", p.Name+" "+p.Surname)
		m.field(&b, "Email", p.Email)
		m.field(&b, "Account", "Merchant")
		m.field(&b, "Company", p.CompanyName)
		m.field(&b, "Member since", ui.FormatTimestamp(p.CreatedAt))
	}

	if line := m.sessionLine(); line != "" {
		b.WriteString("\n")
		b.WriteString(s.Muted.Render(line))
		b.WriteString("\n")
	}

	help := "r refresh | L log out | esc back"
	if m.merchant != nil {
		help = "v storefront | " + help
	}
	b.WriteString("\n")
	b.WriteString(s.Help.Render(help))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) field(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	b.WriteString(m.ctx.Styles.Muted.Render(fmt.Sprintf("%-14s", label)))
	b.WriteString(value)
	b.WriteString("\n")
}

// sessionLine describes the token lifetime when the token is a JWT.
func (m Model) sessionLine() string {
	info, err := session.InspectToken(m.ctx.Token())
	if err != nil || !info.HasExpiry() {
		return ""
	}
	if info.Expired(m.now()) {
		return "Session expired " + info.ExpiresAt.Local().Format("Jan 02 15:04") + "; log in again."
	}
	return "Session valid until " + info.ExpiresAt.Local().Format("Jan 02 15:04")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
