package register

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/ui"
)

type registerResultMsg struct {
	session model.Session
	err     error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	role     model.Role
	email    string
	password string
	name     string
	surname  string
	company  string
}

func (fb *formBindings) request() model.RegisterRequest {
	req := model.RegisterRequest{
		Email:    strings.TrimSpace(fb.email),
		Password: fb.password,
		Name:     strings.TrimSpace(fb.name),
		Surname:  strings.TrimSpace(fb.surname),
		Type:     fb.role,
	}
	if fb.role == model.RoleMerchant {
		req.CompanyName = strings.TrimSpace(fb.company)
	}
	return req
}

// registration mirrors model.RegisterRequest with the client-side rules.
type registration struct {
	Type     model.Role `label:"Account type" validate:"oneof=CUSTOMER MERCHANT"`
	Email    string     `label:"Email" validate:"required,email"`
	Password string     `label:"Password" validate:"required"`
	Name     string     `label:"Name" validate:"required"`
	Surname  string     `label:"Surname" validate:"required"`
	Company  string     `label:"Company name" validate:"required_if=Type MERCHANT"`
}

// Validate checks a registration request before it is sent. The server
// remains the authority; this only catches obvious mistakes early.
func Validate(req model.RegisterRequest) error {
	return ui.CheckStruct(registration{
		Type:     req.Type,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Surname:  req.Surname,
		Company:  req.CompanyName,
	})
}

// Model is the account registration screen.
type Model struct {
	ctx     *ui.Context
	form    *huh.Form
	fb      *formBindings
	err     error
	pending bool
	width   int
	height  int
}

// New creates the registration view.
func New(ctx *ui.Context, width, height int) Model {
	return Model{
		ctx:    ctx,
		fb:     &formBindings{role: model.RoleCustomer},
		width:  width,
		height: height,
	}
}

// Start resets the form, keeping what was typed before except the
// password.
func (m *Model) Start() tea.Cmd {
	m.fb.password = ""
	m.pending = false
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Role]().
				Title("Account type").
				Options(
					huh.NewOption("Customer", model.RoleCustomer),
					huh.NewOption("Merchant", model.RoleMerchant),
				).
				Value(&m.fb.role),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(ui.Required("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(ui.Required("Password")),
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(ui.Required("Name")),
			huh.NewInput().
				Title("Surname").
				Value(&m.fb.surname).
				Validate(ui.Required("Surname")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Company name").
				Value(&m.fb.company).
				Validate(ui.Required("Company name")),
		).WithHideFunc(func() bool {
			return m.fb.role != model.RoleMerchant
		}),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

// Update handles messages for the registration view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case registerResultMsg:
		m.pending = false
		if msg.err != nil {
			m.err = msg.err
			cmd := m.Start()
			return m, cmd
		}
		m.err = nil
		m.fb.password = ""
		sess := msg.session
		return m, func() tea.Msg { return ui.LoggedInMsg{Session: sess} }

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, ui.Back()
		}
	}

	if m.form == nil || m.pending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		req := m.fb.request()
		if err := Validate(req); err != nil {
			m.err = err
			cmd := m.Start()
			return m, cmd
		}
		m.pending = true
		return m, m.submit(req)
	}
	if m.form.State == huh.StateAborted {
		return m, ui.Back()
	}

	return m, cmd
}

func (m Model) submit(req model.RegisterRequest) tea.Cmd {
	client := m.ctx.API
	return func() tea.Msg {
		resp, err := client.Register(context.Background(), req)
		if err != nil {
			return registerResultMsg{err: err}
		}
		return registerResultMsg{session: resp.ToSession(req.Email, req.Type)}
	}
}

// View renders the registration form.
func (m Model) View() string {
	s := m.ctx.Styles

	lines := []string{s.Title.MarginBottom(1).Render("Create an account")}
	if m.err != nil {
		lines = append(lines, s.Error.Render(api.UserMessage(m.err)))
	}
	if m.pending {
		lines = append(lines, s.Muted.Render("Creating account..."))
	} else if m.form != nil {
		lines = append(lines, m.form.View())
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(ui.FormWidth(width)).WithHeight(ui.FormHeight(height))
	}
}
