package login

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

type loginResultMsg struct {
	session model.Session
	err     error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
}

// Model is the login screen.
type Model struct {
	ctx     *ui.Context
	form    *huh.Form
	fb      *formBindings
	err     error
	pending bool
	width   int
	height  int
}

// New creates the login view.
func New(ctx *ui.Context, width, height int) Model {
	return Model{
		ctx:    ctx,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start resets the form. The email of the previous attempt is kept.
func (m *Model) Start() tea.Cmd {
	m.fb.password = ""
	m.pending = false
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(ui.Required("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(ui.Required("Password")),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
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
		switch msg.String() {
		case "esc":
			return m, ui.Back()
		case "ctrl+r":
			return m, ui.Navigate(ui.RouteRegister)
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
		m.pending = true
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		return m, ui.Back()
	}

	return m, cmd
}

func (m Model) submit() tea.Cmd {
	client := m.ctx.API
	req := model.LoginRequest{
		Email:    strings.TrimSpace(m.fb.email),
		Password: m.fb.password,
	}
	return func() tea.Msg {
		resp, err := client.Login(context.Background(), req)
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{session: resp.ToSession(req.Email, "")}
	}
}

// View renders the login form.
func (m Model) View() string {
	s := m.ctx.Styles

	lines := []string{s.Title.MarginBottom(1).Render("Log in")}
	if m.err != nil {
		lines = append(lines, s.Error.Render(api.UserMessage(m.err)))
	}
	if m.pending {
		lines = append(lines, s.Muted.Render("Signing in..."))
	} else if m.form != nil {
		lines = append(lines, m.form.View())
	}
	lines = append(lines, s.Help.Render("ctrl+r create an account · esc back"))

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
