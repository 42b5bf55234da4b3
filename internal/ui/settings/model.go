package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/ui"
)

// checkTimeout bounds the test connection made before saving.
const checkTimeout = 5 * time.Second

type settingsMode int

const (
	modeForm     settingsMode = iota // Editing
	modeChecking                     // Testing the new server
	modeConfirm                      // Server unreachable, asking to save anyway
	modeSaving
)

// Input is the raw text of the settings form.
type Input struct {
	BaseURL      string
	TimeoutSec   string
	PollSec      string
	PageSize     string
	LogLevel     string
	ReconnectSec string
}

// fields carries the rules for the editable settings.
type fields struct {
	BaseURL      string `label:"Server URL" validate:"required,url"`
	TimeoutSec   int    `label:"Request timeout" validate:"gte=1"`
	PollSec      int    `label:"Poll interval" validate:"gte=0"`
	PageSize     int    `label:"Page size" validate:"gte=1,lte=100"`
	LogLevel     string `label:"Log level" validate:"oneof=debug info warn error"`
	ReconnectSec int    `label:"Reconnect delay" validate:"gte=1"`
}

// Apply validates in and returns a copy of base carrying the new values.
func Apply(base model.AppConfig, in Input) (model.AppConfig, error) {
	timeout, err := wholeNumber("Request timeout", in.TimeoutSec)
	if err != nil {
		return base, err
	}
	poll, err := wholeNumber("Poll interval", in.PollSec)
	if err != nil {
		return base, err
	}
	pageSize, err := wholeNumber("Page size", in.PageSize)
	if err != nil {
		return base, err
	}
	reconnect, err := wholeNumber("Reconnect delay", in.ReconnectSec)
	if err != nil {
		return base, err
	}

	f := fields{
		BaseURL:      strings.TrimRight(strings.TrimSpace(in.BaseURL), "/"),
		TimeoutSec:   timeout,
		PollSec:      poll,
		PageSize:     pageSize,
		LogLevel:     in.LogLevel,
		ReconnectSec: reconnect,
	}
	if err := ui.CheckStruct(f); err != nil {
		return base, err
	}

	cfg := base
	cfg.API.BaseURL = f.BaseURL
	cfg.API.TimeoutSec = f.TimeoutSec
	cfg.Notifications.PollIntervalSec = f.PollSec
	cfg.Display.PageSize = f.PageSize
	cfg.Log.Level = f.LogLevel
	cfg.Push.ReconnectDelaySec = f.ReconnectSec
	return cfg, nil
}

func wholeNumber(label, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%s is required", label)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", label)
	}
	return n, nil
}

func inputFrom(cfg model.AppConfig) Input {
	return Input{
		BaseURL:      cfg.API.BaseURL,
		TimeoutSec:   strconv.Itoa(cfg.API.TimeoutSec),
		PollSec:      strconv.Itoa(cfg.Notifications.PollIntervalSec),
		PageSize:     strconv.Itoa(cfg.Display.PageSize),
		LogLevel:     cfg.Log.Level,
		ReconnectSec: strconv.Itoa(cfg.Push.ReconnectDelaySec),
	}
}

type checkedMsg struct {
	err error
}

type savedMsg struct {
	cfg model.AppConfig
	err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	in         Input
	saveAnyway bool
}

// Model edits the client configuration file.
type Model struct {
	ctx     *ui.Context
	mode     settingsMode
	form     *huh.Form
	confirm  *huh.Form
	fb       *formBindings
	draft    model.AppConfig
	checkErr error
	err      error
	spinner  spinner.Model
	width    int
	height   int
}

// New creates the settings view.
func New(ctx *ui.Context, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start opens the form filled with the current configuration.
func (m *Model) Start() tea.Cmd {
	m.mode = modeForm
	m.err = nil
	m.checkErr = nil
	m.fb.in = inputFrom(m.current())
	m.form = m.buildForm()
	return m.form.Init()
}

func (m Model) current() model.AppConfig {
	if m.ctx.Config == nil {
		return model.AppConfig{}
	}
	return *m.ctx.Config
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Description("Origin of the marketplace API").
				Value(&m.fb.in.BaseURL).
				Validate(ui.Required("Server URL")),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Value(&m.fb.in.TimeoutSec),
			huh.NewInput().
				Title("Notification poll interval (seconds, 0 to disable)").
				Value(&m.fb.in.PollSec),
			huh.NewInput().
				Title("Push reconnect delay (seconds)").
				Value(&m.fb.in.ReconnectSec),
			huh.NewInput().
				Title("Page size").
				Value(&m.fb.in.PageSize),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&m.fb.in.LogLevel),
		),
	).
		WithWidth(ui.FormWidth(m.width)).
		WithHeight(ui.FormHeight(m.height))
}

func (m *Model) buildConfirm() *huh.Form {
	m.fb.saveAnyway = false
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save anyway?").
				Affirmative("Save").
				Negative("Edit").
				Value(&m.fb.saveAnyway),
		),
	).WithWidth(ui.FormWidth(m.width))
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.mode != modeChecking && m.mode != modeSaving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case checkedMsg:
		if m.mode != modeChecking {
			return m, nil
		}
		if msg.err != nil {
			m.checkErr = msg.err
			m.mode = modeConfirm
			m.confirm = m.buildConfirm()
			return m, m.confirm.Init()
		}
		m.mode = modeSaving
		return m, m.save(m.draft)

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = modeForm
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		m.apply(msg.cfg)
		return m, tea.Batch(
			ui.Status("Settings saved. A new server URL applies after restart."),
			ui.Back(),
		)

	case tea.KeyMsg:
		if msg.String() == "esc" {
			if m.mode == modeConfirm {
				m.mode = modeForm
				m.form = m.buildForm()
				return m, m.form.Init()
			}
			return m, ui.Back()
		}
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cfg, err := Apply(m.current(), m.fb.in)
		if err != nil {
			m.err = err
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		m.err = nil
		m.draft = cfg
		m.mode = modeChecking
		return m, tea.Batch(m.spinner.Tick, checkServer(cfg))
	case huh.StateAborted:
		return m, ui.Back()
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		if m.fb.saveAnyway {
			m.mode = modeSaving
			return m, m.save(m.draft)
		}
		m.mode = modeForm
		m.form = m.buildForm()
		return m, m.form.Init()
	case huh.StateAborted:
		m.mode = modeForm
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	return m, cmd
}

// checkServer checks that cfg points at a marketplace server by listing the
// public categories.
func checkServer(cfg model.AppConfig) tea.Cmd {
	return func() tea.Msg {
		client := api.NewClient(cfg.API.BaseURL, checkTimeout, nil)
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		_, err := client.Categories(ctx)
		return checkedMsg{err: err}
	}
}

func (m Model) save(cfg model.AppConfig) tea.Cmd {
	path := m.ctx.ConfigPath
	return func() tea.Msg {
		if path == "" {
			return savedMsg{err: errors.New("no configuration file")}
		}
		return savedMsg{cfg: cfg, err: model.SaveConfig(path, &cfg)}
	}
}

// apply makes the settings that do not need a restart take effect.
func (m *Model) apply(cfg model.AppConfig) {
	if m.ctx.Config != nil {
		*m.ctx.Config = cfg
	}
	m.ctx.PageSize = cfg.Display.PageSize
	m.ctx.Log.WithField("path", m.ctx.ConfigPath).Info("settings saved")
}

// View renders the settings view.
func (m Model) View() string {
	s := m.ctx.Styles

	lines := []string{s.Title.MarginBottom(1).Render("Settings")}
	if m.ctx.ConfigPath != "" {
		lines = append(lines, s.Muted.Render(m.ctx.ConfigPath), "")
	}
	if m.err != nil {
		lines = append(lines, s.Error.Render(api.UserMessage(m.err)))
	}

	switch m.mode {
	case modeForm:
		if m.form != nil {
			lines = append(lines, m.form.View())
		}
	case modeChecking:
		lines = append(lines,
			fmt.Sprintf("%s Testing %s...", m.spinner.View(), m.draft.API.BaseURL),
			"",
			s.Muted.Render("esc cancel"),
		)
	case modeConfirm:
		lines = append(lines,
			s.Error.Render("Connection failed"),
			api.UserMessage(m.checkErr),
			"",
			m.confirm.View(),
		)
	case modeSaving:
		lines = append(lines, fmt.Sprintf("%s Saving...", m.spinner.View()))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(ui.FormWidth(width)).WithHeight(ui.FormHeight(height))
	}
}
