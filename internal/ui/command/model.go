package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/marketplace/internal/ui"
)

// Spec describes one palette command.
type Spec struct {
	Name string
	Arg  string // empty when the command takes no argument
	Desc string
}

// Usage renders the command with its argument placeholder.
func (s Spec) Usage() string {
	if s.Arg == "" {
		return s.Name
	}
	return s.Name + " <" + s.Arg + ">"
}

// Commands lists every palette command.
var Commands = []Spec{
	{Name: "products", Desc: "browse the catalog"},
	{Name: "product", Arg: "id", Desc: "open a product"},
	{Name: "store", Arg: "merchant id", Desc: "open a merchant's storefront"},
	{Name: "cart", Desc: "show the cart"},
	{Name: "wishlist", Desc: "show the wishlist"},
	{Name: "orders", Desc: "show orders"},
	{Name: "notifications", Desc: "show notifications"},
	{Name: "profile", Desc: "show your account"},
	{Name: "my-products", Desc: "manage your products (merchant)"},
	{Name: "new-product", Desc: "create a product (merchant)"},
	{Name: "login", Desc: "log in"},
	{Name: "register", Desc: "create an account"},
	{Name: "logout", Desc: "log out"},
	{Name: "theme", Arg: "light|dark|reset", Desc: "switch the color theme"},
	{Name: "settings", Desc: "edit the server and display settings"},
	{Name: "help", Desc: "show keyboard shortcuts"},
	{Name: "quit", Desc: "exit"},
}

// CommandMsg is emitted when the user executes a valid command.
type CommandMsg struct {
	Name string
	Arg  string
	ID   int64 // parsed Arg for commands taking an id
}

// Parse turns a palette line into a command.
func Parse(line string) (CommandMsg, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandMsg{}, fmt.Errorf("empty command")
	}

	name := strings.ToLower(fields[0])
	var spec *Spec
	for i := range Commands {
		if Commands[i].Name == name {
			spec = &Commands[i]
			break
		}
	}
	if spec == nil {
		return CommandMsg{}, fmt.Errorf("unknown command %q", name)
	}

	msg := CommandMsg{Name: name}
	if len(fields) > 1 {
		msg.Arg = strings.Join(fields[1:], " ")
	}

	switch name {
	case "product", "store":
		id, err := strconv.ParseInt(msg.Arg, 10, 64)
		if err != nil || id <= 0 {
			return CommandMsg{}, fmt.Errorf("usage: %s", spec.Usage())
		}
		msg.ID = id
	case "theme":
		switch msg.Arg {
		case "", "light", "dark", "reset":
		default:
			return CommandMsg{}, fmt.Errorf("usage: %s", spec.Usage())
		}
	default:
		if msg.Arg != "" {
			return CommandMsg{}, fmt.Errorf("%s takes no argument", name)
		}
	}
	return msg, nil
}

// Model is the command palette view.
type Model struct {
	ctx    *ui.Context
	input  textinput.Model
	err    error
	width  int
	height int
}

// New creates a new command palette model.
func New(ctx *ui.Context, width, height int) Model {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name)
	}

	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(names)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		ctx:    ctx,
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.input.Reset()
			m.err = nil
			return m, ui.Back()
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			parsed, err := Parse(line)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.input.Reset()
			m.err = nil
			return m, func() tea.Msg { return parsed }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	s := m.ctx.Styles

	lines := []string{
		s.Title.MarginBottom(1).Render("Command Palette"),
		m.input.View(),
	}
	if m.err != nil {
		lines = append(lines, s.Error.Render(m.err.Error()))
	}
	lines = append(lines, s.Help.Render("tab complete | enter run | esc close | ? lists commands"))

	return s.Panel.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
