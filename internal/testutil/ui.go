package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/appstate"
	"github.com/nhle/marketplace/internal/keys"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/session"
	appsync "github.com/nhle/marketplace/internal/sync"
	"github.com/nhle/marketplace/internal/theme"
	"github.com/nhle/marketplace/internal/ui"
)

// NewUIContext builds a view context backed by an in-memory preferences
// store, an in-memory keyring and an API client rooted at baseURL. The
// configuration starts from defaults and saves under t.TempDir().
func NewUIContext(t *testing.T, baseURL string) *ui.Context {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	log := logrus.NewEntry(logger)

	sessions := session.NewStore(keyring.NewArrayKeyring(nil), log)
	state, err := appstate.New(context.Background(), NewTestStore(t), sessions, log)
	if err != nil {
		t.Fatalf("creating app state: %v", err)
	}

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	cfg.API.BaseURL = baseURL

	client := api.NewClient(baseURL, 5*time.Second, log)
	syncer := appsync.New(appsync.Config{API: client, Log: log})
	t.Cleanup(syncer.Stop)

	return &ui.Context{
		API:      client,
		State:    state,
		Sync:     syncer,
		Styles:   theme.New(theme.Light),
		Keys:     keys.DefaultKeyMap(),
		PageSize: api.DefaultPageSize,
		Log:      log,

		Config:     cfg,
		ConfigPath: configPath,
	}
}

// LoginAs makes a session of the given role current in ctx. The token is
// the one Backend accepts for that role.
func LoginAs(t *testing.T, ctx *ui.Context, role model.Role) {
	t.Helper()

	token := CustomerToken
	if role == model.RoleMerchant {
		token = MerchantToken
	}
	err := ctx.State.Login(model.Session{
		Token:     token,
		TokenType: "Bearer",
		Email:     "user@example.com",
		Type:      role,
	})
	if err != nil {
		t.Fatalf("logging in: %v", err)
	}
}

// Key builds a key message for a named key ("enter", "esc", "tab") or a
// run of printable characters.
func Key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// Collect runs cmd and returns every message it produces, descending into
// batches.
func Collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, Collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// Updater is a view model with the value-receiver Update used by every
// screen.
type Updater[M any] interface {
	Update(tea.Msg) (M, tea.Cmd)
}

// Drain runs cmd, feeds every resulting message back into m and repeats
// with the commands those updates return, for a few rounds. Spinner ticks
// are dropped so the loop ends. It returns the final model and every
// message observed.
func Drain[M Updater[M]](m M, cmd tea.Cmd) (M, []tea.Msg) {
	var seen []tea.Msg
	pending := []tea.Cmd{cmd}

	for round := 0; round < 4 && len(pending) > 0; round++ {
		var next []tea.Cmd
		for _, c := range pending {
			for _, msg := range Collect(c) {
				if _, tick := msg.(spinner.TickMsg); tick {
					continue
				}
				seen = append(seen, msg)
				var nc tea.Cmd
				m, nc = m.Update(msg)
				if nc != nil {
					next = append(next, nc)
				}
			}
		}
		pending = next
	}
	return m, seen
}

// Press sends a key to m and drains the resulting commands.
func Press[M Updater[M]](m M, key string) (M, []tea.Msg) {
	m, cmd := m.Update(Key(key))
	return Drain(m, cmd)
}
