package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/testutil"
	"github.com/nhle/marketplace/internal/ui"
)

func validInput() Input {
	return Input{
		BaseURL:      "https://shop.example.com/",
		TimeoutSec:   "10",
		PollSec:      "0",
		PageSize:     "12",
		LogLevel:     "debug",
		ReconnectSec: "3",
	}
}

func TestApply(t *testing.T) {
	base := model.AppConfig{}

	cfg, err := Apply(base, validInput())
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", cfg.API.BaseURL)
	assert.Equal(t, 10, cfg.API.TimeoutSec)
	assert.Equal(t, 0, cfg.Notifications.PollIntervalSec)
	assert.Equal(t, 12, cfg.Display.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Push.ReconnectDelaySec)

	tests := []struct {
		name   string
		mutate func(*Input)
		want   string
	}{
		{"blank url", func(in *Input) { in.BaseURL = " " }, "Server URL is required"},
		{"bad url", func(in *Input) { in.BaseURL = "shop" }, "Server URL is not valid"},
		{"blank timeout", func(in *Input) { in.TimeoutSec = "" }, "Request timeout is required"},
		{"text timeout", func(in *Input) { in.TimeoutSec = "ten" }, "Request timeout must be a whole number"},
		{"zero timeout", func(in *Input) { in.TimeoutSec = "0" }, "Request timeout must be at least 1"},
		{"negative poll", func(in *Input) { in.PollSec = "-1" }, "Poll interval must be at least 0"},
		{"huge page", func(in *Input) { in.PageSize = "500" }, "Page size is not valid"},
		{"unknown level", func(in *Input) { in.LogLevel = "trace" }, "Log level must be one of: debug info warn error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := Apply(base, in)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestApply_KeepsUneditedSettings(t *testing.T) {
	base := model.AppConfig{Push: model.PushConfig{Topic: "/topic/notifications"}}

	cfg, err := Apply(base, validInput())

	require.NoError(t, err)
	assert.Equal(t, "/topic/notifications", cfg.Push.Topic)
}

func newSettings(t *testing.T) (Model, *ui.Context, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	ctx := testutil.NewUIContext(t, backend.URL)
	return New(ctx, 100, 30), ctx, backend
}

func TestStart_FillsFromConfig(t *testing.T) {
	m, ctx, _ := newSettings(t)

	_ = m.Start()

	assert.Equal(t, ctx.Config.API.BaseURL, m.fb.in.BaseURL)
	assert.Equal(t, "9", m.fb.in.PageSize)
	assert.Equal(t, "info", m.fb.in.LogLevel)
}

func TestCheckServer(t *testing.T) {
	_, ctx, _ := newSettings(t)

	msgs := testutil.Collect(checkServer(*ctx.Config))
	require.Len(t, msgs, 1)
	assert.NoError(t, msgs[0].(checkedMsg).err)

	offline := *ctx.Config
	offline.API.BaseURL = "http://127.0.0.1:1"
	msgs = testutil.Collect(checkServer(offline))
	require.Len(t, msgs, 1)
	assert.Error(t, msgs[0].(checkedMsg).err)
}

func TestReachableServer_SavesAndApplies(t *testing.T) {
	m, ctx, _ := newSettings(t)
	_ = m.Start()

	draft, err := Apply(*ctx.Config, Input{
		BaseURL:      ctx.Config.API.BaseURL,
		TimeoutSec:   "15",
		PollSec:      "60",
		PageSize:     "20",
		LogLevel:     "warn",
		ReconnectSec: "5",
	})
	require.NoError(t, err)
	m.mode = modeChecking
	m.draft = draft

	m, cmd := m.Update(checkedMsg{})
	assert.Equal(t, modeSaving, m.mode)

	msgs := testutil.Collect(cmd)
	require.Len(t, msgs, 1)
	m, cmd = m.Update(msgs[0])

	assert.Equal(t, 20, ctx.PageSize)
	assert.Equal(t, "warn", ctx.Config.Log.Level)

	saved, err := model.LoadConfig(ctx.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 15, saved.API.TimeoutSec)
	assert.Equal(t, 60, saved.Notifications.PollIntervalSec)

	out := testutil.Collect(cmd)
	assert.Contains(t, out, ui.BackMsg{})
}

func TestUnreachableServer_AsksBeforeSaving(t *testing.T) {
	m, _, _ := newSettings(t)
	_ = m.Start()
	m.mode = modeChecking

	m, _ = m.Update(checkedMsg{err: errors.New("connection refused")})

	assert.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Connection failed")

	m, _ = m.Update(testutil.Key("esc"))
	assert.Equal(t, modeForm, m.mode, "esc returns to the form")
}

func TestLateCheckIgnored(t *testing.T) {
	m, _, _ := newSettings(t)
	_ = m.Start()

	m, cmd := m.Update(checkedMsg{})

	assert.Equal(t, modeForm, m.mode)
	assert.Nil(t, cmd)
}
