package login

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/testutil"
	"github.com/nhle/marketplace/internal/ui"
)

func TestSubmit_EmitsLoggedIn(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok","type":"MERCHANT"}`))
	}))
	defer ts.Close()

	m := New(testutil.NewUIContext(t, ts.URL), 80, 24)
	m.fb.email = " shop@example.com "
	m.fb.password = "pw"

	msgs := testutil.Collect(m.submit())
	require.Len(t, msgs, 1)

	m, cmd := m.Update(msgs[0])
	msgs = testutil.Collect(cmd)
	require.Len(t, msgs, 1)
	logged, ok := msgs[0].(ui.LoggedInMsg)
	require.True(t, ok)
	assert.Equal(t, "tok", logged.Session.Token)
	assert.Equal(t, "shop@example.com", logged.Session.Email)
	assert.Equal(t, model.RoleMerchant, logged.Session.Type)
	assert.Equal(t, "Bearer", logged.Session.TokenType)
	assert.Empty(t, m.fb.password)
}

func TestSubmit_FailureRebuildsForm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer ts.Close()

	m := New(testutil.NewUIContext(t, ts.URL), 80, 24)
	m.Start()
	m.fb.email = "a@b.c"
	m.fb.password = "wrong"

	msgs := testutil.Collect(m.submit())
	require.Len(t, msgs, 1)
	m, _ = m.Update(msgs[0])

	require.Error(t, m.err)
	assert.Contains(t, m.View(), "Bad credentials")
	assert.Equal(t, "a@b.c", m.fb.email, "email is kept for the next attempt")
	assert.Empty(t, m.fb.password)
}

func TestEsc_GoesBack(t *testing.T) {
	m := New(testutil.NewUIContext(t, "http://localhost"), 80, 24)
	m.Start()

	_, cmd := m.Update(testutil.Key("esc"))
	msgs := testutil.Collect(cmd)
	require.Len(t, msgs, 1)
	assert.IsType(t, ui.BackMsg{}, msgs[0])
}
