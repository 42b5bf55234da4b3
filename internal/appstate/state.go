package appstate

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/sirupsen/logrus"

	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/store"
	"github.com/nhle/marketplace/internal/theme"
)

// SessionStore persists the logged-in session.
type SessionStore interface {
	Save(sess model.Session) error
	Load() (*model.Session, error)
	Clear() error
}

// State is the application-wide state shared by every view: the theme
// preference and the current session. It is created once in main and
// passed down by pointer.
type State struct {
	prefs    store.Preferences
	sessions SessionStore
	log      *logrus.Entry

	mu      gosync.RWMutex
	theme   theme.Mode
	session *model.Session
}

// New reads the stored theme and session once. A missing or unreadable
// theme falls back to light.
func New(
	ctx context.Context,
	prefs store.Preferences,
	sessions SessionStore,
	log *logrus.Entry,
) (*State, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &State{
		prefs:    prefs,
		sessions: sessions,
		log:      log.WithField("component", "appstate"),
		theme:    theme.Light,
	}

	value, err := prefs.GetPreference(ctx, store.KeyTheme)
	switch {
	case err == nil:
		s.theme = theme.ParseMode(value)
	case errors.Is(err, store.ErrNotFound):
	default:
		s.log.WithError(err).Warn("reading theme preference")
	}

	sess, err := sessions.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	s.session = sess

	return s, nil
}

// Theme returns the active theme mode.
func (s *State) Theme() theme.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme changes the theme and writes it through to the preferences
// store. The in-memory value changes even when persisting fails.
func (s *State) SetTheme(ctx context.Context, mode theme.Mode) error {
	mode = theme.ParseMode(string(mode))

	s.mu.Lock()
	s.theme = mode
	s.mu.Unlock()

	if err := s.prefs.SetPreference(ctx, store.KeyTheme, string(mode)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// ToggleTheme switches between light and dark and returns the new mode.
func (s *State) ToggleTheme(ctx context.Context) (theme.Mode, error) {
	next := s.Theme().Toggle()
	return next, s.SetTheme(ctx, next)
}

// ResetTheme forgets the stored theme so the next run starts from the
// default, and switches to light now.
func (s *State) ResetTheme(ctx context.Context) (theme.Mode, error) {
	s.mu.Lock()
	s.theme = theme.Light
	s.mu.Unlock()

	if err := s.prefs.DeletePreference(ctx, store.KeyTheme); err != nil {
		return theme.Light, fmt.Errorf("resetting theme: %w", err)
	}
	return theme.Light, nil
}

// Session returns a copy of the current session, or nil.
func (s *State) Session() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Token returns the bearer token of the current session, or "".
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.BearerToken()
}

// Login stores sess and makes it current.
func (s *State) Login(sess model.Session) error {
	if err := s.sessions.Save(sess); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"email": sess.Email, "type": sess.Type}).Info("logged in")
	return nil
}

// Logout discards the current session. The in-memory session is dropped
// even when clearing the stored copy fails.
func (s *State) Logout() error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if err := s.sessions.Clear(); err != nil {
		return err
	}
	s.log.Info("logged out")
	return nil
}

// IsLoggedIn reports whether there is a current session.
func (s *State) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// IsCustomer reports whether the current session is a customer's.
func (s *State) IsCustomer() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsCustomer()
}

// IsMerchant reports whether the current session is a merchant's.
func (s *State) IsMerchant() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsMerchant()
}
