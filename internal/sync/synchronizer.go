package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	gosync "sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/push"
)

// State is the lifecycle state of the notification synchronizer.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "live"
	default:
		return "offline"
	}
}

// NotificationAPI is the subset of the API gateway the synchronizer uses.
type NotificationAPI interface {
	ListNotifications(ctx context.Context, token string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64, token string) error
	MarkAllNotificationsRead(ctx context.Context, token string) error
}

// DialFunc opens a push subscription for token. The returned closer tears
// it down.
type DialFunc func(ctx context.Context, token string, l push.Listener) (io.Closer, error)

// Config wires the synchronizer's collaborators.
type Config struct {
	API          NotificationAPI
	Dial         DialFunc
	PollInterval time.Duration
	Log          *logrus.Entry
}

// Synchronizer keeps the user's notification list consistent with the
// server: it fetches, applies optimistic read marks, merges pushed
// notifications, and re-fetches whenever a mutation fails.
type Synchronizer struct {
	api          NotificationAPI
	dial         DialFunc
	pollInterval time.Duration
	log          *logrus.Entry

	mu         gosync.Mutex
	session    *model.Session
	items      []model.Notification
	loading    bool
	state      State
	conn       io.Closer
	stopPoll   chan struct{}
	generation uint64

	changes chan ChangedMsg
}

// New creates a Synchronizer in the Disconnected state.
func New(cfg Config) *Synchronizer {
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Synchronizer{
		api:          cfg.API,
		dial:         cfg.Dial,
		pollInterval: cfg.PollInterval,
		log:          log.WithField("component", "notifications"),
		changes:      make(chan ChangedMsg, 1),
	}
}

// SortNotifications orders list in place: unread first, then newest first.
// The sort is stable, so sorting an already sorted list is a no-op.
func SortNotifications(list []model.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		return model.NotificationLess(list[i], list[j])
	})
}

// Start enters the logged-in lifecycle for sess: it fetches the list and
// opens one push subscription. Starting again with the same token does
// nothing; a different token replaces the previous lifecycle. A nil
// session is the same as Stop. The returned error is the initial fetch
// failure, if any; the subscription is opened regardless.
func (s *Synchronizer) Start(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.Token == "" {
		s.Stop()
		return nil
	}

	s.mu.Lock()
	if s.session != nil && s.session.Token == sess.Token {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.Stop()

	current := *sess
	stopPoll := make(chan struct{})

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.session = &current
	s.state = StateConnecting
	s.stopPoll = stopPoll
	s.mu.Unlock()
	s.notify()

	s.log.WithField("email", sess.Email).Info("starting notification sync")

	refreshErr := s.Refresh(ctx)

	if s.dial != nil {
		conn, err := s.dial(context.Background(), current.Token, push.Listener{
			OnMessage:    func(body []byte) { s.handlePush(gen, body) },
			OnConnect:    func() { s.setState(gen, StateConnected) },
			OnDisconnect: func(error) { s.setState(gen, StateConnecting) },
		})
		if err != nil {
			s.log.WithError(err).Warn("opening push channel")
		} else {
			s.mu.Lock()
			if s.generation != gen {
				s.mu.Unlock()
				_ = conn.Close()
				return refreshErr
			}
			s.conn = conn
			s.mu.Unlock()
		}
	}

	go s.poll(gen, stopPoll)

	return refreshErr
}

// Stop leaves the logged-in lifecycle: the push subscription is closed,
// the list is cleared, and the state becomes Disconnected.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	if s.session == nil && s.conn == nil && s.stopPoll == nil {
		s.mu.Unlock()
		return
	}

	s.generation++
	conn := s.conn
	s.conn = nil
	if s.stopPoll != nil {
		close(s.stopPoll)
		s.stopPoll = nil
	}
	s.session = nil
	s.items = nil
	s.loading = false
	s.state = StateDisconnected
	s.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			s.log.WithError(err).Debug("closing push channel")
		}
	}
	s.log.Info("notification sync stopped")
	s.notify()
}

// Refresh replaces the list with the server's. On failure the list is
// cleared rather than left stale. Without a session the list is empty.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	sess := s.session
	gen := s.generation
	if sess == nil {
		s.items = nil
		s.loading = false
		s.mu.Unlock()
		s.notify()
		return nil
	}
	s.loading = true
	s.mu.Unlock()
	s.notify()

	list, err := s.api.ListNotifications(ctx, sess.Token)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return nil
	}
	s.loading = false
	if err != nil {
		s.items = nil
	} else {
		s.items = append([]model.Notification(nil), list...)
		SortNotifications(s.items)
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.log.WithError(err).Warn("fetching notifications")
		return fmt.Errorf("refreshing notifications: %w", err)
	}
	return nil
}

// MarkAsRead flips one notification to read locally, then confirms with
// the server. A failed confirmation triggers a full Refresh.
func (s *Synchronizer) MarkAsRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	sess := s.session
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
		}
	}
	SortNotifications(s.items)
	s.mu.Unlock()
	s.notify()

	if sess == nil {
		return nil
	}

	if err := s.api.MarkNotificationRead(ctx, id, sess.Token); err != nil {
		s.log.WithError(err).WithField("id", id).Warn("marking notification read")
		_ = s.Refresh(ctx)
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllAsRead flips every notification to read locally, then confirms
// with the server. A failed confirmation triggers a full Refresh.
func (s *Synchronizer) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	sess := s.session
	for i := range s.items {
		s.items[i].Read = true
	}
	SortNotifications(s.items)
	s.mu.Unlock()
	s.notify()

	if sess == nil {
		return nil
	}

	if err := s.api.MarkAllNotificationsRead(ctx, sess.Token); err != nil {
		s.log.WithError(err).Warn("marking all notifications read")
		_ = s.Refresh(ctx)
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// handlePush merges a pushed notification into the list. Payloads that
// are not a notification are logged and dropped.
func (s *Synchronizer) handlePush(gen uint64, body []byte) {
	if !gjson.ValidBytes(body) || !gjson.GetBytes(body, "id").Exists() {
		s.log.WithField("payload", string(body)).Warn("dropping malformed push payload")
		return
	}

	var n model.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		s.log.WithError(err).Warn("dropping malformed push payload")
		return
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	merged := make([]model.Notification, 0, len(s.items)+1)
	merged = append(merged, n)
	for _, existing := range s.items {
		if existing.ID != n.ID {
			merged = append(merged, existing)
		}
	}
	SortNotifications(merged)
	s.items = merged
	s.mu.Unlock()

	s.log.WithField("id", n.ID).Debug("notification pushed")
	s.notify()
}

func (s *Synchronizer) setState(gen uint64, state State) {
	s.mu.Lock()
	if s.generation != gen || s.session == nil {
		s.mu.Unlock()
		return
	}
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Notifications returns a copy of the current, sorted list.
func (s *Synchronizer) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.items...)
}

// UnreadCount returns the number of unread notifications.
func (s *Synchronizer) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Loading reports whether a fetch is in flight.
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// State returns the lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
