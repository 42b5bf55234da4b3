package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/sirupsen/logrus"

	"github.com/nhle/marketplace/internal/model"
)

// itemKey is the keyring entry holding the serialized session.
const itemKey = "auth"

// Store persists the single logged-in session.
type Store struct {
	ring keyring.Keyring
	log  *logrus.Entry
}

// NewStore creates a session store over ring.
func NewStore(ring keyring.Keyring, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{ring: ring, log: log.WithField("component", "session")}
}

// Save replaces any stored session with sess.
func (s *Store) Save(sess model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	err = s.ring.Set(keyring.Item{
		Key:         itemKey,
		Data:        data,
		Label:       "Marketplace session",
		Description: "Marketplace API bearer token",
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Load returns the stored session, or nil when there is none. A corrupt
// entry is treated as absent.
func (s *Store) Load() (*model.Session, error) {
	item, err := s.ring.Get(itemKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(item.Data, &sess); err != nil || sess.Token == "" {
		s.log.Warn("ignoring unreadable stored session")
		return nil, nil
	}
	return &sess, nil
}

// Clear removes the stored session. Clearing when nothing is stored is
// not an error.
func (s *Store) Clear() error {
	err := s.ring.Remove(itemKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
