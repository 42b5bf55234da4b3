package session

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marketplace/internal/model"
)

func newTestStore(t *testing.T) (*Store, keyring.Keyring) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	return NewStore(ring, nil), ring
}

func TestLoad_Empty(t *testing.T) {
	s, _ := newTestStore(t)

	sess, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSaveLoadClear(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Save(model.Session{
		Token: "t1", TokenType: "Bearer", Email: "a@b.c", Type: model.RoleCustomer,
	}))
	require.NoError(t, s.Save(model.Session{
		Token: "t2", TokenType: "Bearer", Email: "m@b.c", Type: model.RoleMerchant,
	}))

	sess, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "t2", sess.Token)
	assert.True(t, sess.IsMerchant())

	require.NoError(t, s.Clear())
	sess, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestLoad_CorruptIsAbsent(t *testing.T) {
	s, ring := newTestStore(t)
	require.NoError(t, ring.Set(keyring.Item{Key: itemKey, Data: []byte("{not json")}))

	sess, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}
