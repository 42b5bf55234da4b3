package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectToken(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token := signed(t, jwt.RegisteredClaims{
		Subject:   "ada@example.com",
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
	})

	info, err := InspectToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", info.Subject)
	assert.True(t, info.IssuedAt.Equal(issued))
	assert.True(t, info.HasExpiry())
	assert.False(t, info.Expired(issued.Add(30*time.Minute)))
	assert.True(t, info.Expired(issued.Add(2*time.Hour)))
}

func TestInspectToken_NoExpiry(t *testing.T) {
	info, err := InspectToken(signed(t, jwt.RegisteredClaims{Subject: "x"}))
	require.NoError(t, err)
	assert.False(t, info.HasExpiry())
	assert.False(t, info.Expired(time.Now()))
}

func TestInspectToken_Opaque(t *testing.T) {
	_, err := InspectToken("customer-token")
	assert.Error(t, err)
}
