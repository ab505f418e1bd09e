package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceRoundtrip(t *testing.T) {
	svc := NewAuthService("test-secret")

	token, err := svc.GenerateToken(42, "streamer_bob")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), identity.UserID)
	assert.Equal(t, "streamer_bob", identity.Username)
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	svc := NewAuthService("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", mustToken(t, NewAuthService("other-secret"), 42, "streamer_bob")},
		{"missing user id", mustToken(t, svc, 0, "anonymous")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func mustToken(t *testing.T, svc *AuthService, userID uint, username string) string {
	t.Helper()
	token, err := svc.GenerateToken(userID, username)
	require.NoError(t, err)
	return token
}
