// Package services provides technical concerns used by the HTTP layer, such as bot tokens
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(t *testing.T) *TokenServiceImpl {
	t.Helper()
	service, err := NewTokenService(15*time.Minute, 7*24*time.Hour, "test-issuer", "test-audience", false, "", "", testSecret)
	require.NoError(t, err)
	return service.(*TokenServiceImpl)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{name: "valid symmetric key configuration", secretKey: testSecret},
		{name: "missing secret key", secretKey: "", expectError: true},
		{name: "rsa without keys", useRSAKeys: true, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(time.Minute, time.Hour, "iss", "aud", tt.useRSAKeys, "", "", tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateAndValidateBotTokens(t *testing.T) {
	service := createTestTokenService(t)

	accessToken, refreshToken, err := service.GenerateBotTokens("topup-bot")
	require.NoError(t, err)
	assert.NotEqual(t, accessToken, refreshToken)

	claims, err := service.ValidateBotToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "topup-bot", claims.BotName)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))

	t.Run("RefreshTokenIsNotAnAccessToken", func(t *testing.T) {
		_, err := service.ValidateBotToken(refreshToken)
		assert.ErrorIs(t, err, ErrTokenWrongType)
	})

	t.Run("Garbage", func(t *testing.T) {
		for _, token := range []string{"", "invalid.token.format", accessToken + "x"} {
			_, err := service.ValidateBotToken(token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		}
	})

	t.Run("OtherSecret", func(t *testing.T) {
		other, err := NewTokenService(15*time.Minute, time.Hour, "test-issuer", "test-audience", false, "", "", "another-secret-key-for-jwt-signing")
		require.NoError(t, err)
		_, err = other.ValidateBotToken(accessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("OtherAudience", func(t *testing.T) {
		other, err := NewTokenService(15*time.Minute, time.Hour, "test-issuer", "other-audience", false, "", "", testSecret)
		require.NoError(t, err)
		_, err = other.ValidateBotToken(accessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestBotTokenExpiration(t *testing.T) {
	service := createTestTokenService(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	accessToken, _, err := service.GenerateBotTokens("topup-bot")
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)
	_, err = service.ValidateBotToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshBotTokens(t *testing.T) {
	service := createTestTokenService(t)

	accessToken, refreshToken, err := service.GenerateBotTokens("topup-bot")
	require.NoError(t, err)

	newAccess, newRefresh, err := service.RefreshBotTokens(refreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, accessToken, newAccess)
	assert.NotEqual(t, refreshToken, newRefresh)

	claims, err := service.ValidateBotToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, "topup-bot", claims.BotName)

	_, _, err = service.RefreshBotTokens(accessToken)
	assert.ErrorIs(t, err, ErrTokenWrongType)

	_, _, err = service.RefreshBotTokens("invalid.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
