package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken(t *testing.T) {
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker("test_secret_key_1234567890", tokenTTL)

	tests := []struct {
		name   string
		userID string
		role   string
	}{
		{"creator", "8a4c6a7e-4d6f-4a53-9a1e-2f7a0f0b1c11", "creator"},
		{"consumer", "1b2c3d4e-0000-4000-8000-000000000001", "consumer"},
		{"admin", "1b2c3d4e-0000-4000-8000-000000000002", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.userID, claims.Subject)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_GenerateToken_EmptyUser(t *testing.T) {
	maker := NewJWTMaker("secret", time.Minute)
	_, err := maker.GenerateToken("", "creator")
	assert.Error(t, err)
}

func TestJWTMaker_ParseToken_Invalid(t *testing.T) {
	maker := NewJWTMaker("secret", time.Minute)
	other := NewJWTMaker("other-secret", time.Minute)

	foreign, err := other.GenerateToken("u1", "creator")
	require.NoError(t, err)

	expiredMaker := NewJWTMaker("secret", time.Minute)
	expiredMaker.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredMaker.GenerateToken("u1", "creator")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, CustomClaims{UserID: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"wrong signature", foreign},
		{"expired", expired},
		{"alg none", noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
