package service

import (
	"testing"
	"time"

	"agora/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService(TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		AccessTTL:     time.Hour,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshTTL:    24 * time.Hour,
	})
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService()

	pair, err := svc.IssuePair("user-1", "a@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	refresh, err := svc.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refresh.Subject)

	identity, err := svc.VerifyAccessIdentity(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.AuthenticatedIdentity{UserID: "user-1", Email: "a@example.com"}, identity)
}

func TestTokenService_DistinctWithinOneSecond(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService()
	fixed := time.Now()
	svc.now = func() time.Time { return fixed }

	first, err := svc.IssuePair("user-1", "a@example.com")
	require.NoError(t, err)
	second, err := svc.IssuePair("user-1", "a@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}

func TestTokenService_RejectsInvalidTokens(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService()
	pair, err := svc.IssuePair("user-1", "a@example.com")
	require.NoError(t, err)

	expiredSvc := newTestTokenService()
	expiredSvc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, err := expiredSvc.IssuePair("user-1", "a@example.com")
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "someone-else",
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	foreignToken, err := foreign.SignedString([]byte("access-secret-for-tests"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"Empty", ""},
		{"Garbage", "not-a-jwt"},
		{"Tampered", pair.AccessToken + "x"},
		{"Refresh As Access", pair.RefreshToken},
		{"Expired", expired.AccessToken},
		{"Wrong Issuer", foreignToken},
		{"Alg None", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_MissingRefreshSecret(t *testing.T) {
	t.Parallel()
	svc := NewTokenService(TokenConfig{AccessSecret: "a", AccessTTL: time.Minute})

	assert.False(t, svc.RefreshConfigured())
	_, err := svc.IssuePair("user-1", "a@example.com")
	assert.True(t, models.HasCode(err, models.CodeConfiguration))
	_, err = svc.VerifyRefresh("anything")
	assert.True(t, models.HasCode(err, models.CodeConfiguration))
}
