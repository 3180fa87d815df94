package auth

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/core-coin/go-core/v2/accounts"
	"github.com/core-coin/go-core/v2/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracta-city/fracta/internal/models"
)

const wallet = "cb0000000000000000000000000000000000000000aa"

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "fracta.city", 30*time.Minute)

	token, issued, err := svc.GenerateAccessToken(7, wallet)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, wallet, claims.Subject)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, issued.ID, claims.ID)
	assert.InDelta(t, (30 * time.Minute).Seconds(), svc.RemainingTTL(claims).Seconds(), 5)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secret", "fracta.city", time.Minute)

	t.Run("expired", func(t *testing.T) {
		past := NewJWTService("secret", "fracta.city", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := past.GenerateAccessToken(1, wallet)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		var appErr *models.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.KindUnauthenticated, appErr.Kind)
		assert.Equal(t, "token has expired", appErr.Message)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewJWTService("other", "fracta.city", time.Minute)
		token, _, err := other.GenerateAccessToken(1, wallet)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService("secret", "someone-else", time.Minute)
		token, _, err := other.GenerateAccessToken(1, wallet)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestCoreRecoverer(t *testing.T) {
	key, err := crypto.GenerateKey(rand.Reader)
	require.NoError(t, err)
	message := "Fracta.city Login\nWallet: " + key.Address().Hex()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)

	r := CoreRecoverer{}
	address, err := r.RecoverAddress(message, sig)
	require.NoError(t, err)
	assert.Equal(t, key.Address().Hex(), address)
	assert.Len(t, address, 44)

	// a different message yields no valid signer
	_, err = r.RecoverAddress(message+"x", sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = r.RecoverAddress(message, sig[:65])
	assert.ErrorIs(t, err, ErrInvalidSignature)

	tampered := append([]byte(nil), sig...)
	tampered[0] ^= 0xff
	_, err = r.RecoverAddress(message, tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMemoryStore_ChallengeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.SaveChallenge(ctx, wallet, "hello", time.Minute))

	msg, err := s.ConsumeChallenge(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg)

	_, err = s.ConsumeChallenge(ctx, wallet)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestMemoryStore_ChallengeExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.SaveChallenge(ctx, wallet, "hello", time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := s.ConsumeChallenge(ctx, wallet)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestMemoryStore_Revocation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Revoke(ctx, "jti-1", time.Minute))
	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
