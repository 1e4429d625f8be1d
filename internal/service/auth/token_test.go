package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/bazaar/internal/cache"
	"github.com/Additional-Code/bazaar/internal/config"
	"github.com/Additional-Code/bazaar/internal/entity"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func testTokens(t *testing.T) *Tokens {
	t.Helper()
	cfg := config.Config{
		Auth: config.Auth{
			JWTSecret:       "unit-test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			Issuer:          "bazaar",
		},
	}
	return NewTokens(cfg, newMemoryStore())
}

func testUser() *entity.User {
	return &entity.User{ID: "user-1", Email: "u@example.com", Role: entity.RoleUser}
}

func TestIssueAndVerify(t *testing.T) {
	tokens := testTokens(t)
	ctx := context.Background()

	pair, err := tokens.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, entity.RoleUser, claims.Role)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	tokens := testTokens(t)
	ctx := context.Background()

	pair, err := tokens.Issue(testUser())
	require.NoError(t, err)

	_, err = tokens.VerifyRefresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tokens.VerifyAccess(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRevokedTokenIsUnusable(t *testing.T) {
	tokens := testTokens(t)
	ctx := context.Background()

	pair, err := tokens.Issue(testUser())
	require.NoError(t, err)

	claims, err := tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, claims))

	_, err = tokens.VerifyAccess(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// The refresh token carries a different id and stays valid.
	_, err = tokens.VerifyRefresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	tokens := testTokens(t)
	other := NewTokens(config.Config{
		Auth: config.Auth{JWTSecret: "different", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, Issuer: "bazaar"},
	}, newMemoryStore())

	pair, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = tokens.VerifyAccess(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredTokenRejected(t *testing.T) {
	tokens := testTokens(t)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }

	cfgPast := tokens.cfg
	cfgPast.AccessTokenTTL = time.Minute
	tokens.cfg = cfgPast

	pair, err := tokens.Issue(testUser())
	require.NoError(t, err)

	_, err = tokens.VerifyAccess(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
