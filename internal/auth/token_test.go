package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-auth-service/internal/model"
)

// fakeRevoker is an in-memory deny list with TTL semantics.
type fakeRevoker struct {
	mu      sync.Mutex
	entries map[string]time.Time // jti -> expiry
	err     error                // when set, every call fails
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{entries: make(map[string]time.Time)}
}

func (f *fakeRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	exp, ok := f.entries[jti]
	return ok && time.Now().Before(exp), nil
}

func testKeys(t *testing.T) KeyPair {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return KeyPair{Private: priv, Public: &priv.PublicKey}
}

func testUser() model.User {
	return model.User{
		ID:       42,
		Username: "alice",
		Roles:    []model.Role{{ID: 1, Name: "admin"}, {ID: 2, Name: "editor"}},
	}
}

func TestIssueAndDecode(t *testing.T) {
	t.Parallel()

	revoker := newFakeRevoker()
	svc := NewTokenService(testKeys(t), 15*time.Minute, 24*time.Hour, revoker)
	ctx := context.Background()

	pair, err := svc.Issue(testUser())
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := svc.Decode(ctx, pair.AccessToken)
	require.NoError(t, err)
	refresh, err := svc.Decode(ctx, pair.RefreshToken)
	require.NoError(t, err)

	t.Run("types are stamped", func(t *testing.T) {
		require.Equal(t, TypeAccess, access.TokenType)
		require.Equal(t, TypeRefresh, refresh.TokenType)
	})

	t.Run("access carries the full payload", func(t *testing.T) {
		require.Equal(t, "alice", access.Subject)
		require.Equal(t, uint64(42), access.UserID)
		require.Equal(t, []string{"admin", "editor"}, access.Roles)
		require.NotEmpty(t, access.ID)
		require.Equal(t, refresh.ID, access.RefreshID)
	})

	t.Run("refresh payload is minimal", func(t *testing.T) {
		require.Equal(t, "alice", refresh.Subject)
		require.Zero(t, refresh.UserID)
		require.Empty(t, refresh.Roles)
		require.Empty(t, refresh.RefreshID)
	})

	t.Run("identifiers are unique per token", func(t *testing.T) {
		require.NotEqual(t, access.ID, refresh.ID)

		again, err := svc.Issue(testUser())
		require.NoError(t, err)
		claims, err := svc.Decode(ctx, again.AccessToken)
		require.NoError(t, err)
		require.NotEqual(t, access.ID, claims.ID)
	})

	t.Run("expiries follow configured TTLs", func(t *testing.T) {
		require.WithinDuration(t, time.Now().Add(15*time.Minute), access.ExpiresAt.Time, time.Minute)
		require.WithinDuration(t, time.Now().Add(24*time.Hour), refresh.ExpiresAt.Time, time.Minute)
	})
}

func TestDecodeRejectsBadTokens(t *testing.T) {
	t.Parallel()

	revoker := newFakeRevoker()
	svc := NewTokenService(testKeys(t), 15*time.Minute, 24*time.Hour, revoker)
	ctx := context.Background()

	t.Run("malformed", func(t *testing.T) {
		_, err := svc.Decode(ctx, "not.a.jwt")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := NewTokenService(testKeys(t), 15*time.Minute, 24*time.Hour, revoker)
		pair, err := other.Issue(testUser())
		require.NoError(t, err)
		_, err = svc.Decode(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		stale := NewTokenService(testKeys(t), 15*time.Minute, 24*time.Hour, revoker)
		stale.now = func() time.Time { return time.Now().UTC().Add(-2 * time.Hour) }
		pair, err := stale.Issue(testUser())
		require.NoError(t, err)
		_, err = stale.Decode(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRevokeBlocksDecode(t *testing.T) {
	t.Parallel()

	revoker := newFakeRevoker()
	svc := NewTokenService(testKeys(t), 15*time.Minute, 24*time.Hour, revoker)
	ctx := context.Background()

	pair, err := svc.Issue(testUser())
	require.NoError(t, err)
	access, err := svc.Decode(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, access))

	t.Run("access token stays rejected", func(t *testing.T) {
		_, err := svc.Decode(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("paired refresh token is rejected too", func(t *testing.T) {
		_, err := svc.Decode(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("other sessions are unaffected", func(t *testing.T) {
		other, err := svc.Issue(testUser())
		require.NoError(t, err)
		_, err = svc.Decode(ctx, other.AccessToken)
		require.NoError(t, err)
	})
}

func TestRevokeRefreshRetiresOnlyRefresh(t *testing.T) {
	t.Parallel()

	revoker := newFakeRevoker()
	svc := NewTokenService(testKeys(t), 15*time.Minute, 24*time.Hour, revoker)
	ctx := context.Background()

	pair, err := svc.Issue(testUser())
	require.NoError(t, err)
	refresh, err := svc.Decode(ctx, pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeRefresh(ctx, refresh))

	_, err = svc.Decode(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// The access token of the rotated-away pair rides out its natural expiry.
	_, err = svc.Decode(ctx, pair.AccessToken)
	require.NoError(t, err)
}

func TestDecodeFailsClosedOnCacheError(t *testing.T) {
	t.Parallel()

	revoker := newFakeRevoker()
	svc := NewTokenService(testKeys(t), 15*time.Minute, 24*time.Hour, revoker)
	ctx := context.Background()

	pair, err := svc.Issue(testUser())
	require.NoError(t, err)

	revoker.err = errors.New("connection refused")
	_, err = svc.Decode(ctx, pair.AccessToken)
	require.Error(t, err)
	// An unreachable cache is not the same as an invalid token; callers map
	// it to a server-side failure, never to a silent pass.
	require.NotErrorIs(t, err, ErrInvalidToken)
	require.NotErrorIs(t, err, ErrTokenRevoked)
}

func TestRoleSnapshotIsPerIssue(t *testing.T) {
	t.Parallel()

	revoker := newFakeRevoker()
	svc := NewTokenService(testKeys(t), 15*time.Minute, 24*time.Hour, revoker)
	ctx := context.Background()

	u := testUser()
	first, err := svc.Issue(u)
	require.NoError(t, err)

	// Roles change between issuances; the old token keeps its snapshot.
	u.Roles = []model.Role{{ID: 3, Name: "viewer"}}
	second, err := svc.Issue(u)
	require.NoError(t, err)

	oldClaims, err := svc.Decode(ctx, first.AccessToken)
	require.NoError(t, err)
	newClaims, err := svc.Decode(ctx, second.AccessToken)
	require.NoError(t, err)

	require.Equal(t, []string{"admin", "editor"}, oldClaims.Roles)
	require.Equal(t, []string{"viewer"}, newClaims.Roles)
}
