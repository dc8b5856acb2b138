package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-auth-service/internal/auth"
	"github.com/iliyamo/movie-auth-service/internal/model"
	"github.com/iliyamo/movie-auth-service/internal/repository"
)

type stubRevoker struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevoker) Revoke(_ context.Context, jti string, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.revoked[jti] = true
	return nil
}

func (s *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

type stubUsers struct {
	users map[string]model.User
}

func (s *stubUsers) GetActiveByUsernameWithRoles(_ context.Context, username string) (model.User, error) {
	u, ok := s.users[username]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func newTestTokenService(t *testing.T, revoker auth.Revoker) *auth.TokenService {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := auth.KeyPair{Private: priv, Public: &priv.PublicKey}
	return auth.NewTokenService(keys, 15*time.Minute, 24*time.Hour, revoker)
}

func invokeAuthorize(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, mw(next)(c))
	return rec, c
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	revoker := &stubRevoker{revoked: map[string]bool{}}
	tokens := newTestTokenService(t, revoker)

	alice := model.User{
		ID:       7,
		Username: "alice",
		IsActive: true,
		Roles:    []model.Role{{ID: 1, Name: "admin"}},
	}
	users := &stubUsers{users: map[string]model.User{"alice": alice}}
	mw := Authorize(tokens, users)

	pair, err := tokens.Issue(alice)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		rec, _ := invokeAuthorize(t, mw, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid access token populates context", func(t *testing.T) {
		rec, c := invokeAuthorize(t, mw, "Bearer "+pair.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code)

		got, ok := c.Get(ContextUser).(model.User)
		require.True(t, ok)
		require.Equal(t, uint64(7), got.ID)

		roles, ok := c.Get(ContextRoles).([]string)
		require.True(t, ok)
		require.Equal(t, []string{"admin"}, roles)

		claims, ok := c.Get(ContextClaims).(*auth.Claims)
		require.True(t, ok)
		require.Equal(t, auth.TypeAccess, claims.TokenType)
	})

	t.Run("refresh token is the wrong type", func(t *testing.T) {
		rec, _ := invokeAuthorize(t, mw, "Bearer "+pair.RefreshToken)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec, _ := invokeAuthorize(t, mw, "Bearer nonsense")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown or deactivated subject", func(t *testing.T) {
		gone, err := tokens.Issue(model.User{ID: 8, Username: "bob"})
		require.NoError(t, err)
		rec, _ := invokeAuthorize(t, mw, "Bearer "+gone.AccessToken)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		claims, err := tokens.Decode(context.Background(), pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, tokens.Revoke(context.Background(), claims))

		rec, _ := invokeAuthorize(t, mw, "Bearer "+pair.AccessToken)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthorizeFailsClosedOnCacheOutage(t *testing.T) {
	t.Parallel()

	revoker := &stubRevoker{revoked: map[string]bool{}}
	tokens := newTestTokenService(t, revoker)
	alice := model.User{ID: 7, Username: "alice", IsActive: true}
	users := &stubUsers{users: map[string]model.User{"alice": alice}}
	mw := Authorize(tokens, users)

	pair, err := tokens.Issue(alice)
	require.NoError(t, err)

	revoker.err = errors.New("connection refused")
	rec, _ := invokeAuthorize(t, mw, "Bearer "+pair.AccessToken)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
