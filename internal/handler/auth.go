package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // sentinel comparisons for token failures
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/movie-auth-service/internal/auth"
	"github.com/iliyamo/movie-auth-service/internal/middleware"
	"github.com/iliyamo/movie-auth-service/internal/model"
	"github.com/iliyamo/movie-auth-service/internal/repository"
)

// UserLookup is the slice of the user repository the auth endpoints need:
// resolving a username to a live account with roles loaded. Satisfied by
// repository.UserRepo.
type UserLookup interface {
	GetActiveByUsernameWithRoles(ctx context.Context, username string) (model.User, error)
}

// AuthHandler bundles dependencies for the login/refresh/logout endpoints.
type AuthHandler struct {
	Users  UserLookup
	Tokens *auth.TokenService
}

func NewAuthHandler(u UserLookup, t *auth.TokenService) *AuthHandler {
	return &AuthHandler{Users: u, Tokens: t}
}

// dummyHash is a valid bcrypt hash of no real account's password. The
// unknown-username branch of Login runs a comparison against it so both
// failure paths cost one bcrypt verification and response timing does not
// reveal whether the username exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// tokenResp mirrors the body shape the movie and comment services already
// consume from this endpoint.
type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
}

// Login verifies credentials and returns a fresh token pair. The access
// token embeds the user's role names as of this moment; the refresh token
// carries only the subject.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetActiveByUsernameWithRoles(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same answer and same bcrypt cost as a bad password; neither the
			// body nor the timing reveals which half failed.
			auth.VerifyPassword(dummyHash, req.Password)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "username or password incorrect"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "username or password incorrect"})
	}

	pair, err := h.Tokens.Issue(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.Tokens.AccessTTL().Seconds()),
	})
}

// Refresh exchanges a valid refresh token for a new pair. The used refresh
// token is revoked for its remaining lifetime, and the new access token
// snapshots the user's current roles, so role changes made since the
// original login take effect here.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	claims, err := h.Tokens.Decode(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, auth.ErrTokenRevoked) {
			// Reuse of a revoked refresh token is a forbidden action by a
			// structurally valid credential, not a failed authentication.
			return c.JSON(http.StatusForbidden, echo.Map{"error": "refresh token revoked"})
		}
		if errors.Is(err, auth.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		c.Logger().Errorf("refresh: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authorization check failed"})
	}
	if claims.TokenType != auth.TypeRefresh {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "token not refresh"})
	}

	u, err := h.Users.GetActiveByUsernameWithRoles(ctx, claims.Subject)
	if err != nil {
		// A user deleted or deactivated since issuance can no longer refresh.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	// Retire the presented token before issuing its replacement; failing
	// open here would leave two live refresh tokens for one session.
	if err := h.Tokens.RevokeRefresh(ctx, claims); err != nil {
		c.Logger().Errorf("refresh revoke: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	pair, err := h.Tokens.Issue(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.Tokens.AccessTTL().Seconds()),
	})
}

// Logout revokes the presented access token and its paired refresh token.
// Entries expire from the deny list together with the tokens they shadow.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := c.Get(middleware.ContextClaims).(*auth.Claims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, claims); err != nil {
		c.Logger().Errorf("logout: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated caller's identity and the role snapshot
// carried by the presented token.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roles, _ := c.Get(middleware.ContextRoles).([]string)
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  u.ID,
		"username": u.Username,
		"email":    u.Email,
		"is_admin": u.IsAdmin,
		"roles":    roles,
	})
}
