package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "errors"
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/movie-auth-service/internal/auth"
    "github.com/iliyamo/movie-auth-service/internal/model"
)

// Context keys populated by Authorize and read by handlers and RequireRole.
const (
    ContextUser   = "user"   // model.User, live row with roles loaded
    ContextClaims = "claims" // *auth.Claims from the presented access token
    ContextRoles  = "roles"  // []string role snapshot from the token
)

// UserLookup resolves the token subject to a live user record.  Satisfied
// by repository.UserRepo; kept as an interface so middleware tests can
// substitute a stub.
type UserLookup interface {
    GetActiveByUsernameWithRoles(ctx context.Context, username string) (model.User, error)
}

// Authorize returns an Echo middleware that validates a Bearer access token
// and loads the authenticated user into the request context.  The checks
// run in order: signature and expiry, revocation cache (an unreachable
// cache fails the request, it never bypasses the check), token type, then
// a live lookup of the subject.  Soft-deleted or deactivated accounts are
// rejected even while their tokens are still unexpired.
func Authorize(tokens *auth.TokenService, users UserLookup) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(header, "Bearer ")

            ctx := c.Request().Context()
            claims, err := tokens.Decode(ctx, raw)
            if err != nil {
                if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
                }
                // Revocation cache unreachable; refusing is the only safe answer.
                c.Logger().Errorf("authorize: %v", err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authorization check failed"})
            }
            if claims.TokenType != auth.TypeAccess {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "wrong token type"})
            }

            user, err := users.GetActiveByUsernameWithRoles(ctx, claims.Subject)
            if err != nil {
                // Missing, deactivated and soft-deleted users all read the same
                // to the caller.
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            c.Set(ContextUser, user)
            c.Set(ContextClaims, claims)
            c.Set(ContextRoles, claims.Roles)
            return next(c)
        }
    }
}
