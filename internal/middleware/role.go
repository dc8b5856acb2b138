package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware function that enforces that the
// authenticated caller holds at least one of the named roles.  The role
// set is read from the context under ContextRoles, where Authorize stored
// the snapshot carried in the access token.  Each route declares its own
// requirement at registration time, so the required roles are visible next
// to the route definition rather than buried in handler logic.  If the
// caller's roles do not intersect the allowed set, the request is aborted
// with a 403 Forbidden response.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant‑time lookups.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            held, ok := c.Get(ContextRoles).([]string)
            if !ok {
                // Authorize did not run; treat as missing roles.
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            for _, r := range held {
                if allowed[r] {
                    return next(c)
                }
            }
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
    }
}
