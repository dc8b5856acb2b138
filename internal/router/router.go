package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/movie-auth-service/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/movie-auth-service/internal/middleware" // import middleware for token authentication and role enforcement
)

// The administrative role required by the role/permission manager routes.
// The role itself is seeded by the migrations; granting it to the first
// operator account is a deployment step.
const roleAdmin = "admin"

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints.  Unauthenticated
// operations live under /v1/auth; logout and /v1/auth/me require a valid
// access token.  The rate limiter wraps the credential endpoints, which
// are the brute-force targets.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authorize echo.MiddlewareFunc, ratelimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login, ratelimit)
	g.POST("/refresh", a.Refresh, ratelimit)
	g.POST("/logout", a.Logout, authorize)
	g.GET("/me", a.Me, authorize)
}

// RegisterUsers wires the user CRUD endpoints.  Registration is open;
// everything else needs an authenticated caller, and role grants are
// admin-only.  Each route states its own requirement so the access rules
// are readable straight off the registrations.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, authorize echo.MiddlewareFunc) {
	e.POST("/v1/users", u.Register)

	g := e.Group("/v1/users", authorize)
	g.GET("", u.List)
	g.GET("/:id", u.Get)
	g.PUT("/:id", u.Update)
	g.PATCH("/:id", u.PartialUpdate)
	g.DELETE("/:id", u.Delete)
	g.POST("/:id/roles", u.GrantRole, middleware.RequireRole(roleAdmin))
}

// RegisterRBAC wires the role and permission manager.  All of it is
// admin-only: these endpoints shape what every other token in the system
// can do.
func RegisterRBAC(e *echo.Echo, r *handler.RoleHandler, p *handler.PermissionHandler, authorize echo.MiddlewareFunc) {
	admin := middleware.RequireRole(roleAdmin)

	roles := e.Group("/v1/roles", authorize, admin)
	roles.POST("", r.Create)
	roles.GET("", r.List)
	roles.GET("/:id", r.Get)
	roles.PUT("/:id", r.Update)
	roles.PATCH("/:id", r.Update)
	roles.DELETE("/:id", r.Delete)
	roles.POST("/:id/permissions", r.GrantPermissions)
	roles.GET("/:id/permissions", r.GetPermissions)

	perms := e.Group("/v1/permissions", authorize, admin)
	perms.POST("", p.Create)
	perms.GET("", p.List)
	perms.GET("/:id", p.Get)
	perms.PUT("/:id", p.Update)
	perms.PATCH("/:id", p.Update)
	perms.DELETE("/:id", p.Delete)
}
