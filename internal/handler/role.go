package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-auth-service/internal/model"
	"github.com/iliyamo/movie-auth-service/internal/repository"
)

// RoleHandler bundles dependencies for role CRUD and grant endpoints.
type RoleHandler struct {
	Roles *repository.RoleRepo
}

func NewRoleHandler(r *repository.RoleRepo) *RoleHandler {
	return &RoleHandler{Roles: r}
}

// ----- DTOs -----

type nameReq struct {
	Name string `json:"name"`
}

type roleResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRoleResp(r model.Role) roleResp {
	return roleResp{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// rolePermissionsResp is the read-optimized projection for the role ->
// permissions listing: ids and names only, no timestamps.
type rolePermissionsResp struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Permissions []idName `json:"permissions"`
}
type idName struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Create adds a role. A second role with the same name is rejected with a
// 400 and the original is left untouched.
func (h *RoleHandler) Create(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.Create(ctx, req.Name)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, toRoleResp(role))
}

// List returns all live roles.
func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	roles, err := h.Roles.List(ctx)
	if err != nil {
		return writeRepoError(c, err)
	}
	out := make([]roleResp, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single live role.
func (h *RoleHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.GetByID(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResp(role))
}

// Update renames a role. PUT and PATCH share this handler: a role's only
// mutable field is its name.
func (h *RoleHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.Rename(ctx, id, req.Name)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResp(role))
}

// Delete soft-deletes a role. Tokens already carrying the role keep it
// until they expire or are refreshed.
func (h *RoleHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Roles.SoftDelete(ctx, id); err != nil {
		return writeRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type grantPermissionsReq struct {
	PermissionIDs []uint64 `json:"permission_ids"`
}

// GrantPermissions idempotently appends permissions to a role. Repeating
// ids or re-granting an existing association is harmless; an unknown
// permission id fails the whole request with a 404.
func (h *RoleHandler) GrantPermissions(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req grantPermissionsReq
	if err := c.Bind(&req); err != nil || len(req.PermissionIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "permission_ids required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Roles.GrantPermissions(ctx, id, req.PermissionIDs); err != nil {
		return writeRepoError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// GetPermissions returns a role together with its permissions, projected
// down to ids and names.
func (h *RoleHandler) GetPermissions(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.GetWithPermissions(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	resp := rolePermissionsResp{
		ID:          role.ID,
		Name:        role.Name,
		Permissions: make([]idName, 0, len(role.Permissions)),
	}
	for _, p := range role.Permissions {
		resp.Permissions = append(resp.Permissions, idName{ID: p.ID, Name: p.Name})
	}
	return c.JSON(http.StatusOK, resp)
}
