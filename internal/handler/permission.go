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

// PermissionHandler bundles dependencies for permission CRUD endpoints.
type PermissionHandler struct {
	Permissions *repository.PermissionRepo
}

func NewPermissionHandler(p *repository.PermissionRepo) *PermissionHandler {
	return &PermissionHandler{Permissions: p}
}

type permissionResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPermissionResp(p model.Permission) permissionResp {
	return permissionResp{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

// Create adds a permission; duplicate names are a 400.
func (h *PermissionHandler) Create(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Permissions.Create(ctx, req.Name)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, toPermissionResp(p))
}

// List returns all live permissions.
func (h *PermissionHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	perms, err := h.Permissions.List(ctx)
	if err != nil {
		return writeRepoError(c, err)
	}
	out := make([]permissionResp, 0, len(perms))
	for _, p := range perms {
		out = append(out, toPermissionResp(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single live permission.
func (h *PermissionHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Permissions.GetByID(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, toPermissionResp(p))
}

// Update renames a permission; PUT and PATCH share this handler since name
// is the only mutable field.
func (h *PermissionHandler) Update(c echo.Context) error {
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

	p, err := h.Permissions.Rename(ctx, id, req.Name)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, toPermissionResp(p))
}

// Delete soft-deletes a permission.
func (h *PermissionHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Permissions.SoftDelete(ctx, id); err != nil {
		return writeRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
