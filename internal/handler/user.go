package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-auth-service/internal/config"
	"github.com/iliyamo/movie-auth-service/internal/model"
	"github.com/iliyamo/movie-auth-service/internal/queue"
	"github.com/iliyamo/movie-auth-service/internal/repository"
	queuepublisher "github.com/iliyamo/movie-auth-service/internal/service"
)

// UserHandler bundles dependencies for user CRUD endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type createUserReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// updateUserReq covers both PUT and PATCH. For PATCH, nil fields are left
// untouched; for PUT the handler requires username and email.
type updateUserReq struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}

type userResp struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Register creates a user account. Open to unauthenticated callers; new
// accounts start with no roles and are granted them by an admin later.
func (h *UserHandler) Register(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return writeRepoError(c, err)
	}

	// Audit trail; a broker outage must not fail the registration.
	_ = queuepublisher.PublishAuthEvent(ctx, queue.AuthEvent{
		Type:       queue.EventUserCreated,
		UserID:     u.ID,
		Username:   u.Username,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, toUserResp(u))
}

// List returns all active users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListActive(ctx)
	if err != nil {
		return writeRepoError(c, err)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single active user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetActiveByID(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Update replaces the user's identity fields (PUT). username and email are
// required; password, is_active and is_admin keep their stored values when
// omitted, since passwords are never echoed back and a strict full-replace
// would force a password change on every update.
func (h *UserHandler) Update(c echo.Context) error {
	return h.update(c, false)
}

// PartialUpdate sets only the provided fields (PATCH).
func (h *UserHandler) PartialUpdate(c echo.Context) error {
	return h.update(c, true)
}

func (h *UserHandler) update(c echo.Context, partial bool) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !partial && (req.Username == nil || req.Email == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Update(ctx, id, repository.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
	}, h.Cfg.BcryptCost)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Delete soft-deletes a user: the row keeps its history but the account is
// deactivated and disappears from every active lookup.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SoftDelete(ctx, id); err != nil {
		return writeRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type grantRoleReq struct {
	RoleID uint64 `json:"role_id"`
}

// GrantRole appends a role to a user. Users already holding a valid access
// token keep their old snapshot until they refresh.
func (h *UserHandler) GrantRole(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req grantRoleReq
	if err := c.Bind(&req); err != nil || req.RoleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.GrantRole(ctx, id, req.RoleID); err != nil {
		return writeRepoError(c, err)
	}

	_ = queuepublisher.PublishAuthEvent(ctx, queue.AuthEvent{
		Type:       queue.EventRoleGranted,
		UserID:     id,
		RoleID:     req.RoleID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.NoContent(http.StatusOK)
}
