package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-auth-service/internal/middleware"
	"github.com/iliyamo/movie-auth-service/internal/model"
	"github.com/iliyamo/movie-auth-service/internal/repository"
)

// parseID reads a numeric path parameter. A second return value of false
// means the response has already been written.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user stored by the Authorize
// middleware.
func currentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(middleware.ContextUser).(model.User)
	return u, ok
}

// writeRepoError translates repository sentinels into their stable HTTP
// responses. Anything unrecognized is a server fault; the raw error is
// logged but never echoed to the client.
func writeRepoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrDuplicateUsername):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already exists"})
	case errors.Is(err, repository.ErrDuplicateEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrDuplicateName):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name already exists"})
	}
	c.Logger().Errorf("repository error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
