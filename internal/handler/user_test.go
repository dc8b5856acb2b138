package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-auth-service/internal/config"
	"github.com/iliyamo/movie-auth-service/internal/repository"
)

func invokeUserUpdate(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h(c))
	return rec
}

// PUT requires the identity fields; the request is rejected before any
// storage access, so the handler under test needs no live repository.
func TestUserUpdateRequiresIdentityFields(t *testing.T) {
	t.Parallel()

	h := NewUserHandler(config.Config{}, repository.NewUserRepo(nil))

	t.Run("missing email", func(t *testing.T) {
		rec := invokeUserUpdate(t, h.Update, `{"username":"alice"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing username", func(t *testing.T) {
		rec := invokeUserUpdate(t, h.Update, `{"email":"alice@example.com"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
