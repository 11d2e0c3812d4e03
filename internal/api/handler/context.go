package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/task-api/internal/api/middleware"
	"github.com/taskhive/task-api/internal/core/domain"
)

// ctxSession extracts the user and raw token injected by the Auth
// middleware. Presence proves the middleware ran; absence on a protected
// route is a wiring bug surfaced as 401.
func ctxSession(c echo.Context) (*domain.User, string, error) {
	user, _ := c.Get(middleware.ContextKeyUser).(*domain.User)
	if user == nil {
		return nil, "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	token, _ := c.Get(middleware.ContextKeyToken).(string)
	return user, token, nil
}
