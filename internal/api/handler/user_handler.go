package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/task-api/internal/api/metrics"
	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// UserHandler handles HTTP requests for accounts, sessions and avatars.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Register creates a new account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := h.service.Register(c.Request().Context(), ports.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrEmailTaken) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	metrics.UsersRegisteredTotal.Inc()
	return c.JSON(http.StatusCreated, authResponse{User: result.User, Token: result.Token})
}

// Login authenticates by email and password and mints a session token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "unable to login"})
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{User: result.User, Token: result.Token})
}

// Logout revokes the session token used on this request.
//
// @Summary      Logout the current session
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	user, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Logout(c.Request().Context(), user, token); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusOK)
}

// LogoutAll revokes every session token of the caller.
//
// @Summary      Logout all sessions
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/logoutAll [post]
func (h *UserHandler) LogoutAll(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.LogoutAll(c.Request().Context(), user); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusOK)
}

// Me returns the authenticated user's profile.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial profile update. Fields outside
// {name, email, password, age} reject the whole request.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.User
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	updated, err := h.service.Update(c.Request().Context(), user, updates)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidUpdate) || errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrEmailTaken) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusCreated, updated)
}

// DeleteMe removes the account and all owned tasks.
//
// @Summary      Delete own account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	deleted, err := h.service.Delete(c.Request().Context(), user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, deleted)
}

// UploadAvatar stores a resized avatar from the multipart field "avatar".
//
// @Summary      Upload avatar
// @Tags         users
// @Accept       multipart/form-data
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file (jpg, jpeg or png, max 1000000 bytes)"
// @Success      200
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "avatar file is required"})
	}
	file, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unable to read avatar file"})
	}
	defer file.Close()

	if err := h.service.SetAvatar(c.Request().Context(), user, fh.Filename, fh.Size, file); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.AvatarUploadsTotal.WithLabelValues("rejected").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	metrics.AvatarUploadsTotal.WithLabelValues("ok").Inc()
	return c.NoContent(http.StatusOK)
}

// DeleteAvatar removes the stored avatar.
//
// @Summary      Delete avatar
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAvatar(c.Request().Context(), user); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusOK)
}

// GetAvatar serves a user's avatar publicly as PNG.
//
// @Summary      Fetch a user's avatar
// @Tags         users
// @Produce      png
// @Param        id   path  string  true  "User id"
// @Success      200  {file}  binary
// @Failure      404
// @Router       /users/{id}/avatar [get]
func (h *UserHandler) GetAvatar(c echo.Context) error {
	data, err := h.service.Avatar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	return c.Blob(http.StatusOK, "image/png", data)
}
