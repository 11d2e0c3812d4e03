package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/task-api/internal/api/metrics"
	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// TaskHandler handles HTTP requests for tasks. All routes run behind the
// auth guard; the owner id always comes from the resolved session, never
// from the request.
//
// Note on statuses: task reads and updates answer 201 on success. That is
// the observed contract of the service being reimplemented and is kept
// verbatim.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create adds a task owned by the caller.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	task, err := h.service.Create(c.Request().Context(), user.ID, ports.CreateTaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	metrics.TasksCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, task)
}

// List returns the caller's tasks, filtered, paginated and sorted from
// query-string parameters. Invalid numbers parse as "no limit"/"no skip";
// any sort direction other than "asc" sorts descending.
//
// @Summary      List own tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        completed  query  string  false  "Filter by completion (true/false)"
// @Param        limit      query  int     false  "Max results (absent = all)"
// @Param        skip       query  int     false  "Results to skip"
// @Param        sortBy     query  string  false  "field_dir, e.g. createdAt_asc"
// @Success      201  {array}   domain.Task
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	query := ports.ListTasksQuery{
		Limit:  parseQueryInt(c.QueryParam("limit")),
		Skip:   parseQueryInt(c.QueryParam("skip")),
		SortBy: c.QueryParam("sortBy"),
	}
	if s := c.QueryParam("completed"); s != "" {
		completed := s == "true"
		query.Completed = &completed
	}

	tasks, err := h.service.List(c.Request().Context(), user.ID, query)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusCreated, tasks)
}

// Get returns a single owned task.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      201  {object}  domain.Task
// @Failure      401  {object}  errorResponse
// @Failure      404
// @Failure      500  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusCreated, task)
}

// Update applies a partial update to an owned task. Fields outside
// {description, completed} reject the whole request.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      201  {object}  domain.Task
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404
// @Failure      500  {object}  errorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	task, err := h.service.Update(c.Request().Context(), user.ID, c.Param("id"), updates)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidUpdate), errors.Is(err, domain.ErrValidation):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrTaskNotFound):
			return c.NoContent(http.StatusNotFound)
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
	}

	return c.JSON(http.StatusCreated, task)
}

// Delete removes an owned task and returns it.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  domain.Task
// @Failure      401  {object}  errorResponse
// @Failure      404
// @Failure      500  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	task, err := h.service.Delete(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, task)
}

// parseQueryInt parses a non-negative integer query parameter. Missing or
// unparseable values mean "not set".
func parseQueryInt(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
