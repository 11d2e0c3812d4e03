package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhive/task-api/internal/api/handler"
	"github.com/taskhive/task-api/internal/api/middleware"
	"github.com/taskhive/task-api/internal/core/ports"
	"github.com/taskhive/task-api/internal/core/service"
	"github.com/taskhive/task-api/internal/infrastructure/config"
	mongodb "github.com/taskhive/task-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskhive/task-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	notifier ports.Notifier,
	cfg *config.Config,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskapi"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	throttle := redisdb.NewLoginThrottle(rdb)

	userService := service.NewUserService(userRepo, taskRepo, notifier, throttle, cfg.JWTSecret, cfg.TokenTTL, log)
	taskService := service.NewTaskService(taskRepo, log)

	userHandler := handler.NewUserHandler(userService)
	taskHandler := handler.NewTaskHandler(taskService)
	authGuard := middleware.Auth(cfg.JWTSecret, userRepo)

	// --- User routes ---
	e.POST("/users", userHandler.Register)
	e.POST("/users/login", userHandler.Login)
	e.POST("/users/logout", userHandler.Logout, authGuard)
	e.POST("/users/logoutAll", userHandler.LogoutAll, authGuard)
	e.GET("/users/me", userHandler.Me, authGuard)
	e.PATCH("/users/me", userHandler.UpdateMe, authGuard)
	e.DELETE("/users/me", userHandler.DeleteMe, authGuard)
	e.POST("/users/me/avatar", userHandler.UploadAvatar, authGuard)
	e.DELETE("/users/me/avatar", userHandler.DeleteAvatar, authGuard)
	e.GET("/users/:id/avatar", userHandler.GetAvatar) // public

	// --- Task routes (all owner-scoped) ---
	e.POST("/tasks", taskHandler.Create, authGuard)
	e.GET("/tasks", taskHandler.List, authGuard)
	e.GET("/tasks/:id", taskHandler.Get, authGuard)
	e.PATCH("/tasks/:id", taskHandler.Update, authGuard)
	e.DELETE("/tasks/:id", taskHandler.Delete, authGuard)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
