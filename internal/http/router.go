package http

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/todovault/todovault/internal/auth"
	"github.com/todovault/todovault/internal/config"
	"github.com/todovault/todovault/internal/http/handlers"
	"github.com/todovault/todovault/internal/http/middlewares"
	"github.com/todovault/todovault/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// UserStore is everything the router needs from a user store: the admin CRUD
// surface plus the name lookup login uses.
type UserStore interface {
	handlers.UserStore
	handlers.UserReader
}

// Deps carries the wired stores so tests can hand in in-memory twins.
type Deps struct {
	Users  UserStore
	Todos  handlers.TodoStore
	Tokens *auth.Manager
	PingDB func(context.Context) error

	// optional; nil disables metrics collection and the /metrics route
	Metrics  *observability.Prom
	Registry *prometheus.Registry
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("todovault"))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	}

	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinHandleMiddleware())
	}

	// ops routes

	h := handlers.NewHealthHandler(deps.PingDB)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// login is the only route outside the auth gate

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	r.GET("/login", authHandler.Login)

	authMW := middlewares.NewAuthMiddleware(deps.Tokens, deps.Users)

	// admin-only account management

	usersHandler := handlers.NewUsersHandler(deps.Users)
	userRoutes := r.Group("/user", authMW.RequireAuth(), authMW.RequireAdmin())
	userRoutes.GET("", usersHandler.ListUsers)
	userRoutes.GET("/:public_id", usersHandler.GetUser)
	userRoutes.POST("", usersHandler.CreateUser)
	userRoutes.PUT("/:public_id", usersHandler.PromoteUser)
	userRoutes.DELETE("/:public_id", usersHandler.DeleteUser)

	// per-user todos

	todosHandler := handlers.NewTodosHandler(deps.Todos)
	todoRoutes := r.Group("/todo", authMW.RequireAuth())
	todoRoutes.GET("", todosHandler.ListTodos)
	todoRoutes.GET("/:id", todosHandler.GetTodo)
	todoRoutes.POST("", todosHandler.CreateTodo)
	todoRoutes.PUT("/:id", todosHandler.CompleteTodo)
	todoRoutes.DELETE("/:id", todosHandler.DeleteTodo)

	return r
}
