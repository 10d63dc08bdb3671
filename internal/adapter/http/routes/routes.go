package routes

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"todolist/internal/adapter/http/handler"
	"todolist/internal/adapter/http/middleware"
	"todolist/internal/core/telemetry"
	"todolist/pkg/config"
	"todolist/pkg/logger"
)

type HandlersConfig struct {
	TodoHandler    *handler.TodoHandler
	CommentHandler *handler.CommentHandler
	PageHandler    *handler.PageHandler
}

type Dependencies struct {
	Metrics        *telemetry.AppMetrics
	Logger         *logger.Logger
	RateLimitStore middleware.RateLimitStore
	Templates      *template.Template
}

func SetupRouter(handlers HandlersConfig, deps Dependencies, cfg *config.AppConfig) *gin.Engine {
	router := gin.New()

	setupMiddleware(router, deps, cfg)

	if deps.Templates != nil {
		router.SetHTMLTemplate(deps.Templates)
	}

	router.Static(cfg.Storage.URLPrefix, cfg.Storage.UploadDir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if handlers.TodoHandler != nil && handlers.CommentHandler != nil {
		setupAPIRoutes(router, handlers.TodoHandler, handlers.CommentHandler)
	}

	if handlers.PageHandler != nil {
		setupPageRoutes(router, handlers.PageHandler)
	}

	return router
}

func setupMiddleware(router *gin.Engine, deps Dependencies, cfg *config.AppConfig) {
	router.Use(gin.Recovery())

	router.Use(middleware.NewHTTPSEnforcer(cfg.EnforceHTTPS, deps.Logger.Logger).HTTPSMiddleware())

	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(middleware.CurrentMiddleware())

	router.Use(middleware.LoggingMiddleware(deps.Logger))

	if cfg.RateLimit.Enabled && deps.RateLimitStore != nil {
		rateLimiter := middleware.NewRateLimiter(deps.RateLimitStore, cfg.RateLimit.Routes, deps.Logger.Logger, deps.Metrics)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	if deps.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(deps.Metrics))
	}
}

func setupAPIRoutes(router *gin.Engine, todoHandler *handler.TodoHandler, commentHandler *handler.CommentHandler) {
	api := router.Group("/api")
	{
		api.GET("/todos", todoHandler.GetAllTodos)
		api.POST("/todos", todoHandler.CreateTodo)
		api.GET("/todos/:id", todoHandler.GetTodo)
		api.PUT("/todos/:id", todoHandler.UpdateTodo)
		api.DELETE("/todos/:id", todoHandler.DeleteTodo)

		api.GET("/comments", commentHandler.GetComments)
		api.POST("/comments", commentHandler.CreateComment)
	}
}

func setupPageRoutes(router *gin.Engine, pages *handler.PageHandler) {
	router.GET("/", pages.Index)

	actions := router.Group("/actions")
	{
		actions.POST("/create", pages.Create)
		actions.POST("/update", pages.Update)
		actions.POST("/delete", pages.Delete)
		actions.POST("/updateStatus", pages.UpdateStatus)
		actions.POST("/addcomment", pages.AddComment)
	}

	todos := router.Group("/todos")
	{
		todos.GET("", pages.TodosLayout)
		todos.GET("/:id", pages.TodosDetail)
		todos.POST("/:id/addcomment", pages.TodosAddComment)
		todos.POST("/:id/updateStatus", pages.TodosUpdateStatus)
	}

	todo := router.Group("/todo")
	{
		todo.GET("", pages.NewTodo)
		todo.POST("/createTodo", pages.CreateTodo)
		todo.GET("/:id", pages.TodoPage)
		todo.POST("/:id/createTodo", pages.TodoCreateTodo)
		todo.POST("/:id/updateTodo", pages.TodoUpdateTodo)
		todo.POST("/:id/updateStatus", pages.TodoUpdateStatus)
		todo.POST("/:id/addComment", pages.TodoAddComment)
	}
}

// WithCORS wraps the router for the configured origins.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler(next)
}
