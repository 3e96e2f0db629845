package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nkashyap/taskhub-backend/internal/handlers"
	"github.com/nkashyap/taskhub-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	UserHandler         *handlers.UserHandler
	TaskHandler         *handlers.TaskHandler
	NotificationHandler *handlers.NotificationHandler
	EventsHandler       *handlers.EventsHandler
	CORSOrigins         string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if cfg.CORSOrigins != "" {
		origins = strings.Split(cfg.CORSOrigins, ",")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)

		protected := auth.Group("")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		protected.POST("/refresh", cfg.AuthHandler.Refresh)
		protected.POST("/logout", cfg.AuthHandler.Logout)
		protected.GET("/users", cfg.UserHandler.ListUsers)
		protected.GET("/me", cfg.UserHandler.GetMe)
	}

	tasks := api.Group("/tasks")
	tasks.Use(cfg.AuthMiddleware.RequireAuth())
	{
		tasks.POST("", cfg.TaskHandler.CreateTask)
		tasks.GET("", cfg.TaskHandler.ListTasks)
		tasks.PUT("/:id", cfg.TaskHandler.UpdateTask)
		tasks.DELETE("/:id", cfg.TaskHandler.DeleteTask)
	}

	notifications := api.Group("/notifications")
	notifications.Use(cfg.AuthMiddleware.RequireAuth())
	{
		notifications.GET("", cfg.NotificationHandler.ListNotifications)
		notifications.PUT("/:id/read", cfg.NotificationHandler.MarkRead)
	}

	events := api.Group("/events")
	events.Use(cfg.AuthMiddleware.RequireAuth())
	events.GET("/stream", cfg.EventsHandler.Stream)

	return router
}
