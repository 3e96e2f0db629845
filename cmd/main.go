package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nkashyap/taskhub-backend/internal/db"
	"github.com/nkashyap/taskhub-backend/internal/handlers"
	"github.com/nkashyap/taskhub-backend/internal/logger"
	"github.com/nkashyap/taskhub-backend/internal/middleware"
	"github.com/nkashyap/taskhub-backend/internal/realtime"
	"github.com/nkashyap/taskhub-backend/internal/repos"
	"github.com/nkashyap/taskhub-backend/internal/server"
	"github.com/nkashyap/taskhub-backend/internal/services"
	"github.com/nkashyap/taskhub-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	taskRepo := repos.NewTaskRepo(thePG, log)

	// Realtime hub
	hub := realtime.NewHub(log)

	// Services
	authService := services.NewAuthService(
		thePG,
		log,
		userRepo,
		userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(thePG, log, userRepo)
	notifier := services.NewTaskNotifier(&services.HubEmitter{Hub: hub})
	taskService := services.NewTaskService(thePG, log, taskRepo, userRepo, notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler(log, userService)
	taskHandler := handlers.NewTaskHandler(log, taskService)
	notificationHandler := handlers.NewNotificationHandler()
	eventsHandler := handlers.NewEventsHandler(log, hub)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		UserHandler:         userHandler,
		TaskHandler:         taskHandler,
		NotificationHandler: notificationHandler,
		EventsHandler:       eventsHandler,
		CORSOrigins:         utils.GetEnv("CORS_ORIGINS", "", log),
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
