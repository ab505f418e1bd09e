package main

import (
	"log"

	"twitchgame/config"
	"twitchgame/handlers"
	"twitchgame/middleware"
	"twitchgame/models"
	"twitchgame/routes"
	"twitchgame/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.GameSession{},
		&models.PlayerScore{},
		&models.Leaderboard{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(cfg.JWTSecret)
	sessionService := services.NewSessionService(db, redisClient)
	userService := services.NewUserService(db)

	// Initialize the coordinator: room registry + websocket hub
	registry := services.NewRoomRegistry()
	hub := services.NewHub(registry, sessionService)

	// Initialize handlers
	gameHandler := handlers.NewGameHandler(sessionService)
	userHandler := handlers.NewUserHandler(userService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS(cfg.FrontendURL))

	// Setup routes
	routes.SetupRoutes(router, gameHandler, userHandler, hub, authService)

	// Start server
	log.Printf("Server starting on %s:%s", cfg.BindAddress, cfg.Port)
	log.Printf("WebSocket available on ws://%s:%s/ws", cfg.BindAddress, cfg.Port)
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
