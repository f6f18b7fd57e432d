package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ripple/chat-server/config"
	"ripple/chat-server/db"
	"ripple/chat-server/handlers"
	"ripple/chat-server/middleware"
	"ripple/chat-server/services"
	"ripple/chat-server/utils"
	"ripple/chat-server/ws"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize logger
	logger := utils.NewLogger(cfg.Environment)

	// Connect to database
	database, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Redis is only used for last-seen tracking; the chat path survives
	// without it.
	var tracker *services.PresenceTracker
	if redisClient, err := services.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, last-seen tracking disabled", "error", err)
	} else {
		defer redisClient.Close()
		tracker = services.NewPresenceTracker(redisClient, logger)
	}

	// Cloudinary is optional in the same way; without it image uploads fail
	// with a clear error.
	var uploader handlers.ImageUploader
	if cfg.CloudinaryURL != "" {
		cloudinaryUploader, err := services.NewCloudinaryUploader(cfg.CloudinaryURL, cfg.MaxImageBytes)
		if err != nil {
			logger.Fatal("Failed to configure Cloudinary", "error", err)
		}
		uploader = cloudinaryUploader
	} else {
		logger.Warn("CLOUDINARY_URL not set, image uploads disabled")
	}

	// Start the realtime hub
	var presenceSink ws.PresenceSink
	if tracker != nil {
		presenceSink = tracker
	}
	hub := ws.NewHub(presenceSink, logger)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(database, cfg, uploader, logger)
	messageHandler := handlers.NewMessageHandler(database, hub, uploader, logger)
	roomHandler := handlers.NewRoomHandler(database, hub, uploader, logger)
	presenceHandler := handlers.NewPresenceHandler(hub, tracker, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.CORSOrigin))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "chat-server",
			"version": "1.0.0",
		})
	})

	// WebSocket endpoint
	router.GET("/ws", middleware.Auth(cfg.JWTSecret), ws.ServeWS(hub, cfg.CORSOrigin, logger))

	// API routes
	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)

			protected := auth.Group("")
			protected.Use(middleware.Auth(cfg.JWTSecret))
			{
				protected.PUT("/update-profile", authHandler.UpdateProfile)
				protected.POST("/change-password", authHandler.ChangePassword)
				protected.GET("/check", authHandler.CheckAuth)
			}
		}

		messages := api.Group("/messages")
		messages.Use(middleware.Auth(cfg.JWTSecret))
		{
			messages.GET("/users", messageHandler.GetUsers)
			messages.GET("/:id", messageHandler.GetMessages)
			messages.POST("/send/:id", messageHandler.SendMessage)
		}

		rooms := api.Group("/rooms")
		rooms.Use(middleware.Auth(cfg.JWTSecret))
		{
			rooms.POST("/create", roomHandler.CreateRoom)
			rooms.GET("/my-rooms", roomHandler.GetUserRooms)
			rooms.POST("/invite", roomHandler.InviteUser)
			rooms.GET("/invitations", roomHandler.GetInvitations)
			rooms.POST("/invitation/respond", roomHandler.RespondInvitation)
			rooms.GET("/:roomId/messages", roomHandler.GetRoomMessages)
			rooms.POST("/:roomId/send", roomHandler.SendRoomMessage)
			rooms.DELETE("/:roomId", roomHandler.DeleteRoom)
		}

		presence := api.Group("/presence")
		presence.Use(middleware.Auth(cfg.JWTSecret))
		{
			presence.GET("/online", presenceHandler.GetOnlineUsers)
			presence.GET("/status", presenceHandler.GetStatus)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Chat Server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop the realtime hub
	hub.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
