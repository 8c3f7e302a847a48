package routes

import (
	"ai-chat-api/internal/config"
	"ai-chat-api/internal/handlers"
	"ai-chat-api/internal/middleware"
	"ai-chat-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all endpoints. The realtime hub is constructed by the
// caller and threaded into every handler that delivers events.
func SetupRoutes(cfg *config.Config, hub *realtime.Hub) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":      "ok",
			"connections": hub.Registry().Len(),
		})
	})

	// Websocket endpoint is public: connections authenticate in-band after
	// connect via an auth frame.
	ginRouter.GET("/ws", handlers.WebSocket(hub.Registry(), hub, cfg.Websocket))

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Chat endpoints
		protectedRoutes.POST("/chats", handlers.CreateChat)
		protectedRoutes.GET("/chats", handlers.GetChats)
		protectedRoutes.GET("/chats/:id", handlers.GetChatByID)
		protectedRoutes.PATCH("/chats/:id", handlers.UpdateChat)
		protectedRoutes.DELETE("/chats/:id", handlers.DeleteChat)
		// Message endpoints
		protectedRoutes.GET("/chats/:id/messages", handlers.GetMessages)
		protectedRoutes.POST("/chats/:id/messages", handlers.CreateMessage(hub))
		protectedRoutes.POST("/chats/:id/generate", handlers.GenerateReply(hub))
		// Rule endpoints
		protectedRoutes.POST("/rules", handlers.ProposeRule(hub))
		protectedRoutes.GET("/rules", handlers.GetRules)
		protectedRoutes.PATCH("/rules/:id", handlers.UpdateRule)
		// Misc endpoints
		protectedRoutes.GET("/users", handlers.GetAllUsers)
		protectedRoutes.GET("/me", handlers.GetMe)
		protectedRoutes.GET("/models", handlers.GetModels(cfg.Models))
		protectedRoutes.GET("/suggestions", handlers.GetSuggestions())
	}

	return ginRouter
}
