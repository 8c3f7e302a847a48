package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"ai-chat-api/internal/auth"
	"ai-chat-api/internal/config"
	"ai-chat-api/internal/database"
	"ai-chat-api/internal/realtime"
	"ai-chat-api/internal/routes"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	auth.Configure(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL)

	// Init database
	database.InitDB(cfg.Database.DSN)

	// The registry/hub pair is built here and injected everywhere it is
	// needed; nothing else owns realtime lifecycle.
	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry, slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ginRoutes := routes.SetupRoutes(cfg, hub)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("API endpoints:")
	log.Println("  POST   /api/register")
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/chats")
	log.Println("  POST   /api/chats")
	log.Println("  GET    /api/chats/:id/messages")
	log.Println("  POST   /api/chats/:id/messages")
	log.Println("  POST   /api/chats/:id/generate")
	log.Println("  GET    /api/rules")
	log.Println("  GET    /ws")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
