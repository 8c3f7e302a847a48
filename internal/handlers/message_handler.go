package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-chat-api/internal/database"
	"ai-chat-api/internal/models"
	"ai-chat-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateMessageRequest represents the request payload for posting a message
type CreateMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// generateStepDelay paces the staged progress events of the reply pipeline.
// Indirection for tests.
var generateStepDelay = 150 * time.Millisecond

// GetMessages handles GET /api/chats/:id/messages
func GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	chat, ok := findOwnChat(c, c.Param("id"), userID)
	if !ok {
		return
	}

	var messages []models.Message
	if err := database.GetDB().Where("chat_id = ?", chat.ID).Order("created_at ASC").Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// CreateMessage handles POST /api/chats/:id/messages
// Persists the user message, then fans it out to every connection currently
// in the chat's room.
func CreateMessage(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
			return
		}

		chat, ok := findOwnChat(c, c.Param("id"), userID)
		if !ok {
			return
		}

		var req CreateMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Content must not be blank"})
			return
		}

		msg := models.Message{
			ID:      uuid.NewString(),
			ChatID:  chat.ID,
			Role:    models.RoleUser,
			Content: req.Content,
			UserID:  userID,
		}
		if err := database.GetDB().Create(&msg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create message"})
			return
		}

		hub.DeliverToRoom(chat.ID, realtime.NewMessage(msg))

		c.JSON(http.StatusCreated, msg)
	}
}

// GenerateReply handles POST /api/chats/:id/generate
// Kicks off the assistant reply pipeline for the chat's latest user message
// and returns immediately; the result arrives over the realtime channel as
// typing, progress and message events.
func GenerateReply(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
			return
		}

		chat, ok := findOwnChat(c, c.Param("id"), userID)
		if !ok {
			return
		}

		var lastUserMsg models.Message
		err := database.GetDB().
			Where("chat_id = ? AND role = ?", chat.ID, models.RoleUser).
			Order("created_at DESC").
			First(&lastUserMsg).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Chat has no user message to reply to"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
			}
			return
		}

		db := database.GetDB()
		go runReplyPipeline(hub, db, *chat, lastUserMsg)

		c.JSON(http.StatusAccepted, gin.H{
			"message": "Generation started",
			"chatId":  chat.ID,
			"modelId": chat.ModelID,
		})
	}
}

// runReplyPipeline produces one assistant message for the chat, emitting
// typing and progress events along the way. Model inference is an external
// collaborator; here a canned completion stands in for it so the event flow
// stays exercisable end to end.
func runReplyPipeline(hub *realtime.Hub, db *gorm.DB, chat models.Chat, prompt models.Message) {
	hub.DeliverToRoom(chat.ID, realtime.NewModelTyping(true, chat.ID, chat.ModelID))
	defer hub.DeliverToRoom(chat.ID, realtime.NewModelTyping(false, chat.ID, chat.ModelID))

	for _, p := range []int{25, 50, 75} {
		time.Sleep(generateStepDelay)
		hub.DeliverToRoom(chat.ID, realtime.NewProgressUpdate(chat.ID, p, "generating"))
	}

	reply := models.Message{
		ID:      uuid.NewString(),
		ChatID:  chat.ID,
		Role:    models.RoleAssistant,
		Content: fmt.Sprintf("[%s] Echo: %s", chat.ModelID, prompt.Content),
		ModelID: chat.ModelID,
		UserID:  chat.UserID,
	}
	if err := db.Create(&reply).Error; err != nil {
		hub.DeliverToRoom(chat.ID, realtime.NewProgressUpdate(chat.ID, 100, "failed"))
		return
	}

	hub.DeliverToRoom(chat.ID, realtime.NewProgressUpdate(chat.ID, 100, "done"))
	hub.DeliverToRoom(chat.ID, realtime.NewMessage(reply))
}
