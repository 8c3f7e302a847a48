package handlers

import (
	"errors"
	"net/http"
	"strings"

	"ai-chat-api/internal/database"
	"ai-chat-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateChatRequest represents the request payload for creating a chat
type CreateChatRequest struct {
	Title   string `json:"title" binding:"required"`
	ModelID string `json:"modelId" binding:"required"`
}

// UpdateChatRequest represents the request payload for renaming a chat or
// switching its model
type UpdateChatRequest struct {
	Title   *string `json:"title"`
	ModelID *string `json:"modelId"`
}

// findOwnChat loads a chat scoped to the authenticated user, writing the
// error response itself on failure.
func findOwnChat(c *gin.Context, chatID, userID string) (*models.Chat, bool) {
	var chat models.Chat
	result := database.GetDB().Where("id = ? AND user_id = ?", chatID, userID).First(&chat)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat"})
		}
		return nil, false
	}
	return &chat, true
}

// CreateChat handles POST /api/chats
func CreateChat(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must not be blank"})
		return
	}

	chat := models.Chat{
		ID:      uuid.NewString(),
		Title:   req.Title,
		ModelID: req.ModelID,
		UserID:  userID,
	}
	if err := database.GetDB().Create(&chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat"})
		return
	}

	c.JSON(http.StatusCreated, chat)
}

// GetChats handles GET /api/chats
// Returns the authenticated user's chats, newest first.
func GetChats(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var chats []models.Chat
	if err := database.GetDB().Where("user_id = ?", userID).Order("created_at DESC").Find(&chats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chats": chats,
		"count": len(chats),
	})
}

// GetChatByID handles GET /api/chats/:id
// Returns a single chat with its message count.
func GetChatByID(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	chat, ok := findOwnChat(c, c.Param("id"), userID)
	if !ok {
		return
	}

	var messageCount int64
	if err := database.GetDB().Model(&models.Message{}).Where("chat_id = ?", chat.ID).Count(&messageCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chat":         chat,
		"messageCount": messageCount,
	})
}

// UpdateChat handles PATCH /api/chats/:id
func UpdateChat(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	chat, ok := findOwnChat(c, c.Param("id"), userID)
	if !ok {
		return
	}

	var req UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title must not be blank"})
			return
		}
		chat.Title = *req.Title
	}
	if req.ModelID != nil {
		chat.ModelID = *req.ModelID
	}

	if err := database.GetDB().Save(chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update chat"})
		return
	}

	c.JSON(http.StatusOK, chat)
}

// DeleteChat handles DELETE /api/chats/:id
// Deletes the chat and its messages.
func DeleteChat(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	chat, ok := findOwnChat(c, c.Param("id"), userID)
	if !ok {
		return
	}

	if err := database.GetDB().Where("chat_id = ?", chat.ID).Delete(&models.Message{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete messages"})
		return
	}
	if err := database.GetDB().Delete(chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Chat deleted successfully",
		"id":      chat.ID,
	})
}
