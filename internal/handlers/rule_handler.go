package handlers

import (
	"errors"
	"net/http"
	"strings"

	"ai-chat-api/internal/database"
	"ai-chat-api/internal/models"
	"ai-chat-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProposeRuleRequest represents the request payload for proposing a rule
type ProposeRuleRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateRuleRequest accepts or dismisses a proposed rule
type UpdateRuleRequest struct {
	Status models.RuleStatus `json:"status" binding:"required"`
}

// ProposeRule handles POST /api/rules
// Persists a proposed rule and pushes rule:proposed to the user's live
// connections, whatever rooms they are in.
func ProposeRule(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
			return
		}

		var req ProposeRuleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Content must not be blank"})
			return
		}

		rule := models.Rule{
			ID:      uuid.NewString(),
			Content: req.Content,
			Status:  models.RuleProposed,
			UserID:  userID,
		}
		if err := database.GetDB().Create(&rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
			return
		}

		hub.DeliverToUser(userID, realtime.NewRuleProposed(rule))

		c.JSON(http.StatusCreated, rule)
	}
}

// GetRules handles GET /api/rules
func GetRules(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var rules []models.Rule
	if err := database.GetDB().Where("user_id = ?", userID).Order("created_at DESC").Find(&rules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rules": rules,
		"count": len(rules),
	})
}

// UpdateRule handles PATCH /api/rules/:id
func UpdateRule(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.RuleAccepted && req.Status != models.RuleDismissed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be accepted or dismissed"})
		return
	}

	var rule models.Rule
	result := database.GetDB().Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&rule)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rule"})
		}
		return
	}

	rule.Status = req.Status
	if err := database.GetDB().Model(&rule).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rule"})
		return
	}

	c.JSON(http.StatusOK, rule)
}
