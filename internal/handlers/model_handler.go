package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetModels returns a handler listing the model ids chats can be created
// with. The list comes from configuration; model availability itself is the
// inference provider's concern.
// GET /api/models
func GetModels(modelIDs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"models": modelIDs,
			"count":  len(modelIDs),
		})
	}
}
