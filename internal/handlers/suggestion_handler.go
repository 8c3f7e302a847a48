package handlers

import (
	"net/http"
	"time"

	"ai-chat-api/internal/cache"

	"github.com/gin-gonic/gin"
)

// Suggestion is one prompt template offered to a user starting a chat.
type Suggestion struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

const suggestionsTTL = 5 * time.Minute

// defaultSuggestions stands in for the template store; real deployments
// would load these per user.
var defaultSuggestions = []Suggestion{
	{ID: "sg-1", Title: "Summarize", Prompt: "Summarize the following text in three bullet points:"},
	{ID: "sg-2", Title: "Explain code", Prompt: "Explain what this code does, step by step:"},
	{ID: "sg-3", Title: "Brainstorm", Prompt: "Give me ten ideas for:"},
	{ID: "sg-4", Title: "Improve writing", Prompt: "Rewrite this to be clearer and more concise:"},
}

// GetSuggestions returns a handler serving prompt suggestion templates
// through a TTL cache, keyed per user so personalization can slot in later.
// GET /api/suggestions
func GetSuggestions() gin.HandlerFunc {
	store := cache.New[string, []Suggestion]()

	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
			return
		}

		suggestions, ok := store.Get(userID)
		if !ok {
			suggestions = defaultSuggestions
			store.Set(userID, suggestions, suggestionsTTL)
		}

		c.JSON(http.StatusOK, gin.H{
			"suggestions": suggestions,
			"count":       len(suggestions),
		})
	}
}
