package models

import (
	"gorm.io/gorm"
)

// MessageRole distinguishes who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message represents one entry in a chat transcript.
type Message struct {
	ID      string      `json:"id" gorm:"primaryKey"`
	ChatID  string      `json:"chatId" gorm:"column:chat_id;index;not null"`
	Role    MessageRole `json:"role" gorm:"not null;default:'user'"`
	Content string      `json:"content" gorm:"not null"`
	ModelID string      `json:"modelId,omitempty" gorm:"column:model_id"`
	UserID  string      `json:"-" gorm:"column:user_id;index"`
	gorm.Model
}

// TableName specifies the table name for Message Model
func (Message) TableName() string {
	return "messages"
}
