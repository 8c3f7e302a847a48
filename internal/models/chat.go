package models

import (
	"gorm.io/gorm"
)

// Chat represents one conversation between a user and a model. The chat id
// doubles as the realtime room id for event delivery.
type Chat struct {
	ID      string `json:"id" gorm:"primaryKey"`
	Title   string `json:"title" gorm:"not null"`
	ModelID string `json:"modelId" gorm:"column:model_id;not null"`
	UserID  string `json:"-" gorm:"column:user_id;index"`
	gorm.Model
}

// TableName specifies the table name for Chat Model
func (Chat) TableName() string {
	return "chats"
}
