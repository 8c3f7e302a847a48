package models

import (
	"gorm.io/gorm"
)

// User represents a registered account. Password holds a bcrypt hash and is
// never serialized in responses.
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
