package models

import (
	"gorm.io/gorm"
)

// RuleStatus represents the review state of a proposed rule.
type RuleStatus string

const (
	RuleProposed  RuleStatus = "proposed"
	RuleAccepted  RuleStatus = "accepted"
	RuleDismissed RuleStatus = "dismissed"
)

// Rule represents a persisted behavior rule suggested for a user, e.g. a
// preference the assistant inferred from conversation.
type Rule struct {
	ID      string     `json:"id" gorm:"primaryKey"`
	Content string     `json:"content" gorm:"not null"`
	Status  RuleStatus `json:"status" gorm:"not null;default:'proposed'"`
	UserID  string     `json:"-" gorm:"column:user_id;index"`
	gorm.Model
}

// TableName specifies the table name for Rule Model
func (Rule) TableName() string {
	return "rules"
}
