package model

import "time"

// SavingsGoal 储蓄目标表 — 对应 savings_goals
type SavingsGoal struct {
	GoalID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"goal_id"`
	UserID       string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Name         string     `gorm:"type:varchar(100);not null"                     json:"name"`
	TargetCents  int64      `gorm:"not null"                                       json:"target_cents"`
	CurrentCents int64      `gorm:"not null;default:0"                             json:"current_cents"`
	Deadline     *time.Time `gorm:"type:date"                                      json:"deadline,omitempty"`
	Achieved     bool       `gorm:"not null;default:false"                         json:"achieved"`
	SoftDeleteModel
}

// TableName 指定表名
func (SavingsGoal) TableName() string { return "savings_goals" }
