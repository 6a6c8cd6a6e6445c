package model

// Budget 月度分类预算表 — 对应 budgets
// (user_id, category_id, month) 唯一
type Budget struct {
	BudgetID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"budget_id"`
	UserID     string `gorm:"type:uuid;not null"                             json:"user_id"`
	CategoryID string `gorm:"type:uuid;not null"                             json:"category_id"`
	Month      string `gorm:"type:char(7);not null"                          json:"month"` // YYYY-MM
	LimitCents int64  `gorm:"not null"                                       json:"limit_cents"`
	SoftDeleteModel

	// 关联
	Category *Category `gorm:"foreignKey:CategoryID;references:CategoryID" json:"category,omitempty"`
}

// TableName 指定表名
func (Budget) TableName() string { return "budgets" }
