package model

// 收支类型（分类与流水共用）
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// Category 收支分类表 — 对应 categories
type Category struct {
	CategoryID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"category_id"`
	UserID     string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Name       string  `gorm:"type:varchar(50);not null"                      json:"name"`
	Kind       string  `gorm:"type:varchar(10);not null"                      json:"kind"` // income | expense
	Icon       *string `gorm:"type:varchar(50)"                               json:"icon,omitempty"`
	Color      *string `gorm:"type:varchar(7)"                                json:"color,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }
