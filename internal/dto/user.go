package dto

// ── 用户模块 DTO ──

// UpdateProfileRequest 更新个人资料请求（仅更新非 nil 字段）
type UpdateProfileRequest struct {
	Name               *string `json:"name"                 binding:"omitempty,min=2,max=50"`
	Currency           *string `json:"currency"             binding:"omitempty,len=3"`
	Theme              *string `json:"theme"                binding:"omitempty,oneof=light dark system"`
	MonthlyBudgetCents *int64  `json:"monthly_budget_cents" binding:"omitempty,gt=0"`
}

// UpdateSubscriptionRequest 更新订阅状态请求
// 支付由外部账单服务完成，此处仅记录结果
type UpdateSubscriptionRequest struct {
	Plan      string  `json:"plan"       binding:"required,oneof=free premium"`
	ExpiresAt *string `json:"expires_at" binding:"omitempty"` // RFC3339，premium 时必填
}

// ── 响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
	Plan     string `json:"plan"`
}

// UserDetailResponse 用户详细信息（GET /users/me）
type UserDetailResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Currency           string  `json:"currency"`
	Theme              string  `json:"theme"`
	MonthlyBudgetCents *int64  `json:"monthly_budget_cents,omitempty"`
	Plan               string  `json:"plan"`
	PlanExpiresAt      *string `json:"plan_expires_at,omitempty"`
	AvatarURL          *string `json:"avatar_url,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

// AvatarResponse 头像上传响应
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
