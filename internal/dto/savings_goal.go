package dto

// ── 储蓄目标模块 DTO ──

// CreateSavingsGoalRequest 创建储蓄目标请求
type CreateSavingsGoalRequest struct {
	Name        string  `json:"name"         binding:"required,min=1,max=100"`
	TargetCents int64   `json:"target_cents" binding:"required,gt=0"`
	Deadline    *string `json:"deadline"     binding:"omitempty"` // YYYY-MM-DD
}

// UpdateSavingsGoalRequest 更新储蓄目标请求（仅更新非 nil 字段）
type UpdateSavingsGoalRequest struct {
	Name        *string `json:"name"         binding:"omitempty,min=1,max=100"`
	TargetCents *int64  `json:"target_cents" binding:"omitempty,gt=0"`
	Deadline    *string `json:"deadline"     binding:"omitempty"`
}

// ContributeRequest 向储蓄目标存入金额请求
type ContributeRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

// ── 响应 ──

// SavingsGoalResponse 储蓄目标响应
type SavingsGoalResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TargetCents  int64   `json:"target_cents"`
	CurrentCents int64   `json:"current_cents"`
	Deadline     *string `json:"deadline,omitempty"`
	Achieved     bool    `json:"achieved"`
	CreatedAt    string  `json:"created_at"`
}
