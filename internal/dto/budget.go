package dto

// ── 预算模块 DTO ──

// CreateBudgetRequest 创建预算请求
type CreateBudgetRequest struct {
	CategoryID string `json:"category_id" binding:"required,uuid"`
	Month      string `json:"month"       binding:"required,len=7"` // YYYY-MM
	LimitCents int64  `json:"limit_cents" binding:"required,gt=0"`
}

// UpdateBudgetRequest 更新预算请求
type UpdateBudgetRequest struct {
	LimitCents int64 `json:"limit_cents" binding:"required,gt=0"`
}

// BudgetListRequest 预算列表查询参数
type BudgetListRequest struct {
	Month string `form:"month" binding:"omitempty,len=7"`
}

// ── 响应 ──

// BudgetResponse 预算响应（含当月实际支出）
type BudgetResponse struct {
	ID         string            `json:"id"`
	Month      string            `json:"month"`
	LimitCents int64             `json:"limit_cents"`
	SpentCents int64             `json:"spent_cents"`
	Category   *CategoryResponse `json:"category,omitempty"`
}
