package dto

// ── 报表模块 DTO ──

// SummaryRequest 月度汇总查询参数
type SummaryRequest struct {
	Month string `form:"month" binding:"required,len=7"` // YYYY-MM
}

// BreakdownRequest 分类占比查询参数
type BreakdownRequest struct {
	Month string `form:"month" binding:"required,len=7"`
	Kind  string `form:"kind"  binding:"omitempty,oneof=income expense"`
}

// TrendRequest 收支趋势查询参数
type TrendRequest struct {
	From   string `form:"from"   binding:"required"` // YYYY-MM-DD
	To     string `form:"to"     binding:"required"`
	Bucket string `form:"bucket" binding:"omitempty,oneof=day month"`
}

// ── 响应 ──

// SummaryResponse 月度收支汇总
type SummaryResponse struct {
	Month        string  `json:"month"`
	IncomeCents  int64   `json:"income_cents"`
	ExpenseCents int64   `json:"expense_cents"`
	NetCents     int64   `json:"net_cents"`
	SavingsRate  float64 `json:"savings_rate"` // net/income，income=0 时为 0
}

// CategoryBreakdownItem 单分类占比
type CategoryBreakdownItem struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	AmountCents  int64   `json:"amount_cents"`
	Percentage   float64 `json:"percentage"`
}

// BreakdownResponse 分类占比响应
type BreakdownResponse struct {
	Month      string                  `json:"month"`
	Kind       string                  `json:"kind"`
	TotalCents int64                   `json:"total_cents"`
	Items      []CategoryBreakdownItem `json:"items"`
}

// TrendPoint 趋势序列中的一个桶
type TrendPoint struct {
	Bucket       string `json:"bucket"` // YYYY-MM-DD 或 YYYY-MM
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
}

// TrendResponse 收支趋势响应
type TrendResponse struct {
	Bucket string       `json:"bucket"` // day | month
	Points []TrendPoint `json:"points"`
}
