package dto

// ── 分类模块 DTO ──

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name  string  `json:"name"  binding:"required,min=1,max=50"`
	Kind  string  `json:"kind"  binding:"required,oneof=income expense"`
	Icon  *string `json:"icon"  binding:"omitempty,max=50"`
	Color *string `json:"color" binding:"omitempty,len=7"`
}

// UpdateCategoryRequest 更新分类请求（仅更新非 nil 字段，kind 不可变更）
type UpdateCategoryRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=1,max=50"`
	Icon  *string `json:"icon"  binding:"omitempty,max=50"`
	Color *string `json:"color" binding:"omitempty,len=7"`
}

// CategoryListRequest 分类列表查询参数
type CategoryListRequest struct {
	Kind string `form:"kind" binding:"omitempty,oneof=income expense"`
}

// ── 响应 ──

// CategoryResponse 分类响应
type CategoryResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}
