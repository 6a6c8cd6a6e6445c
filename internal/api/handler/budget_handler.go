package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/service"
	"github.com/lucontre/expense-tracker-pro-sub000/pkg/response"
)

// BudgetHandler 预算模块 HTTP 处理器
type BudgetHandler struct {
	budgetSvc service.BudgetService
}

// NewBudgetHandler 创建 BudgetHandler
func NewBudgetHandler(budgetSvc service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetSvc: budgetSvc}
}

// Create 创建预算
// POST /api/v1/budgets
func (h *BudgetHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.budgetSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Created(c, result)
}

// List 预算列表（可按月份过滤）
// GET /api/v1/budgets
func (h *BudgetHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BudgetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.budgetSvc.List(c.Request.Context(), userID, req.Month)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Update 更新预算限额
// PUT /api/v1/budgets/:id
func (h *BudgetHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.budgetSvc.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除预算
// DELETE /api/v1/budgets/:id
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.budgetSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 内部辅助方法 ──

func (h *BudgetHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBudgetNotFound):
		response.NotFound(c, 24001, "预算不存在")
	case errors.Is(err, service.ErrBudgetExists):
		response.Conflict(c, 24002, "该分类该月份已有预算")
	case errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 24003, "月份格式无效，应为 YYYY-MM")
	case errors.Is(err, service.ErrBudgetNotExpense):
		response.BadRequest(c, 24004, "预算只能针对支出分类")
	case errors.Is(err, service.ErrCategoryNotFound):
		response.NotFound(c, 22001, "分类不存在")
	default:
		response.InternalError(c)
	}
}
