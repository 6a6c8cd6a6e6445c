package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/service"
	"github.com/lucontre/expense-tracker-pro-sub000/pkg/response"
)

// SavingsGoalHandler 储蓄目标模块 HTTP 处理器
type SavingsGoalHandler struct {
	goalSvc service.SavingsGoalService
}

// NewSavingsGoalHandler 创建 SavingsGoalHandler
func NewSavingsGoalHandler(goalSvc service.SavingsGoalService) *SavingsGoalHandler {
	return &SavingsGoalHandler{goalSvc: goalSvc}
}

// Create 创建储蓄目标
// POST /api/v1/savings-goals
func (h *SavingsGoalHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSavingsGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.goalSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Created(c, result)
}

// List 储蓄目标列表
// GET /api/v1/savings-goals
func (h *SavingsGoalHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.goalSvc.List(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Update 更新储蓄目标
// PUT /api/v1/savings-goals/:id
func (h *SavingsGoalHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSavingsGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.goalSvc.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Contribute 向储蓄目标存入金额
// POST /api/v1/savings-goals/:id/contribute
func (h *SavingsGoalHandler) Contribute(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.goalSvc.Contribute(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除储蓄目标
// DELETE /api/v1/savings-goals/:id
func (h *SavingsGoalHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.goalSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 内部辅助方法 ──

func (h *SavingsGoalHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		response.NotFound(c, 25001, "储蓄目标不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 23003, "日期格式无效，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
