package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/service"
	"github.com/lucontre/expense-tracker-pro-sub000/pkg/response"
)

// CategoryHandler 分类模块 HTTP 处理器
type CategoryHandler struct {
	categorySvc service.CategoryService
}

// NewCategoryHandler 创建 CategoryHandler
func NewCategoryHandler(categorySvc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categorySvc: categorySvc}
}

// Create 创建分类
// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.categorySvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryExists) {
			response.Conflict(c, 22003, "同类型下已存在同名分类")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// List 分类列表
// GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CategoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.categorySvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Update 更新分类
// PUT /api/v1/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.categorySvc.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			response.NotFound(c, 22001, "分类不存在")
		case errors.Is(err, service.ErrCategoryExists):
			response.Conflict(c, 22003, "同类型下已存在同名分类")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Delete 删除分类
// DELETE /api/v1/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.categorySvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			response.NotFound(c, 22001, "分类不存在")
		case errors.Is(err, service.ErrCategoryInUse):
			response.Conflict(c, 22002, "分类下存在流水，无法删除")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}
