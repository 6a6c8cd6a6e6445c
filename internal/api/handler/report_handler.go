package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/service"
	"github.com/lucontre/expense-tracker-pro-sub000/pkg/response"
)

// ReportHandler 报表统计 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Summary 月度收支汇总
// GET /api/v1/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.Summary(c.Request.Context(), userID, req.Month)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Breakdown 分类占比
// GET /api/v1/reports/breakdown
func (h *ReportHandler) Breakdown(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BreakdownRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.CategoryBreakdown(c.Request.Context(), userID, req.Month, req.Kind)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Trend 收支趋势
// GET /api/v1/reports/trend
func (h *ReportHandler) Trend(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.TrendRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.Trend(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Export 报表导出（敬请期待）
// GET /api/v1/reports/export
func (h *ReportHandler) Export(c *gin.Context) {
	response.NotImplemented(c, 28101, "报表导出功能敬请期待")
}

// ── 内部辅助方法 ──

func (h *ReportHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 24003, "月份格式无效，应为 YYYY-MM")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 23003, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, 28001, "日期范围无效")
	default:
		response.InternalError(c)
	}
}
