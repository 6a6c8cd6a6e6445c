package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/repository"
)

// ── 预算模块业务错误 ──

var (
	ErrBudgetNotFound   = errors.New("预算不存在")
	ErrBudgetExists     = errors.New("该分类该月份已有预算")
	ErrInvalidMonth     = errors.New("月份格式无效，应为 YYYY-MM")
	ErrBudgetNotExpense = errors.New("预算只能针对支出分类")
)

// BudgetService 预算业务接口
type BudgetService interface {
	Create(ctx context.Context, userID string, req *dto.CreateBudgetRequest) (*dto.BudgetResponse, error)
	List(ctx context.Context, userID, month string) ([]dto.BudgetResponse, error)
	Update(ctx context.Context, userID, budgetID string, req *dto.UpdateBudgetRequest) (*dto.BudgetResponse, error)
	Delete(ctx context.Context, userID, budgetID string) error
}

type budgetService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBudgetService 创建 BudgetService 实例
func NewBudgetService(repo *repository.Repository, logger *zap.Logger) BudgetService {
	return &budgetService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *budgetService) Create(ctx context.Context, userID string, req *dto.CreateBudgetRequest) (*dto.BudgetResponse, error) {
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		return nil, ErrInvalidMonth
	}

	category, err := s.repo.Category.GetByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	if category.Kind != model.KindExpense {
		return nil, ErrBudgetNotExpense
	}

	// 同一分类同一月份只允许一条预算
	if _, err := s.repo.Budget.GetByCategoryMonth(ctx, userID, req.CategoryID, req.Month); err == nil {
		return nil, ErrBudgetExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询预算失败", zap.Error(err))
		return nil, err
	}

	budget := &model.Budget{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Month:      req.Month,
		LimitCents: req.LimitCents,
	}
	if err := s.repo.Budget.Create(ctx, budget); err != nil {
		s.logger.Error("创建预算失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Budget.GetByID(ctx, budget.BudgetID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, created), nil
}

// ────────────────────── List ──────────────────────

func (s *budgetService) List(ctx context.Context, userID, month string) ([]dto.BudgetResponse, error) {
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, ErrInvalidMonth
		}
	}

	budgets, err := s.repo.Budget.List(ctx, userID, month)
	if err != nil {
		s.logger.Error("查询预算列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.BudgetResponse, 0, len(budgets))
	for i := range budgets {
		result = append(result, *s.toResponse(ctx, &budgets[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *budgetService) Update(ctx context.Context, userID, budgetID string, req *dto.UpdateBudgetRequest) (*dto.BudgetResponse, error) {
	budget, err := s.owned(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	budget.LimitCents = req.LimitCents
	if err := s.repo.Budget.Update(ctx, budget); err != nil {
		s.logger.Error("更新预算失败", zap.String("id", budgetID), zap.Error(err))
		return nil, err
	}
	return s.toResponse(ctx, budget), nil
}

// ────────────────────── Delete ──────────────────────

func (s *budgetService) Delete(ctx context.Context, userID, budgetID string) error {
	budget, err := s.owned(ctx, userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.repo.Budget.Delete(ctx, budget.BudgetID); err != nil {
		s.logger.Error("删除预算失败", zap.String("id", budgetID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *budgetService) owned(ctx context.Context, userID, budgetID string) (*model.Budget, error) {
	budget, err := s.repo.Budget.GetByID(ctx, budgetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetNotFound
		}
		s.logger.Error("查询预算失败", zap.String("id", budgetID), zap.Error(err))
		return nil, err
	}
	if budget.UserID != userID {
		return nil, ErrBudgetNotFound
	}
	return budget, nil
}

// toResponse 组装预算响应，附带当月实际支出
func (s *budgetService) toResponse(ctx context.Context, budget *model.Budget) *dto.BudgetResponse {
	resp := &dto.BudgetResponse{
		ID:         budget.BudgetID,
		Month:      budget.Month,
		LimitCents: budget.LimitCents,
	}
	if budget.Category != nil {
		resp.Category = toCategoryResponse(budget.Category)
	}

	from, to := monthRange(budget.Month)
	spent, err := s.repo.Transaction.SumExpenseByCategoryRange(ctx, budget.UserID, budget.CategoryID, from, to)
	if err != nil {
		s.logger.Warn("统计预算支出失败", zap.String("id", budget.BudgetID), zap.Error(err))
	} else {
		resp.SpentCents = spent
	}
	return resp
}
