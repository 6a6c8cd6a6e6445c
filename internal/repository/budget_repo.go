package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
)

// BudgetRepository 预算数据访问接口
type BudgetRepository interface {
	Create(ctx context.Context, budget *model.Budget) error
	GetByID(ctx context.Context, id string) (*model.Budget, error)
	GetByCategoryMonth(ctx context.Context, userID, categoryID, month string) (*model.Budget, error)
	List(ctx context.Context, userID, month string) ([]model.Budget, error)
	Update(ctx context.Context, budget *model.Budget) error
	Delete(ctx context.Context, id string) error
}

// budgetRepo BudgetRepository 的 GORM 实现
type budgetRepo struct {
	db *gorm.DB
}

// NewBudgetRepo 创建 BudgetRepository 实例
func NewBudgetRepo(db *gorm.DB) BudgetRepository {
	return &budgetRepo{db: db}
}

func (r *budgetRepo) Create(ctx context.Context, budget *model.Budget) error {
	return r.db.WithContext(ctx).Create(budget).Error
}

func (r *budgetRepo) GetByID(ctx context.Context, id string) (*model.Budget, error) {
	var budget model.Budget
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("budget_id = ?", id).
		First(&budget).Error
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepo) GetByCategoryMonth(ctx context.Context, userID, categoryID, month string) (*model.Budget, error) {
	var budget model.Budget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ? AND month = ?", userID, categoryID, month).
		First(&budget).Error
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepo) List(ctx context.Context, userID, month string) ([]model.Budget, error) {
	var budgets []model.Budget
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if month != "" {
		q = q.Where("month = ?", month)
	}
	if err := q.Preload("Category").Order("month DESC, created_at ASC").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *budgetRepo) Update(ctx context.Context, budget *model.Budget) error {
	return r.db.WithContext(ctx).Save(budget).Error
}

func (r *budgetRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("budget_id = ?", id).
		Delete(&model.Budget{}).Error
}
