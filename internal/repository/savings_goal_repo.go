package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
)

// SavingsGoalRepository 储蓄目标数据访问接口
type SavingsGoalRepository interface {
	Create(ctx context.Context, goal *model.SavingsGoal) error
	GetByID(ctx context.Context, id string) (*model.SavingsGoal, error)
	List(ctx context.Context, userID string) ([]model.SavingsGoal, error)
	Update(ctx context.Context, goal *model.SavingsGoal) error
	Delete(ctx context.Context, id string) error
}

// savingsGoalRepo SavingsGoalRepository 的 GORM 实现
type savingsGoalRepo struct {
	db *gorm.DB
}

// NewSavingsGoalRepo 创建 SavingsGoalRepository 实例
func NewSavingsGoalRepo(db *gorm.DB) SavingsGoalRepository {
	return &savingsGoalRepo{db: db}
}

func (r *savingsGoalRepo) Create(ctx context.Context, goal *model.SavingsGoal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *savingsGoalRepo) GetByID(ctx context.Context, id string) (*model.SavingsGoal, error) {
	var goal model.SavingsGoal
	err := r.db.WithContext(ctx).
		Where("goal_id = ?", id).
		First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *savingsGoalRepo) List(ctx context.Context, userID string) ([]model.SavingsGoal, error) {
	var goals []model.SavingsGoal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *savingsGoalRepo) Update(ctx context.Context, goal *model.SavingsGoal) error {
	return r.db.WithContext(ctx).Save(goal).Error
}

func (r *savingsGoalRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("goal_id = ?", id).
		Delete(&model.SavingsGoal{}).Error
}
