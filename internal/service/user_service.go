package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/repository"
	"github.com/lucontre/expense-tracker-pro-sub000/pkg/storage"
)

// ── 用户模块业务错误 ──

var (
	ErrStorageUnavailable = errors.New("对象存储不可用")
	ErrInvalidExpiry      = errors.New("premium 订阅必须提供有效的到期时间")
)

// UserService 用户资料与订阅业务接口
type UserService interface {
	GetDetail(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateSubscription(ctx context.Context, userID string, req *dto.UpdateSubscriptionRequest) (*dto.UserResponse, error)
	UploadAvatar(ctx context.Context, userID string, reader io.Reader, size int64, contentType string) (*dto.AvatarResponse, error)
}

type userService struct {
	repo   *repository.Repository
	store  *storage.Client
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, store *storage.Client, logger *zap.Logger) UserService {
	return &userService{repo: repo, store: store, logger: logger}
}

// ────────────────────── GetDetail ──────────────────────

func (s *userService) GetDetail(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	resp := &dto.UserDetailResponse{
		ID:                 user.UserID,
		Name:               user.Name,
		Email:              user.Email,
		Currency:           user.Currency,
		Theme:              user.Theme,
		MonthlyBudgetCents: user.MonthlyBudgetCents,
		Plan:               user.Plan,
		CreatedAt:          user.CreatedAt.Format(time.RFC3339),
	}
	if user.PlanExpiresAt != nil {
		exp := user.PlanExpiresAt.Format(time.RFC3339)
		resp.PlanExpiresAt = &exp
	}
	if user.AvatarKey != nil && s.store != nil {
		url, err := s.store.PresignedGetURL(ctx, *user.AvatarKey)
		if err != nil {
			// 头像链接生成失败不阻断资料读取
			s.logger.Warn("生成头像链接失败", zap.Error(err))
		} else {
			resp.AvatarURL = &url
		}
	}

	return resp, nil
}

// ────────────────────── UpdateProfile ──────────────────────

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 应用更新字段（仅更新非 nil 字段）
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Currency != nil {
		user.Currency = *req.Currency
	}
	if req.Theme != nil {
		user.Theme = *req.Theme
	}
	if req.MonthlyBudgetCents != nil {
		user.MonthlyBudgetCents = req.MonthlyBudgetCents
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户资料失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	return s.toUserResponse(user), nil
}

// ────────────────────── UpdateSubscription ──────────────────────

// UpdateSubscription 记录外部账单服务回传的订阅状态（本服务不处理支付）
func (s *userService) UpdateSubscription(ctx context.Context, userID string, req *dto.UpdateSubscriptionRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	switch req.Plan {
	case model.PlanPremium:
		if req.ExpiresAt == nil {
			return nil, ErrInvalidExpiry
		}
		expiresAt, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil || !expiresAt.After(time.Now()) {
			return nil, ErrInvalidExpiry
		}
		user.Plan = model.PlanPremium
		user.PlanExpiresAt = &expiresAt
	case model.PlanFree:
		user.Plan = model.PlanFree
		user.PlanExpiresAt = nil
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新订阅状态失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	return s.toUserResponse(user), nil
}

// ────────────────────── UploadAvatar ──────────────────────

func (s *userService) UploadAvatar(ctx context.Context, userID string, reader io.Reader, size int64, contentType string) (*dto.AvatarResponse, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s", userID, uuid.New().String())
	if err := s.store.Put(ctx, key, reader, size, contentType); err != nil {
		s.logger.Error("上传头像失败", zap.Error(err))
		return nil, err
	}

	oldKey := user.AvatarKey
	user.AvatarKey = &key
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("写入头像引用失败", zap.Error(err))
		return nil, err
	}

	// 旧头像清理失败只记录，不影响结果
	if oldKey != nil {
		if err := s.store.Remove(ctx, *oldKey); err != nil {
			s.logger.Warn("删除旧头像失败", zap.String("key", *oldKey), zap.Error(err))
		}
	}

	url, err := s.store.PresignedGetURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &dto.AvatarResponse{AvatarURL: url}, nil
}

// ── 内部辅助方法 ──

func (s *userService) toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:       user.UserID,
		Name:     user.Name,
		Email:    user.Email,
		Currency: user.Currency,
		Theme:    user.Theme,
		Plan:     user.Plan,
	}
}
