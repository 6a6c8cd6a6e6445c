package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
)

func TestSavingsGoalContribute_AchievedOnce(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewSavingsGoalService(repo, zap.NewNop())
	ctx := context.Background()

	goal, err := svc.Create(ctx, "user-1", &dto.CreateSavingsGoalRequest{
		Name:        "旅行基金",
		TargetCents: 100000,
	})
	if err != nil {
		t.Fatalf("创建储蓄目标失败: %v", err)
	}

	// 存入 60000：未达成
	resp, err := svc.Contribute(ctx, "user-1", goal.ID, &dto.ContributeRequest{AmountCents: 60000})
	if err != nil {
		t.Fatalf("存入失败: %v", err)
	}
	if resp.Achieved {
		t.Error("60% 进度不应标记为达成")
	}

	// 再存 40000：恰好达成，通知一次
	resp, err = svc.Contribute(ctx, "user-1", goal.ID, &dto.ContributeRequest{AmountCents: 40000})
	if err != nil {
		t.Fatalf("存入失败: %v", err)
	}
	if !resp.Achieved {
		t.Error("达到目标金额应标记为达成")
	}
	if got := mocks.notification.countByType("user-1", model.NotificationGoalAchieved); got != 1 {
		t.Errorf("达成应通知 1 次，实际 %d 次", got)
	}

	// 达成后继续存入不再重复通知
	if _, err := svc.Contribute(ctx, "user-1", goal.ID, &dto.ContributeRequest{AmountCents: 1000}); err != nil {
		t.Fatalf("存入失败: %v", err)
	}
	if got := mocks.notification.countByType("user-1", model.NotificationGoalAchieved); got != 1 {
		t.Errorf("达成后继续存入不应重复通知，实际 %d 次", got)
	}
}

func TestSavingsGoalUpdate_RecomputesAchieved(t *testing.T) {
	repo, _ := newTestRepository()
	svc := NewSavingsGoalService(repo, zap.NewNop())
	ctx := context.Background()

	goal, err := svc.Create(ctx, "user-1", &dto.CreateSavingsGoalRequest{
		Name: "应急金", TargetCents: 100000,
	})
	if err != nil {
		t.Fatalf("创建储蓄目标失败: %v", err)
	}
	if _, err := svc.Contribute(ctx, "user-1", goal.ID, &dto.ContributeRequest{AmountCents: 50000}); err != nil {
		t.Fatalf("存入失败: %v", err)
	}

	// 下调目标金额后达成状态应重新判定
	lower := int64(40000)
	updated, err := svc.Update(ctx, "user-1", goal.ID, &dto.UpdateSavingsGoalRequest{TargetCents: &lower})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if !updated.Achieved {
		t.Error("下调目标后已存金额超过目标，应标记为达成")
	}
}

func TestSavingsGoal_OwnershipIsolation(t *testing.T) {
	repo, _ := newTestRepository()
	svc := NewSavingsGoalService(repo, zap.NewNop())
	ctx := context.Background()

	goal, err := svc.Create(ctx, "user-1", &dto.CreateSavingsGoalRequest{
		Name: "旅行基金", TargetCents: 100000,
	})
	if err != nil {
		t.Fatalf("创建储蓄目标失败: %v", err)
	}

	if _, err := svc.Contribute(ctx, "user-2", goal.ID, &dto.ContributeRequest{AmountCents: 100}); !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("他人的目标应按不存在处理，实际 %v", err)
	}
	if err := svc.Delete(ctx, "user-2", goal.ID); !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("他人删除应返回 ErrGoalNotFound，实际 %v", err)
	}
}

func TestSavingsGoalCreate_InvalidDeadline(t *testing.T) {
	repo, _ := newTestRepository()
	svc := NewSavingsGoalService(repo, zap.NewNop())

	bad := "08/15/2026"
	_, err := svc.Create(context.Background(), "user-1", &dto.CreateSavingsGoalRequest{
		Name: "旅行基金", TargetCents: 100000, Deadline: &bad,
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("非法截止日期应返回 ErrInvalidDate，实际 %v", err)
	}
}
