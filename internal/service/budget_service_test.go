package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
)

func TestBudgetCreate_HappyPath(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewBudgetService(repo, zap.NewNop())
	ctx := context.Background()

	cat := seedCategory(t, mocks, "user-1", "餐饮", model.KindExpense)
	seedTxn(t, mocks, "user-1", cat.CategoryID, model.KindExpense, 3000, "2026-08-10")

	resp, err := svc.Create(ctx, "user-1", &dto.CreateBudgetRequest{
		CategoryID: cat.CategoryID,
		Month:      "2026-08",
		LimitCents: 10000,
	})
	if err != nil {
		t.Fatalf("创建预算失败: %v", err)
	}
	if resp.LimitCents != 10000 {
		t.Errorf("限额应为 10000，实际 %d", resp.LimitCents)
	}
	// 响应应携带当月已有支出
	if resp.SpentCents != 3000 {
		t.Errorf("已用金额应为 3000，实际 %d", resp.SpentCents)
	}
}

func TestBudgetCreate_Duplicate(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewBudgetService(repo, zap.NewNop())
	ctx := context.Background()

	cat := seedCategory(t, mocks, "user-1", "餐饮", model.KindExpense)
	req := &dto.CreateBudgetRequest{CategoryID: cat.CategoryID, Month: "2026-08", LimitCents: 10000}

	if _, err := svc.Create(ctx, "user-1", req); err != nil {
		t.Fatalf("首次创建失败: %v", err)
	}
	if _, err := svc.Create(ctx, "user-1", req); !errors.Is(err, ErrBudgetExists) {
		t.Errorf("同分类同月份重复创建应返回 ErrBudgetExists，实际 %v", err)
	}
}

func TestBudgetCreate_IncomeCategory(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewBudgetService(repo, zap.NewNop())

	cat := seedCategory(t, mocks, "user-1", "工资", model.KindIncome)

	_, err := svc.Create(context.Background(), "user-1", &dto.CreateBudgetRequest{
		CategoryID: cat.CategoryID,
		Month:      "2026-08",
		LimitCents: 10000,
	})
	if !errors.Is(err, ErrBudgetNotExpense) {
		t.Errorf("收入分类不可设预算，实际 %v", err)
	}
}

func TestBudgetCreate_InvalidMonth(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewBudgetService(repo, zap.NewNop())

	cat := seedCategory(t, mocks, "user-1", "餐饮", model.KindExpense)

	_, err := svc.Create(context.Background(), "user-1", &dto.CreateBudgetRequest{
		CategoryID: cat.CategoryID,
		Month:      "2026/08",
		LimitCents: 10000,
	})
	if !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("非法月份格式应返回 ErrInvalidMonth，实际 %v", err)
	}
}

func TestBudgetUpdate_OwnershipIsolation(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewBudgetService(repo, zap.NewNop())
	ctx := context.Background()

	cat := seedCategory(t, mocks, "user-1", "餐饮", model.KindExpense)
	created, err := svc.Create(ctx, "user-1", &dto.CreateBudgetRequest{
		CategoryID: cat.CategoryID, Month: "2026-08", LimitCents: 10000,
	})
	if err != nil {
		t.Fatalf("创建预算失败: %v", err)
	}

	_, err = svc.Update(ctx, "user-2", created.ID, &dto.UpdateBudgetRequest{LimitCents: 5000})
	if !errors.Is(err, ErrBudgetNotFound) {
		t.Errorf("他人的预算应按不存在处理，实际 %v", err)
	}

	updated, err := svc.Update(ctx, "user-1", created.ID, &dto.UpdateBudgetRequest{LimitCents: 5000})
	if err != nil {
		t.Fatalf("本人更新失败: %v", err)
	}
	if updated.LimitCents != 5000 {
		t.Errorf("限额应更新为 5000，实际 %d", updated.LimitCents)
	}
}

func TestBudgetDelete(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewBudgetService(repo, zap.NewNop())
	ctx := context.Background()

	cat := seedCategory(t, mocks, "user-1", "餐饮", model.KindExpense)
	created, err := svc.Create(ctx, "user-1", &dto.CreateBudgetRequest{
		CategoryID: cat.CategoryID, Month: "2026-08", LimitCents: 10000,
	})
	if err != nil {
		t.Fatalf("创建预算失败: %v", err)
	}

	if err := svc.Delete(ctx, "user-1", created.ID); err != nil {
		t.Fatalf("删除预算失败: %v", err)
	}
	list, err := svc.List(ctx, "user-1", "2026-08")
	if err != nil {
		t.Fatalf("查询预算列表失败: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("删除后列表应为空，实际 %d 条", len(list))
	}
}
