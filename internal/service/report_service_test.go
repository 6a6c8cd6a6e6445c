package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
)

func seedTxn(t *testing.T, mocks *testRepos, userID, categoryID, kind string, cents int64, date string) {
	t.Helper()
	occurredOn, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("测试日期无效: %v", err)
	}
	txn := &model.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Kind:        kind,
		AmountCents: cents,
		OccurredOn:  occurredOn,
	}
	if err := mocks.transaction.Create(context.Background(), txn); err != nil {
		t.Fatalf("写入测试流水失败: %v", err)
	}
}

func TestSummary_Basic(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewReportService(repo, zap.NewNop())
	ctx := context.Background()

	salary := seedCategory(t, mocks, "user-1", "工资", model.KindIncome)
	food := seedCategory(t, mocks, "user-1", "餐饮", model.KindExpense)

	seedTxn(t, mocks, "user-1", salary.CategoryID, model.KindIncome, 100000, "2026-08-01")
	seedTxn(t, mocks, "user-1", food.CategoryID, model.KindExpense, 30000, "2026-08-10")
	seedTxn(t, mocks, "user-1", food.CategoryID, model.KindExpense, 10000, "2026-08-20")
	// 其他月份与其他用户的流水不计入
	seedTxn(t, mocks, "user-1", food.CategoryID, model.KindExpense, 99999, "2026-07-31")
	seedTxn(t, mocks, "user-2", food.CategoryID, model.KindExpense, 88888, "2026-08-15")

	resp, err := svc.Summary(ctx, "user-1", "2026-08")
	if err != nil {
		t.Fatalf("月度汇总失败: %v", err)
	}
	if resp.IncomeCents != 100000 {
		t.Errorf("收入应为 100000，实际 %d", resp.IncomeCents)
	}
	if resp.ExpenseCents != 40000 {
		t.Errorf("支出应为 40000，实际 %d", resp.ExpenseCents)
	}
	if resp.NetCents != 60000 {
		t.Errorf("结余应为 60000，实际 %d", resp.NetCents)
	}
	if resp.SavingsRate != 0.6 {
		t.Errorf("储蓄率应为 0.6，实际 %f", resp.SavingsRate)
	}
}

func TestSummary_ZeroIncome(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewReportService(repo, zap.NewNop())

	food := seedCategory(t, mocks, "user-1", "餐饮", model.KindExpense)
	seedTxn(t, mocks, "user-1", food.CategoryID, model.KindExpense, 5000, "2026-08-10")

	resp, err := svc.Summary(context.Background(), "user-1", "2026-08")
	if err != nil {
		t.Fatalf("月度汇总失败: %v", err)
	}
	// 无收入时储蓄率为 0，不能出现除零
	if resp.SavingsRate != 0 {
		t.Errorf("无收入时储蓄率应为 0，实际 %f", resp.SavingsRate)
	}
	if resp.NetCents != -5000 {
		t.Errorf("结余应为 -5000，实际 %d", resp.NetCents)
	}
}

func TestSummary_InvalidMonth(t *testing.T) {
	repo, _ := newTestRepository()
	svc := NewReportService(repo, zap.NewNop())

	if _, err := svc.Summary(context.Background(), "user-1", "2026-13"); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("非法月份应返回 ErrInvalidMonth，实际 %v", err)
	}
}

func TestCategoryBreakdown_SortedWithPercentage(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewReportService(repo, zap.NewNop())

	food := seedCategory(t, mocks, "user-1", "餐饮", model.KindExpense)
	transport := seedCategory(t, mocks, "user-1", "交通", model.KindExpense)

	seedTxn(t, mocks, "user-1", food.CategoryID, model.KindExpense, 7500, "2026-08-05")
	seedTxn(t, mocks, "user-1", transport.CategoryID, model.KindExpense, 2500, "2026-08-06")

	resp, err := svc.CategoryBreakdown(context.Background(), "user-1", "2026-08", "")
	if err != nil {
		t.Fatalf("分类占比统计失败: %v", err)
	}
	if resp.Kind != model.KindExpense {
		t.Errorf("默认 kind 应为 expense，实际 %s", resp.Kind)
	}
	if resp.TotalCents != 10000 {
		t.Errorf("总额应为 10000，实际 %d", resp.TotalCents)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("应有 2 个分类项，实际 %d", len(resp.Items))
	}
	// 按金额从大到小
	if resp.Items[0].CategoryName != "餐饮" || resp.Items[0].Percentage != 0.75 {
		t.Errorf("第一项应为餐饮 75%%，实际 %+v", resp.Items[0])
	}
	if resp.Items[1].CategoryName != "交通" || resp.Items[1].Percentage != 0.25 {
		t.Errorf("第二项应为交通 25%%，实际 %+v", resp.Items[1])
	}
}

func TestTrend_DailyBucketsZeroFilled(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewReportService(repo, zap.NewNop())

	food := seedCategory(t, mocks, "user-1", "餐饮", model.KindExpense)
	seedTxn(t, mocks, "user-1", food.CategoryID, model.KindExpense, 1000, "2026-08-01")
	seedTxn(t, mocks, "user-1", food.CategoryID, model.KindExpense, 2000, "2026-08-03")

	resp, err := svc.Trend(context.Background(), "user-1", &dto.TrendRequest{
		From: "2026-08-01", To: "2026-08-04",
	})
	if err != nil {
		t.Fatalf("趋势统计失败: %v", err)
	}
	if len(resp.Points) != 4 {
		t.Fatalf("4 天范围应有 4 个桶，实际 %d", len(resp.Points))
	}
	// 中间没有流水的日期也要补零产出
	if resp.Points[1].Bucket != "2026-08-02" || resp.Points[1].ExpenseCents != 0 {
		t.Errorf("08-02 应为补零桶，实际 %+v", resp.Points[1])
	}
	if resp.Points[2].ExpenseCents != 2000 {
		t.Errorf("08-03 支出应为 2000，实际 %d", resp.Points[2].ExpenseCents)
	}
}

func TestTrend_MonthlyBuckets(t *testing.T) {
	repo, mocks := newTestRepository()
	svc := NewReportService(repo, zap.NewNop())

	salary := seedCategory(t, mocks, "user-1", "工资", model.KindIncome)
	seedTxn(t, mocks, "user-1", salary.CategoryID, model.KindIncome, 50000, "2026-06-15")
	seedTxn(t, mocks, "user-1", salary.CategoryID, model.KindIncome, 60000, "2026-08-15")

	resp, err := svc.Trend(context.Background(), "user-1", &dto.TrendRequest{
		From: "2026-06-01", To: "2026-08-31", Bucket: "month",
	})
	if err != nil {
		t.Fatalf("趋势统计失败: %v", err)
	}
	if len(resp.Points) != 3 {
		t.Fatalf("3 个月范围应有 3 个桶，实际 %d", len(resp.Points))
	}
	if resp.Points[0].Bucket != "2026-06" || resp.Points[0].IncomeCents != 50000 {
		t.Errorf("2026-06 桶错误: %+v", resp.Points[0])
	}
	if resp.Points[1].Bucket != "2026-07" || resp.Points[1].IncomeCents != 0 {
		t.Errorf("2026-07 应为补零桶: %+v", resp.Points[1])
	}
}

func TestTrend_InvalidRange(t *testing.T) {
	repo, _ := newTestRepository()
	svc := NewReportService(repo, zap.NewNop())

	_, err := svc.Trend(context.Background(), "user-1", &dto.TrendRequest{
		From: "2026-08-10", To: "2026-08-01",
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("终点早于起点应返回 ErrInvalidRange，实际 %v", err)
	}
}
