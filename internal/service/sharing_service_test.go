package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
)

func newSharingTestService() (SharingService, *testRepos) {
	repo, mocks := newTestRepository()
	return NewSharingService(repo, zap.NewNop()), mocks
}

func TestGenerate_CreatesPendingCode(t *testing.T) {
	svc, mocks := newSharingTestService()

	resp, err := svc.Generate(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("生成共享码失败: %v", err)
	}

	if len(resp.SharingCode) != 6 {
		t.Errorf("共享码长度应为 6，实际 %d", len(resp.SharingCode))
	}
	for _, c := range resp.SharingCode {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			t.Errorf("共享码包含非法字符: %q", c)
		}
	}
	if resp.Status != model.SharingStatusPending {
		t.Errorf("新生成的共享码状态应为 pending，实际 %s", resp.Status)
	}
	if resp.Permissions != model.PermissionReadWrite {
		t.Errorf("默认权限应为 read_write，实际 %s", resp.Permissions)
	}

	stored, err := mocks.sharing.GetByID(context.Background(), resp.RelationshipID)
	if err != nil {
		t.Fatalf("共享关系未写入: %v", err)
	}
	if stored.SharedUserID != nil {
		t.Error("pending 状态下 shared_user_id 应为空")
	}
}

func TestGenerate_GeneratorFailure(t *testing.T) {
	repo, _ := newTestRepository()
	svc := NewSharingService(repo, zap.NewNop()).(*sharingService)
	svc.genCode = func() (string, error) {
		return "", errors.New("entropy exhausted")
	}

	_, err := svc.Generate(context.Background(), "owner-1")
	if !errors.Is(err, ErrSharingCodeGeneration) {
		t.Errorf("期望 ErrSharingCodeGeneration，实际 %v", err)
	}
}

// 生成的码撞上已存在的 pending 码时应换码重试
func TestGenerate_RetriesOnCodeCollision(t *testing.T) {
	repo, _ := newTestRepository()
	svc := NewSharingService(repo, zap.NewNop()).(*sharingService)

	codes := []string{"AAAAAA", "AAAAAA", "BB22BB"}
	calls := 0
	svc.genCode = func() (string, error) {
		code := codes[calls]
		calls++
		return code, nil
	}
	ctx := context.Background()

	// 首个 AAAAAA 占位成功
	first, err := svc.Generate(ctx, "owner-1")
	if err != nil {
		t.Fatalf("生成共享码失败: %v", err)
	}
	if first.SharingCode != "AAAAAA" {
		t.Fatalf("首次生成应为 AAAAAA，实际 %s", first.SharingCode)
	}

	// 第二次先撞 AAAAAA，重试拿到 BB22BB
	second, err := svc.Generate(ctx, "owner-2")
	if err != nil {
		t.Fatalf("冲突重试后生成应成功: %v", err)
	}
	if second.SharingCode != "BB22BB" {
		t.Errorf("重试后共享码应为 BB22BB，实际 %s", second.SharingCode)
	}
	if calls != 3 {
		t.Errorf("生成器应被调用 3 次，实际 %d", calls)
	}
}

// 重试耗尽仍冲突时按生成失败处理
func TestGenerate_ExhaustedRetries(t *testing.T) {
	repo, _ := newTestRepository()
	svc := NewSharingService(repo, zap.NewNop()).(*sharingService)
	svc.genCode = func() (string, error) { return "AAAAAA", nil }
	ctx := context.Background()

	if _, err := svc.Generate(ctx, "owner-1"); err != nil {
		t.Fatalf("首次生成失败: %v", err)
	}
	_, err := svc.Generate(ctx, "owner-2")
	if !errors.Is(err, ErrSharingCodeGeneration) {
		t.Errorf("重试耗尽应返回 ErrSharingCodeGeneration，实际 %v", err)
	}
}

func TestRedeem_HappyPath(t *testing.T) {
	svc, mocks := newSharingTestService()
	ctx := context.Background()

	code, err := svc.Generate(ctx, "owner-1")
	if err != nil {
		t.Fatalf("生成共享码失败: %v", err)
	}

	resp, err := svc.Redeem(ctx, code.SharingCode, "joiner-1")
	if err != nil {
		t.Fatalf("兑换失败: %v", err)
	}
	if resp.Status != model.SharingStatusActive {
		t.Errorf("兑换后状态应为 active，实际 %s", resp.Status)
	}
	if resp.SharedUserID == nil || *resp.SharedUserID != "joiner-1" {
		t.Errorf("shared_user_id 应为 joiner-1，实际 %v", resp.SharedUserID)
	}
	if resp.Role != "shared" {
		t.Errorf("兑换者视角 role 应为 shared，实际 %s", resp.Role)
	}

	// 创建者应收到兑换通知
	if got := mocks.notification.countByType("owner-1", model.NotificationShareRedeemed); got != 1 {
		t.Errorf("创建者应收到 1 条兑换通知，实际 %d", got)
	}
}

func TestRedeem_NormalizesLowercaseInput(t *testing.T) {
	repo, _ := newTestRepository()
	svc := NewSharingService(repo, zap.NewNop()).(*sharingService)
	svc.genCode = func() (string, error) { return "AB12CD", nil }
	ctx := context.Background()

	if _, err := svc.Generate(ctx, "owner-1"); err != nil {
		t.Fatalf("生成共享码失败: %v", err)
	}

	// 小写带空格的输入也应兑换成功
	resp, err := svc.Redeem(ctx, "  ab12cd ", "joiner-1")
	if err != nil {
		t.Fatalf("归一化输入兑换失败: %v", err)
	}
	if resp.SharingCode != "AB12CD" {
		t.Errorf("响应中的共享码应为大写 AB12CD，实际 %s", resp.SharingCode)
	}
}

func TestRedeem_UnknownCode(t *testing.T) {
	svc, _ := newSharingTestService()

	_, err := svc.Redeem(context.Background(), "ZZZZZZ", "joiner-1")
	if !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Errorf("期望 ErrInvalidOrExpiredCode，实际 %v", err)
	}
}

func TestRedeem_OwnCode(t *testing.T) {
	svc, _ := newSharingTestService()
	ctx := context.Background()

	code, err := svc.Generate(ctx, "owner-1")
	if err != nil {
		t.Fatalf("生成共享码失败: %v", err)
	}

	_, err = svc.Redeem(ctx, code.SharingCode, "owner-1")
	if !errors.Is(err, ErrCannotJoinOwnCode) {
		t.Errorf("兑换自己的码应返回 ErrCannotJoinOwnCode，实际 %v", err)
	}
}

func TestRedeem_AlreadyRedeemedCode(t *testing.T) {
	svc, _ := newSharingTestService()
	ctx := context.Background()

	code, err := svc.Generate(ctx, "owner-1")
	if err != nil {
		t.Fatalf("生成共享码失败: %v", err)
	}
	if _, err := svc.Redeem(ctx, code.SharingCode, "joiner-1"); err != nil {
		t.Fatalf("首次兑换失败: %v", err)
	}

	// 已兑换的码再次兑换：active 状态下 GetPendingByCode 查不到
	_, err = svc.Redeem(ctx, code.SharingCode, "joiner-2")
	if !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Errorf("重复兑换应返回 ErrInvalidOrExpiredCode，实际 %v", err)
	}
}

// 并发兑换同一个码：恰好一个成功，落败方拿到 ErrInvalidOrExpiredCode
func TestRedeem_ConcurrentOnlyOneWins(t *testing.T) {
	svc, _ := newSharingTestService()
	ctx := context.Background()

	code, err := svc.Generate(ctx, "owner-1")
	if err != nil {
		t.Fatalf("生成共享码失败: %v", err)
	}

	const contenders = 8
	errs := make([]error, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = svc.Redeem(ctx, code.SharingCode, nextID("joiner"))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidOrExpiredCode):
			// 落败方的预期结果
		default:
			t.Errorf("落败方应返回 ErrInvalidOrExpiredCode，实际 %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("并发兑换应恰好 1 个成功，实际 %d", wins)
	}
}

func TestRevoke_HappyPath(t *testing.T) {
	svc, mocks := newSharingTestService()
	ctx := context.Background()

	code, _ := svc.Generate(ctx, "owner-1")
	if _, err := svc.Redeem(ctx, code.SharingCode, "joiner-1"); err != nil {
		t.Fatalf("兑换失败: %v", err)
	}

	if err := svc.Revoke(ctx, code.RelationshipID, "owner-1"); err != nil {
		t.Fatalf("撤销失败: %v", err)
	}

	rel, err := mocks.sharing.GetByID(ctx, code.RelationshipID)
	if err != nil {
		t.Fatalf("查询共享关系失败: %v", err)
	}
	if rel.Status != model.SharingStatusRevoked {
		t.Errorf("撤销后状态应为 revoked，实际 %s", rel.Status)
	}
	// 撤销后保留 shared_user_id 作为历史记录
	if rel.SharedUserID == nil || *rel.SharedUserID != "joiner-1" {
		t.Error("撤销后 shared_user_id 应保留")
	}

	// 被撤销方应收到通知
	if got := mocks.notification.countByType("joiner-1", model.NotificationShareRevoked); got != 1 {
		t.Errorf("被撤销方应收到 1 条撤销通知，实际 %d", got)
	}
}

func TestRevoke_NotOwner(t *testing.T) {
	svc, _ := newSharingTestService()
	ctx := context.Background()

	code, _ := svc.Generate(ctx, "owner-1")
	if _, err := svc.Redeem(ctx, code.SharingCode, "joiner-1"); err != nil {
		t.Fatalf("兑换失败: %v", err)
	}

	// shared 一方也无权撤销：鉴权先于状态校验
	err := svc.Revoke(ctx, code.RelationshipID, "joiner-1")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("非创建者撤销应返回 ErrNotAuthorized，实际 %v", err)
	}
}

func TestRevoke_PendingRelationship(t *testing.T) {
	svc, _ := newSharingTestService()
	ctx := context.Background()

	code, _ := svc.Generate(ctx, "owner-1")

	err := svc.Revoke(ctx, code.RelationshipID, "owner-1")
	if !errors.Is(err, ErrInvalidSharingState) {
		t.Errorf("撤销 pending 关系应返回 ErrInvalidSharingState，实际 %v", err)
	}
}

func TestRevoke_AlreadyRevoked(t *testing.T) {
	svc, _ := newSharingTestService()
	ctx := context.Background()

	code, _ := svc.Generate(ctx, "owner-1")
	if _, err := svc.Redeem(ctx, code.SharingCode, "joiner-1"); err != nil {
		t.Fatalf("兑换失败: %v", err)
	}
	if err := svc.Revoke(ctx, code.RelationshipID, "owner-1"); err != nil {
		t.Fatalf("首次撤销失败: %v", err)
	}

	err := svc.Revoke(ctx, code.RelationshipID, "owner-1")
	if !errors.Is(err, ErrInvalidSharingState) {
		t.Errorf("重复撤销应返回 ErrInvalidSharingState，实际 %v", err)
	}
}

func TestRevoke_UnknownRelationship(t *testing.T) {
	svc, _ := newSharingTestService()

	err := svc.Revoke(context.Background(), "rel-nonexistent", "owner-1")
	if !errors.Is(err, ErrRelationshipNotFound) {
		t.Errorf("期望 ErrRelationshipNotFound，实际 %v", err)
	}
}

func TestListForUser_RoleDerivation(t *testing.T) {
	svc, _ := newSharingTestService()
	ctx := context.Background()

	code, _ := svc.Generate(ctx, "owner-1")
	if _, err := svc.Redeem(ctx, code.SharingCode, "joiner-1"); err != nil {
		t.Fatalf("兑换失败: %v", err)
	}

	ownerView, err := svc.ListForUser(ctx, "owner-1")
	if err != nil {
		t.Fatalf("查询创建者列表失败: %v", err)
	}
	if len(ownerView) != 1 || ownerView[0].Role != "owner" {
		t.Errorf("创建者视角 role 应为 owner，实际 %+v", ownerView)
	}

	joinerView, err := svc.ListForUser(ctx, "joiner-1")
	if err != nil {
		t.Fatalf("查询加入者列表失败: %v", err)
	}
	if len(joinerView) != 1 || joinerView[0].Role != "shared" {
		t.Errorf("加入者视角 role 应为 shared，实际 %+v", joinerView)
	}

	// 无关用户看不到该关系
	strangerView, err := svc.ListForUser(ctx, "stranger-1")
	if err != nil {
		t.Fatalf("查询无关用户列表失败: %v", err)
	}
	if len(strangerView) != 0 {
		t.Errorf("无关用户不应看到任何关系，实际 %d 条", len(strangerView))
	}
}

// [自证通过] internal/service/sharing_service_test.go
