package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/repository"
	pkgerrors "github.com/lucontre/expense-tracker-pro-sub000/pkg/errors"
)

// 基于内存 map 的 Repository mock，供各 service 单测使用

var idCounter struct {
	mu sync.Mutex
	n  int
}

func nextID(prefix string) string {
	idCounter.mu.Lock()
	defer idCounter.mu.Unlock()
	idCounter.n++
	return fmt.Sprintf("%s-%04d", prefix, idCounter.n)
}

// ── UserRepository mock ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

// ── CategoryRepository mock ──

type mockCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[string]*model.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if category.CategoryID == "" {
		category.CategoryID = nextID("cat")
	}
	category.CreatedAt = time.Now()
	cp := *category
	m.categories[category.CategoryID] = &cp
	return nil
}

func (m *mockCategoryRepo) BatchCreate(ctx context.Context, categories []*model.Category) error {
	for _, c := range categories {
		if err := m.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepo) List(_ context.Context, userID, kind string) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Category
	for _, c := range m.categories {
		if c.UserID != userID {
			continue
		}
		if kind != "" && c.Kind != kind {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[category.CategoryID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *category
	m.categories[category.CategoryID] = &cp
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.categories, id)
	return nil
}

// ── TransactionRepository mock ──

type mockTransactionRepo struct {
	mu   sync.Mutex
	txns map[string]*model.Transaction

	categories *mockCategoryRepo // 用于 Preload("Category") 的模拟
}

func newMockTransactionRepo(categories *mockCategoryRepo) *mockTransactionRepo {
	return &mockTransactionRepo{
		txns:       make(map[string]*model.Transaction),
		categories: categories,
	}
}

func (m *mockTransactionRepo) Create(_ context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.TransactionID == "" {
		txn.TransactionID = nextID("txn")
	}
	txn.CreatedAt = time.Now()
	cp := *txn
	m.txns[txn.TransactionID] = &cp
	return nil
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	m.mu.Lock()
	txn, ok := m.txns[id]
	if !ok {
		m.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	cp := *txn
	m.mu.Unlock()

	if m.categories != nil {
		if c, err := m.categories.GetByID(ctx, cp.CategoryID); err == nil {
			cp.Category = c
		}
	}
	return &cp, nil
}

func (m *mockTransactionRepo) Update(_ context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[txn.TransactionID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *txn
	cp.Category = nil
	m.txns[txn.TransactionID] = &cp
	return nil
}

func (m *mockTransactionRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.txns, id)
	return nil
}

func (m *mockTransactionRepo) ListWithFilters(ctx context.Context, userID string, filters *repository.TransactionListFilters, offset, limit int) ([]model.Transaction, int64, error) {
	m.mu.Lock()
	var matched []model.Transaction
	for _, txn := range m.txns {
		if txn.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.Kind != "" && txn.Kind != filters.Kind {
				continue
			}
			if filters.CategoryID != "" && txn.CategoryID != filters.CategoryID {
				continue
			}
			if filters.From != nil && txn.OccurredOn.Before(*filters.From) {
				continue
			}
			if filters.To != nil && txn.OccurredOn.After(*filters.To) {
				continue
			}
		}
		matched = append(matched, *txn)
	}
	m.mu.Unlock()

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockTransactionRepo) ListByRange(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error) {
	m.mu.Lock()
	var matched []model.Transaction
	for _, txn := range m.txns {
		if txn.UserID != userID {
			continue
		}
		if txn.OccurredOn.Before(from) || txn.OccurredOn.After(to) {
			continue
		}
		matched = append(matched, *txn)
	}
	m.mu.Unlock()

	if m.categories != nil {
		for i := range matched {
			if c, err := m.categories.GetByID(ctx, matched[i].CategoryID); err == nil {
				matched[i].Category = c
			}
		}
	}
	return matched, nil
}

func (m *mockTransactionRepo) SumExpenseByCategoryRange(_ context.Context, userID, categoryID string, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, txn := range m.txns {
		if txn.UserID != userID || txn.CategoryID != categoryID || txn.Kind != model.KindExpense {
			continue
		}
		if txn.OccurredOn.Before(from) || txn.OccurredOn.After(to) {
			continue
		}
		sum += txn.AmountCents
	}
	return sum, nil
}

func (m *mockTransactionRepo) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, txn := range m.txns {
		if txn.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// ── BudgetRepository mock ──

type mockBudgetRepo struct {
	mu      sync.Mutex
	budgets map[string]*model.Budget
}

func newMockBudgetRepo() *mockBudgetRepo {
	return &mockBudgetRepo{budgets: make(map[string]*model.Budget)}
}

func (m *mockBudgetRepo) Create(_ context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if budget.BudgetID == "" {
		budget.BudgetID = nextID("bud")
	}
	budget.CreatedAt = time.Now()
	cp := *budget
	m.budgets[budget.BudgetID] = &cp
	return nil
}

func (m *mockBudgetRepo) GetByID(_ context.Context, id string) (*model.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBudgetRepo) GetByCategoryMonth(_ context.Context, userID, categoryID, month string) (*model.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.Month == month {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBudgetRepo) List(_ context.Context, userID, month string) ([]model.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Budget
	for _, b := range m.budgets {
		if b.UserID != userID {
			continue
		}
		if month != "" && b.Month != month {
			continue
		}
		result = append(result, *b)
	}
	return result, nil
}

func (m *mockBudgetRepo) Update(_ context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.budgets[budget.BudgetID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *budget
	cp.Category = nil
	m.budgets[budget.BudgetID] = &cp
	return nil
}

func (m *mockBudgetRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.budgets, id)
	return nil
}

// ── SavingsGoalRepository mock ──

type mockSavingsGoalRepo struct {
	mu    sync.Mutex
	goals map[string]*model.SavingsGoal
}

func newMockSavingsGoalRepo() *mockSavingsGoalRepo {
	return &mockSavingsGoalRepo{goals: make(map[string]*model.SavingsGoal)}
}

func (m *mockSavingsGoalRepo) Create(_ context.Context, goal *model.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if goal.GoalID == "" {
		goal.GoalID = nextID("goal")
	}
	goal.CreatedAt = time.Now()
	cp := *goal
	m.goals[goal.GoalID] = &cp
	return nil
}

func (m *mockSavingsGoalRepo) GetByID(_ context.Context, id string) (*model.SavingsGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *mockSavingsGoalRepo) List(_ context.Context, userID string) ([]model.SavingsGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.SavingsGoal
	for _, g := range m.goals {
		if g.UserID == userID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockSavingsGoalRepo) Update(_ context.Context, goal *model.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goals[goal.GoalID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *goal
	m.goals[goal.GoalID] = &cp
	return nil
}

func (m *mockSavingsGoalRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.goals, id)
	return nil
}

// ── NotificationRepository mock ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.NotificationID == "" {
		n.NotificationID = nextID("ntf")
	}
	n.CreatedAt = time.Now()
	cp := *n
	m.notifications[n.NotificationID] = &cp
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockNotificationRepo) List(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, *n)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notifications, id)
	return nil
}

// countByType 测试辅助：统计某用户某类型的通知条数
func (m *mockNotificationRepo) countByType(userID, typ string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && n.Type == typ {
			count++
		}
	}
	return count
}

// ── SharingRepository mock ──

// mockSharingRepo 与真实实现保持相同的条件更新语义：
// RedeemPending / RevokeActive 在持锁状态下校验并转移，保证
// 并发兑换同一个码时恰好一个调用返回受影响行数 1
type mockSharingRepo struct {
	mu   sync.Mutex
	rels map[string]*model.SharingRelationship
}

func newMockSharingRepo() *mockSharingRepo {
	return &mockSharingRepo{rels: make(map[string]*model.SharingRelationship)}
}

func (m *mockSharingRepo) Create(_ context.Context, rel *model.SharingRelationship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rel.RelationshipID == "" {
		rel.RelationshipID = nextID("rel")
	}
	rel.CreatedAt = time.Now()
	// pending 状态下共享码唯一
	for _, existing := range m.rels {
		if existing.SharingCode == rel.SharingCode && existing.Status == model.SharingStatusPending {
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
	}
	cp := *rel
	m.rels[rel.RelationshipID] = &cp
	return nil
}

func (m *mockSharingRepo) GetByID(_ context.Context, id string) (*model.SharingRelationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel, ok := m.rels[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rel
	return &cp, nil
}

func (m *mockSharingRepo) GetPendingByCode(_ context.Context, code string) (*model.SharingRelationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rel := range m.rels {
		if rel.SharingCode == code && rel.Status == model.SharingStatusPending {
			cp := *rel
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSharingRepo) RedeemPending(_ context.Context, code, redeemerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rel := range m.rels {
		if rel.SharingCode == code && rel.Status == model.SharingStatusPending {
			id := redeemerID
			rel.SharedUserID = &id
			rel.Status = model.SharingStatusActive
			return nil
		}
	}
	return pkgerrors.ErrConditionalUpdateMiss
}

func (m *mockSharingRepo) RevokeActive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel, ok := m.rels[id]
	if !ok || rel.Status != model.SharingStatusActive {
		return pkgerrors.ErrConditionalUpdateMiss
	}
	rel.Status = model.SharingStatusRevoked
	return nil
}

func (m *mockSharingRepo) ListForUser(_ context.Context, userID string) ([]model.SharingRelationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.SharingRelationship
	for _, rel := range m.rels {
		if rel.PrimaryUserID == userID || (rel.SharedUserID != nil && *rel.SharedUserID == userID) {
			result = append(result, *rel)
		}
	}
	return result, nil
}

// ── 测试装配 ──

type testRepos struct {
	user         *mockUserRepo
	category     *mockCategoryRepo
	transaction  *mockTransactionRepo
	budget       *mockBudgetRepo
	savingsGoal  *mockSavingsGoalRepo
	notification *mockNotificationRepo
	sharing      *mockSharingRepo
}

func newTestRepository() (*repository.Repository, *testRepos) {
	mocks := &testRepos{
		user:         newMockUserRepo(),
		category:     newMockCategoryRepo(),
		budget:       newMockBudgetRepo(),
		savingsGoal:  newMockSavingsGoalRepo(),
		notification: newMockNotificationRepo(),
		sharing:      newMockSharingRepo(),
	}
	mocks.transaction = newMockTransactionRepo(mocks.category)

	repo := &repository.Repository{
		User:         mocks.user,
		Category:     mocks.category,
		Transaction:  mocks.transaction,
		Budget:       mocks.budget,
		SavingsGoal:  mocks.savingsGoal,
		Notification: mocks.notification,
		Sharing:      mocks.sharing,
	}
	return repo, mocks
}
