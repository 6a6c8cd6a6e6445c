package service

import (
	"go.uber.org/zap"

	"github.com/lucontre/expense-tracker-pro-sub000/config"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/repository"
	"github.com/lucontre/expense-tracker-pro-sub000/pkg/jwt"
	"github.com/lucontre/expense-tracker-pro-sub000/pkg/redis"
	"github.com/lucontre/expense-tracker-pro-sub000/pkg/storage"
)

// Service 聚合所有业务服务，供 handler 层统一注入
type Service struct {
	Auth         AuthService
	User         UserService
	Category     CategoryService
	Transaction  TransactionService
	Budget       BudgetService
	SavingsGoal  SavingsGoalService
	Notification NotificationService
	Sharing      SharingService
	Report       ReportService
}

// NewService 创建 Service 聚合实例
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	store *storage.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, store, logger),
		Category:     NewCategoryService(repo, logger),
		Transaction:  NewTransactionService(repo, store, logger),
		Budget:       NewBudgetService(repo, logger),
		SavingsGoal:  NewSavingsGoalService(repo, logger),
		Notification: NewNotificationService(repo, logger),
		Sharing:      NewSharingService(repo, logger),
		Report:       NewReportService(repo, logger),
	}
}
