package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/taskmarket-backend/internal/logger"
	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/validation"

	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
)

// WorkerTaskRepository описывает зависимости сервиса от репозитория задач.
type WorkerTaskRepository interface {
	GetDetail(ctx context.Context, id int64) (*models.TaskDetail, error)
	GetOwnerUserID(ctx context.Context, taskID int64) (int64, error)
	SearchMarket(ctx context.Context, taskType, keyword string, page common.Page) ([]models.MarketTaskRow, bool, error)
}

// WorkerOrderRepository описывает зависимости сервиса от репозитория заказов.
type WorkerOrderRepository interface {
	Accept(ctx context.Context, taskID, individualUserID int64) (*models.Order, error)
	Submit(ctx context.Context, taskID, individualUserID int64, content string, attachments []string, viewCount *int) (*models.Order, error)
	GetByTaskID(ctx context.Context, taskID int64) (*models.Order, error)
	ListByIndividual(ctx context.Context, individualUserID int64, status string, page common.Page) ([]models.WorkerTaskRow, bool, error)
}

// WorkerProfileRepository описывает зависимости сервиса от профилей.
type WorkerProfileRepository interface {
	GetIndividualByUserID(ctx context.Context, userID int64) (*models.Individual, error)
	UpdateIndividual(ctx context.Context, userID int64, realName *string, skills []string, experience *string, portfolio []string) (*models.Individual, error)
}

// WorkerLedgerRepository описывает зависимости сервиса от журнала средств.
type WorkerLedgerRepository interface {
	Withdraw(ctx context.Context, individualUserID int64, amount decimal.Decimal) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID int64, page common.Page) ([]models.Transaction, bool, error)
	WorkerBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	TotalIncome(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// WorkerService реализует операции кабинета исполнителя и открытую биржу.
type WorkerService struct {
	tasks    WorkerTaskRepository
	orders   WorkerOrderRepository
	profiles WorkerProfileRepository
	ledger   WorkerLedgerRepository
	notifier Notifier
}

// NewWorkerService создаёт сервис кабинета исполнителя.
func NewWorkerService(
	tasks WorkerTaskRepository,
	orders WorkerOrderRepository,
	profiles WorkerProfileRepository,
	ledger WorkerLedgerRepository,
	notifier Notifier,
) *WorkerService {
	return &WorkerService{
		tasks:    tasks,
		orders:   orders,
		profiles: profiles,
		ledger:   ledger,
		notifier: notifier,
	}
}

// UpdateProfileInput содержит изменяемые поля анкеты исполнителя.
// Нулевые указатели и срезы оставляют сохранённые значения.
type UpdateProfileInput struct {
	RealName   *string
	Skills     []string
	Experience *string
	Portfolio  []string
}

// WorkerProfile — анкета исполнителя вместе со сводкой заработка.
type WorkerProfile struct {
	Individual *models.Individual `json:"individual"`
	Stats      models.WorkerStats `json:"stats"`
	Balance    decimal.Decimal    `json:"balance"`
}

// Market возвращает страницу открытых задач биржи.
func (s *WorkerService) Market(ctx context.Context, taskType, keyword string, page common.Page) ([]models.MarketTaskRow, bool, error) {
	if taskType != "" {
		if _, ok := models.ValidTaskTypes[taskType]; !ok {
			return nil, false, validation.Errorf("недопустимый тип задачи: %s", taskType)
		}
	}

	return s.tasks.SearchMarket(ctx, taskType, keyword, page)
}

// MyTasks возвращает страницу принятых исполнителем задач.
func (s *WorkerService) MyTasks(ctx context.Context, userID int64, status string, page common.Page) ([]models.WorkerTaskRow, bool, error) {
	if status != "" {
		if _, ok := models.ValidOrderStatuses[status]; !ok {
			return nil, false, validation.Errorf("недопустимый статус заказа: %s", status)
		}
	}

	return s.orders.ListByIndividual(ctx, userID, status, page)
}

// Accept принимает открытую задачу. Из двух одновременных попыток заказ
// получает ровно одна, второй исполнитель получает конфликт.
func (s *WorkerService) Accept(ctx context.Context, userID, taskID int64) (*models.Order, error) {
	order, err := s.orders.Accept(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"task_id":  taskID,
		"order_id": order.ID,
	}).Info("задача принята в работу")

	s.notifyOwner(ctx, taskID, EventTaskAccepted, map[string]interface{}{
		"task_id":  taskID,
		"order_id": order.ID,
	})

	return order, nil
}

// Submit отправляет результат работы на проверку.
func (s *WorkerService) Submit(ctx context.Context, userID, taskID int64, content string, attachments []string, viewCount *int) (*models.Order, error) {
	if err := validation.ValidateLength("результат работы", content, 1, validation.MaxDescriptionLength); err != nil {
		return nil, err
	}
	if err := validation.ValidateAttachments(attachments); err != nil {
		return nil, err
	}

	order, err := s.orders.Submit(ctx, taskID, userID, content, attachments, viewCount)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, taskID, EventTaskSubmitted, map[string]interface{}{
		"task_id":  taskID,
		"order_id": order.ID,
	})

	return order, nil
}

// TaskDetail возвращает карточку задачи. Открытые задачи видны всем
// исполнителям, занятые — только принявшему заказ.
func (s *WorkerService) TaskDetail(ctx context.Context, userID, taskID int64) (*models.TaskDetail, error) {
	detail, err := s.tasks.GetDetail(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if detail.Status == models.TaskStatusApproved {
		return detail, nil
	}

	profile, err := s.profiles.GetIndividualByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, ErrForbidden
	}
	if order.IndividualID != profile.ID {
		return nil, ErrForbidden
	}

	return detail, nil
}

// Profile возвращает анкету исполнителя со сводкой заработка.
func (s *WorkerService) Profile(ctx context.Context, userID int64) (*WorkerProfile, error) {
	individual, err := s.profiles.GetIndividualByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.WorkerBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	earnings, err := s.ledger.TotalIncome(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &WorkerProfile{
		Individual: individual,
		Stats: models.WorkerStats{
			CompletedTasks: individual.CompletedTasks,
			SuccessRate:    individual.SuccessRate,
			CreditScore:    individual.CreditScore,
			Earnings:       earnings,
		},
		Balance: balance,
	}, nil
}

// UpdateProfile обновляет анкету исполнителя.
func (s *WorkerService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*models.Individual, error) {
	if in.Skills != nil {
		if err := validation.ValidateSkills(in.Skills); err != nil {
			return nil, err
		}
	}

	return s.profiles.UpdateIndividual(ctx, userID, in.RealName, in.Skills, in.Experience, in.Portfolio)
}

// Withdraw выводит заработанные средства.
func (s *WorkerService) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Transaction, error) {
	if err := validation.ValidateAmount("сумма вывода", amount); err != nil {
		return nil, err
	}

	return s.ledger.Withdraw(ctx, userID, amount)
}

// Transactions возвращает страницу журнала средств исполнителя.
func (s *WorkerService) Transactions(ctx context.Context, userID int64, page common.Page) ([]models.Transaction, bool, error) {
	return s.ledger.ListByUser(ctx, userID, page)
}

// notifyOwner шлёт событие компании владельцу задачи, если нотификатор подключён.
func (s *WorkerService) notifyOwner(ctx context.Context, taskID int64, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}

	ownerUserID, err := s.tasks.GetOwnerUserID(ctx, taskID)
	if err != nil {
		logger.Log.WithError(err).Warn("не удалось определить получателя события")
		return
	}

	s.notifier.Notify(ownerUserID, event, payload)
}
