package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/taskmarket-backend/internal/logger"
	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
	"github.com/ignatzorin/taskmarket-backend/internal/validation"
)

// ErrForbidden возвращается, когда пользователь действует вне своей области.
var ErrForbidden = errors.New("forbidden")

// Notifier доставляет событие пользователю по открытому соединению.
// Недоставленные события теряются, это осознанный компромисс.
type Notifier interface {
	Notify(userID int64, event string, payload interface{})
}

// События, рассылаемые контрагентам по ходу жизненного цикла задачи.
const (
	EventTaskAccepted  = "task_accepted"
	EventTaskSubmitted = "task_submitted"
	EventTaskApproved  = "task_approved"
	EventTaskRejected  = "task_rejected"
)

// EnterpriseTaskRepository описывает зависимости сервиса от репозитория задач.
type EnterpriseTaskRepository interface {
	Create(ctx context.Context, task *models.Task, enterpriseUserID int64) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetDetail(ctx context.Context, id int64) (*models.TaskDetail, error)
	ListByEnterprise(ctx context.Context, enterpriseID int64, status string, page common.Page) ([]models.EnterpriseTaskRow, bool, error)
	ListRecent(ctx context.Context, enterpriseID int64, limit int) ([]models.EnterpriseTaskRow, error)
	StatsByEnterprise(ctx context.Context, enterpriseID int64) (*models.EnterpriseStats, error)
	Cancel(ctx context.Context, taskID, enterpriseUserID int64) error
}

// EnterpriseOrderRepository описывает зависимости сервиса от репозитория заказов.
type EnterpriseOrderRepository interface {
	GetByTaskID(ctx context.Context, taskID int64) (*models.Order, error)
	Approve(ctx context.Context, taskID, enterpriseUserID int64, actualAmount decimal.Decimal) (*models.Order, error)
	Reject(ctx context.Context, taskID, enterpriseUserID int64, comment string) (*models.Order, error)
}

// EnterpriseProfileRepository описывает зависимости сервиса от профилей.
type EnterpriseProfileRepository interface {
	GetEnterpriseByUserID(ctx context.Context, userID int64) (*models.Enterprise, error)
	UpdateEnterprise(ctx context.Context, userID int64, companyName, license, contact *string) (*models.Enterprise, error)
	GetUserIDByIndividualID(ctx context.Context, individualID int64) (int64, error)
}

// EnterpriseLedgerRepository описывает зависимости сервиса от журнала средств.
type EnterpriseLedgerRepository interface {
	Recharge(ctx context.Context, enterpriseUserID int64, amount decimal.Decimal) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID int64, page common.Page) ([]models.Transaction, bool, error)
}

// EnterpriseService реализует операции кабинета компании.
type EnterpriseService struct {
	tasks    EnterpriseTaskRepository
	orders   EnterpriseOrderRepository
	profiles EnterpriseProfileRepository
	ledger   EnterpriseLedgerRepository
	notifier Notifier
}

// NewEnterpriseService создаёт сервис кабинета компании.
func NewEnterpriseService(
	tasks EnterpriseTaskRepository,
	orders EnterpriseOrderRepository,
	profiles EnterpriseProfileRepository,
	ledger EnterpriseLedgerRepository,
	notifier Notifier,
) *EnterpriseService {
	return &EnterpriseService{
		tasks:    tasks,
		orders:   orders,
		profiles: profiles,
		ledger:   ledger,
		notifier: notifier,
	}
}

// CreateTaskInput содержит данные публикуемой задачи.
type CreateTaskInput struct {
	Type                  string
	SubType               string
	Title                 string
	Description           string
	Requirements          *string
	Attachments           []string
	Budget                decimal.Decimal
	IsVideoTask           bool
	BasePrice             *decimal.Decimal
	PricePerThousandViews *decimal.Decimal
	Deadline              string
}

// Stats возвращает сводку дашборда: счётчики задач по статусам и баланс.
func (s *EnterpriseService) Stats(ctx context.Context, userID int64) (*models.EnterpriseStats, error) {
	profile, err := s.profiles.GetEnterpriseByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.tasks.StatsByEnterprise(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	stats.Balance = profile.Balance

	return stats, nil
}

// RecentTasks возвращает последние задачи компании.
func (s *EnterpriseService) RecentTasks(ctx context.Context, userID int64, limit int) ([]models.EnterpriseTaskRow, error) {
	profile, err := s.profiles.GetEnterpriseByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.tasks.ListRecent(ctx, profile.ID, limit)
}

// ListTasks возвращает страницу задач компании с опциональным фильтром по статусу.
func (s *EnterpriseService) ListTasks(ctx context.Context, userID int64, status string, page common.Page) ([]models.EnterpriseTaskRow, bool, error) {
	if status != "" {
		if _, ok := models.ValidTaskStatuses[status]; !ok {
			return nil, false, validation.Errorf("недопустимый статус: %s", status)
		}
	}

	profile, err := s.profiles.GetEnterpriseByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	return s.tasks.ListByEnterprise(ctx, profile.ID, status, page)
}

// CreateTask публикует задачу. Бюджет замораживается на балансе компании,
// задача сразу попадает на биржу в статусе approved.
func (s *EnterpriseService) CreateTask(ctx context.Context, userID int64, in CreateTaskInput) (*models.Task, error) {
	if err := validation.ValidateTaskType(in.Type, in.SubType); err != nil {
		return nil, err
	}
	if err := validation.ValidateLength("заголовок", in.Title, validation.MinTitleLength, validation.MaxTitleLength); err != nil {
		return nil, err
	}
	if err := validation.ValidateLength("описание", in.Description, validation.MinDescriptionLength, validation.MaxDescriptionLength); err != nil {
		return nil, err
	}
	if in.Requirements != nil {
		if err := validation.ValidateLength("требования", *in.Requirements, 0, validation.MaxRequirementsLength); err != nil {
			return nil, err
		}
	}
	if err := validation.ValidateAmount("сумма бюджета", in.Budget); err != nil {
		return nil, err
	}
	if err := validation.ValidateAttachments(in.Attachments); err != nil {
		return nil, err
	}

	deadline, err := parseDeadline(in.Deadline)
	if err != nil {
		return nil, err
	}

	if in.IsVideoTask {
		if in.BasePrice == nil {
			return nil, validation.Errorf("для видео задачи обязательна базовая ставка")
		}
		if err := validation.ValidateAmount("базовая ставка", *in.BasePrice); err != nil {
			return nil, err
		}
		if in.PricePerThousandViews != nil {
			if err := validation.ValidateAmount("ставка за тысячу просмотров", *in.PricePerThousandViews); err != nil {
				return nil, err
			}
		}
	}

	task := &models.Task{
		Type:                  in.Type,
		SubType:               in.SubType,
		Title:                 in.Title,
		Description:           in.Description,
		Requirements:          in.Requirements,
		Attachments:           in.Attachments,
		Budget:                in.Budget,
		IsVideoTask:           in.IsVideoTask,
		BasePrice:             in.BasePrice,
		PricePerThousandViews: in.PricePerThousandViews,
		Deadline:              deadline,
	}

	if err := s.tasks.Create(ctx, task, userID); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"task_id": task.ID,
		"budget":  task.Budget.String(),
	}).Info("задача опубликована")

	return task, nil
}

// TaskDetail возвращает карточку задачи компании вместе с данными заказа.
func (s *EnterpriseService) TaskDetail(ctx context.Context, userID, taskID int64) (*models.TaskDetail, error) {
	profile, err := s.profiles.GetEnterpriseByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	detail, err := s.tasks.GetDetail(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if detail.EnterpriseID != profile.ID {
		return nil, ErrForbidden
	}

	return detail, nil
}

// Approve принимает работу: рассчитывает выплату, закрывает заказ и задачу,
// переводит деньги исполнителю и возвращает остаток бюджета компании.
func (s *EnterpriseService) Approve(ctx context.Context, userID, taskID int64, viewCount *int) (*models.Order, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	views := viewCount
	if views == nil {
		if order, err := s.orders.GetByTaskID(ctx, taskID); err == nil {
			views = order.ViewCount
		}
	}

	amount := Settlement(task, views)

	order, err := s.orders.Approve(ctx, taskID, userID, amount)
	if err != nil {
		return nil, err
	}

	s.notifyWorker(ctx, order.IndividualID, EventTaskApproved, map[string]interface{}{
		"task_id":       taskID,
		"actual_amount": amount.String(),
	})

	return order, nil
}

// Reject возвращает работу на доработку с комментарием.
func (s *EnterpriseService) Reject(ctx context.Context, userID, taskID int64, comment string) (*models.Order, error) {
	if err := validation.ValidateLength("комментарий", comment, 1, validation.MaxCommentLength); err != nil {
		return nil, err
	}

	order, err := s.orders.Reject(ctx, taskID, userID, comment)
	if err != nil {
		return nil, err
	}

	s.notifyWorker(ctx, order.IndividualID, EventTaskRejected, map[string]interface{}{
		"task_id": taskID,
		"comment": comment,
	})

	return order, nil
}

// CancelTask снимает непринятую задачу с биржи и размораживает бюджет.
func (s *EnterpriseService) CancelTask(ctx context.Context, userID, taskID int64) error {
	return s.tasks.Cancel(ctx, taskID, userID)
}

// Profile возвращает профиль компании.
func (s *EnterpriseService) Profile(ctx context.Context, userID int64) (*models.Enterprise, error) {
	return s.profiles.GetEnterpriseByUserID(ctx, userID)
}

// UpdateProfile обновляет реквизиты компании.
func (s *EnterpriseService) UpdateProfile(ctx context.Context, userID int64, companyName, license, contact *string) (*models.Enterprise, error) {
	if companyName != nil {
		if err := validation.ValidateLength("название компании", *companyName, 1, 255); err != nil {
			return nil, err
		}
	}

	return s.profiles.UpdateEnterprise(ctx, userID, companyName, license, contact)
}

// Recharge пополняет баланс компании.
func (s *EnterpriseService) Recharge(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Transaction, error) {
	if err := validation.ValidateAmount("сумма пополнения", amount); err != nil {
		return nil, err
	}

	return s.ledger.Recharge(ctx, userID, amount)
}

// Transactions возвращает страницу журнала средств компании.
func (s *EnterpriseService) Transactions(ctx context.Context, userID int64, page common.Page) ([]models.Transaction, bool, error) {
	return s.ledger.ListByUser(ctx, userID, page)
}

// parseDeadline разбирает срок из RFC3339 или формата YYYY-MM-DD
// и проверяет, что он в будущем.
func parseDeadline(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, validation.Errorf("срок выполнения обязателен")
	}

	deadline, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		deadline, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, validation.Errorf("некорректный формат срока выполнения")
		}
	}

	if err := validation.ValidateDeadline(deadline); err != nil {
		return time.Time{}, err
	}

	return deadline, nil
}

// notifyWorker шлёт событие исполнителю заказа, если нотификатор подключён.
func (s *EnterpriseService) notifyWorker(ctx context.Context, individualID int64, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}

	workerUserID, err := s.profiles.GetUserIDByIndividualID(ctx, individualID)
	if err != nil {
		logger.Log.WithError(err).Warn("не удалось определить получателя события")
		return
	}

	s.notifier.Notify(workerUserID, event, payload)
}
