package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
)

// Ошибки репозитория задач.
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTaskNotCancellable  = errors.New("task not cancellable")
)

// TaskRepository отвечает за таблицу tasks и связанные денежные операции
// компании: заморозку бюджета при публикации и возврат при отмене.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository создаёт экземпляр репозитория.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create публикует задачу и замораживает её бюджет одной транзакцией.
// Строка компании блокируется, поэтому параллельные публикации не уводят
// баланс в минус. Задача сразу получает статус approved.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task, enterpriseUserID int64) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var enterprise struct {
			ID      int64           `db:"id"`
			Balance decimal.Decimal `db:"balance"`
		}
		lockQuery := `SELECT id, balance FROM enterprises WHERE user_id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &enterprise, lockQuery, enterpriseUserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEnterpriseNotFound
			}
			return fmt.Errorf("task repository: lock enterprise %w", err)
		}

		if enterprise.Balance.LessThan(task.Budget) {
			return ErrInsufficientBalance
		}

		task.EnterpriseID = enterprise.ID
		task.Status = models.TaskStatusApproved

		insertQuery := `
			INSERT INTO tasks (enterprise_id, type, sub_type, title, description, requirements, attachments,
				budget, is_video_task, base_price, price_per_thousand_views, deadline, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, insertQuery,
			task.EnterpriseID, task.Type, task.SubType, task.Title, task.Description,
			task.Requirements, attachmentsArg(task.Attachments), task.Budget, task.IsVideoTask,
			task.BasePrice, task.PricePerThousandViews, task.Deadline, task.Status,
		).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return fmt.Errorf("task repository: create %w", err)
		}

		newBalance := enterprise.Balance.Sub(task.Budget)
		balanceQuery := `
			UPDATE enterprises
			SET balance = $2, total_tasks = total_tasks + 1, updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, balanceQuery, enterprise.ID, newBalance); err != nil {
			return fmt.Errorf("task repository: freeze budget %w", err)
		}

		ledgerQuery := `
			INSERT INTO transactions (user_id, type, amount, balance, related_id, description)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		description := "Заморозка бюджета задачи: " + task.Title
		if _, err := tx.ExecContext(
			ctx, ledgerQuery,
			enterpriseUserID, models.TransactionTypeFreeze, task.Budget.Neg(), newBalance, task.ID, description,
		); err != nil {
			return fmt.Errorf("task repository: freeze ledger entry %w", err)
		}

		return nil
	})
}

// GetByID возвращает задачу по идентификатору.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return common.GetByID[models.Task](ctx, r.db, "tasks", id, ErrTaskNotFound)
}

// GetOwnerUserID возвращает идентификатор пользователя компании владельца задачи.
func (r *TaskRepository) GetOwnerUserID(ctx context.Context, taskID int64) (int64, error) {
	var userID int64
	query := `
		SELECT e.user_id
		FROM tasks t
		JOIN enterprises e ON e.id = t.enterprise_id
		WHERE t.id = $1
	`
	if err := r.db.GetContext(ctx, &userID, query, taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTaskNotFound
		}
		return 0, fmt.Errorf("task repository: get owner user id %w", err)
	}

	return userID, nil
}

type taskDetailRow struct {
	models.Task
	EnterpriseName    *string        `db:"enterprise_name"`
	AcceptedBy        *string        `db:"accepted_by"`
	SubmitContent     *string        `db:"submit_content"`
	SubmitAttachments pq.StringArray `db:"submit_attachments"`
	ReviewComment     *string        `db:"review_comment"`
}

// GetDetail возвращает карточку задачи вместе с данными принятого заказа.
func (r *TaskRepository) GetDetail(ctx context.Context, id int64) (*models.TaskDetail, error) {
	var row taskDetailRow
	query := `
		SELECT t.id, t.enterprise_id, t.type, t.sub_type, t.title, t.description, t.requirements, t.attachments,
			t.budget, t.is_video_task, t.base_price, t.price_per_thousand_views, t.deadline, t.status,
			t.created_at, t.updated_at,
			e.company_name AS enterprise_name,
			COALESCE(i.real_name, wu.name) AS accepted_by,
			o.submit_content, COALESCE(o.submit_attachments, '{}') AS submit_attachments, o.review_comment
		FROM tasks t
		JOIN enterprises e ON e.id = t.enterprise_id
		LEFT JOIN orders o ON o.task_id = t.id
		LEFT JOIN individuals i ON i.id = o.individual_id
		LEFT JOIN users wu ON wu.id = i.user_id
		WHERE t.id = $1
	`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("task repository: get detail %w", err)
	}

	return &models.TaskDetail{
		Task:              row.Task,
		EnterpriseName:    row.EnterpriseName,
		AcceptedBy:        row.AcceptedBy,
		SubmitContent:     row.SubmitContent,
		SubmitAttachments: row.SubmitAttachments,
		ReviewComment:     row.ReviewComment,
	}, nil
}

// ListByEnterprise возвращает страницу задач компании с именем исполнителя.
// Пустой статус означает выборку без фильтра.
func (r *TaskRepository) ListByEnterprise(ctx context.Context, enterpriseID int64, status string, page common.Page) ([]models.EnterpriseTaskRow, bool, error) {
	page = page.Normalize()

	query := `
		SELECT t.id, t.title, t.type, t.status, t.budget, t.deadline,
			COALESCE(i.real_name, wu.name) AS worker_name
		FROM tasks t
		LEFT JOIN orders o ON o.task_id = t.id
		LEFT JOIN individuals i ON i.id = o.individual_id
		LEFT JOIN users wu ON wu.id = i.user_id
		WHERE t.enterprise_id = $1
			AND ($2 = '' OR t.status = $2)
		ORDER BY t.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows := []models.EnterpriseTaskRow{}
	if err := r.db.SelectContext(ctx, &rows, query, enterpriseID, status, page.Limit(), page.Offset()); err != nil {
		return nil, false, fmt.Errorf("task repository: list by enterprise %w", err)
	}

	rows, hasMore := common.Trim(rows, page)
	return rows, hasMore, nil
}

// ListRecent возвращает последние задачи компании для дашборда.
func (r *TaskRepository) ListRecent(ctx context.Context, enterpriseID int64, limit int) ([]models.EnterpriseTaskRow, error) {
	if limit < 1 || limit > common.MaxPageSize {
		limit = 5
	}

	query := `
		SELECT t.id, t.title, t.type, t.status, t.budget, t.deadline,
			COALESCE(i.real_name, wu.name) AS worker_name
		FROM tasks t
		LEFT JOIN orders o ON o.task_id = t.id
		LEFT JOIN individuals i ON i.id = o.individual_id
		LEFT JOIN users wu ON wu.id = i.user_id
		WHERE t.enterprise_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`

	rows := []models.EnterpriseTaskRow{}
	if err := r.db.SelectContext(ctx, &rows, query, enterpriseID, limit); err != nil {
		return nil, fmt.Errorf("task repository: list recent %w", err)
	}

	return rows, nil
}

// SearchMarket возвращает страницу открытых задач биржи. Фильтр по типу и
// ключевому слову опционален, показываются только задачи в статусе approved.
func (r *TaskRepository) SearchMarket(ctx context.Context, taskType, keyword string, page common.Page) ([]models.MarketTaskRow, bool, error) {
	page = page.Normalize()

	query := `
		SELECT t.id, t.title, t.type, t.sub_type, t.description, t.budget, t.deadline, t.status,
			e.company_name AS enterprise_name
		FROM tasks t
		JOIN enterprises e ON e.id = t.enterprise_id
		WHERE t.status = $1
			AND ($2 = '' OR t.type = $2)
			AND ($3 = '' OR t.title ILIKE '%' || $3 || '%' OR t.description ILIKE '%' || $3 || '%')
		ORDER BY t.created_at DESC
		LIMIT $4 OFFSET $5
	`

	rows := []models.MarketTaskRow{}
	if err := r.db.SelectContext(ctx, &rows, query, models.TaskStatusApproved, taskType, keyword, page.Limit(), page.Offset()); err != nil {
		return nil, false, fmt.Errorf("task repository: search market %w", err)
	}

	rows, hasMore := common.Trim(rows, page)
	return rows, hasMore, nil
}

// StatsByEnterprise возвращает счётчики задач компании по статусам.
func (r *TaskRepository) StatsByEnterprise(ctx context.Context, enterpriseID int64) (*models.EnterpriseStats, error) {
	var stats models.EnterpriseStats
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'submitted') AS pending_review,
			COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) AS total_tasks
		FROM tasks
		WHERE enterprise_id = $1
	`
	if err := r.db.GetContext(ctx, &stats, query, enterpriseID); err != nil {
		return nil, fmt.Errorf("task repository: stats by enterprise %w", err)
	}

	return &stats, nil
}

// Cancel отменяет ещё не принятую задачу и возвращает замороженный бюджет.
// Отмена допустима только из статусов pending и approved.
func (r *TaskRepository) Cancel(ctx context.Context, taskID, enterpriseUserID int64) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var enterprise struct {
			ID      int64           `db:"id"`
			Balance decimal.Decimal `db:"balance"`
		}
		lockQuery := `SELECT id, balance FROM enterprises WHERE user_id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &enterprise, lockQuery, enterpriseUserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEnterpriseNotFound
			}
			return fmt.Errorf("task repository: lock enterprise %w", err)
		}

		var task struct {
			Budget decimal.Decimal `db:"budget"`
			Status string          `db:"status"`
			Title  string          `db:"title"`
		}
		taskQuery := `SELECT budget, status, title FROM tasks WHERE id = $1 AND enterprise_id = $2 FOR UPDATE`
		if err := tx.GetContext(ctx, &task, taskQuery, taskID, enterprise.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("task repository: lock task %w", err)
		}

		if task.Status != models.TaskStatusPending && task.Status != models.TaskStatusApproved {
			return ErrTaskNotCancellable
		}

		updateQuery := `UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, updateQuery, taskID, models.TaskStatusCancelled); err != nil {
			return fmt.Errorf("task repository: cancel %w", err)
		}

		newBalance := enterprise.Balance.Add(task.Budget)
		balanceQuery := `UPDATE enterprises SET balance = $2, updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, balanceQuery, enterprise.ID, newBalance); err != nil {
			return fmt.Errorf("task repository: refund budget %w", err)
		}

		ledgerQuery := `
			INSERT INTO transactions (user_id, type, amount, balance, related_id, description)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		description := "Возврат бюджета отменённой задачи: " + task.Title
		if _, err := tx.ExecContext(
			ctx, ledgerQuery,
			enterpriseUserID, models.TransactionTypeUnfreeze, task.Budget, newBalance, taskID, description,
		); err != nil {
			return fmt.Errorf("task repository: refund ledger entry %w", err)
		}

		return nil
	})
}
