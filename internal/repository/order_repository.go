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

// Ошибки репозитория заказов.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrTaskAlreadyTaken   = errors.New("task already taken")
	ErrInvalidOrderStatus = errors.New("invalid order status")
)

// OrderRepository отвечает за таблицу orders и переходы статусов
// задача/заказ. Оба статуса всегда меняются одной транзакцией.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository создаёт экземпляр репозитория.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Accept принимает открытую задачу от имени исполнителя. Переход статуса
// задачи условный: из двух параллельных попыток заказ получает ровно одна,
// вторая завершается конфликтом.
func (r *OrderRepository) Accept(ctx context.Context, taskID, individualUserID int64) (*models.Order, error) {
	var order models.Order

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var individualID int64
		if err := tx.GetContext(ctx, &individualID, `SELECT id FROM individuals WHERE user_id = $1`, individualUserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrIndividualNotFound
			}
			return fmt.Errorf("order repository: get individual %w", err)
		}

		claimQuery := `
			UPDATE tasks
			SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`
		result, err := tx.ExecContext(ctx, claimQuery, taskID, models.TaskStatusApproved, models.TaskStatusInProgress)
		if err != nil {
			return fmt.Errorf("order repository: claim task %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("order repository: claim task rows affected %w", err)
		}
		if affected == 0 {
			var exists bool
			if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, taskID); err != nil {
				return fmt.Errorf("order repository: check task %w", err)
			}
			if !exists {
				return ErrTaskNotFound
			}
			return ErrTaskAlreadyTaken
		}

		insertQuery := `
			INSERT INTO orders (task_id, individual_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, task_id, individual_id, status, submit_content, submit_attachments, submit_time,
				review_comment, review_time, actual_amount, view_count, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, insertQuery, taskID, individualID, models.OrderStatusInProgress).StructScan(&order); err != nil {
			return fmt.Errorf("order repository: create order %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// Submit сохраняет результат работы и переводит заказ и задачу в submitted.
// Допустим только из in_progress, в том числе после возврата на доработку.
func (r *OrderRepository) Submit(ctx context.Context, taskID, individualUserID int64, content string, attachments []string, viewCount *int) (*models.Order, error) {
	var order models.Order

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		updateQuery := `
			UPDATE orders o
			SET status = $4, submit_content = $5, submit_attachments = $6, submit_time = NOW(),
				view_count = COALESCE($7, o.view_count), updated_at = NOW()
			FROM individuals i
			WHERE o.task_id = $1 AND o.individual_id = i.id AND i.user_id = $2 AND o.status = $3
			RETURNING o.id, o.task_id, o.individual_id, o.status, o.submit_content, o.submit_attachments,
				o.submit_time, o.review_comment, o.review_time, o.actual_amount, o.view_count, o.created_at, o.updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, updateQuery,
			taskID, individualUserID, models.OrderStatusInProgress, models.OrderStatusSubmitted,
			content, attachmentsArg(attachments), viewCount,
		).StructScan(&order); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return r.classifyOrderMiss(ctx, tx, taskID, individualUserID)
			}
			return fmt.Errorf("order repository: submit %w", err)
		}

		mirrorQuery := `UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, mirrorQuery, taskID, models.TaskStatusSubmitted); err != nil {
			return fmt.Errorf("order repository: mirror task status %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// Approve принимает результат работы: заказ и задача переходят в completed,
// рассчитанная сумма выплачивается исполнителю, неосвоенный остаток бюджета
// возвращается компании. Всё в одной транзакции.
func (r *OrderRepository) Approve(ctx context.Context, taskID, enterpriseUserID int64, actualAmount decimal.Decimal) (*models.Order, error) {
	var order models.Order

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var enterprise struct {
			ID      int64           `db:"id"`
			Balance decimal.Decimal `db:"balance"`
		}
		lockQuery := `SELECT id, balance FROM enterprises WHERE user_id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &enterprise, lockQuery, enterpriseUserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEnterpriseNotFound
			}
			return fmt.Errorf("order repository: lock enterprise %w", err)
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
			return fmt.Errorf("order repository: lock task %w", err)
		}
		if task.Status != models.TaskStatusSubmitted {
			return ErrInvalidOrderStatus
		}

		orderQuery := `
			UPDATE orders
			SET status = $3, actual_amount = $4, review_time = NOW(), updated_at = NOW()
			WHERE task_id = $1 AND status = $2
			RETURNING id, task_id, individual_id, status, submit_content, submit_attachments, submit_time,
				review_comment, review_time, actual_amount, view_count, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, orderQuery,
			taskID, models.OrderStatusSubmitted, models.OrderStatusCompleted, actualAmount,
		).StructScan(&order); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("order repository: complete order %w", err)
		}

		mirrorQuery := `UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, mirrorQuery, taskID, models.TaskStatusCompleted); err != nil {
			return fmt.Errorf("order repository: mirror task status %w", err)
		}

		// Выплата идёт из замороженного при публикации бюджета,
		// баланс компании меняет только возврат остатка.
		ledgerQuery := `
			INSERT INTO transactions (user_id, type, amount, balance, related_id, description)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(
			ctx, ledgerQuery,
			enterpriseUserID, models.TransactionTypePay, actualAmount.Neg(), enterprise.Balance, taskID,
			"Выплата по задаче: "+task.Title,
		); err != nil {
			return fmt.Errorf("order repository: pay ledger entry %w", err)
		}

		refund := task.Budget.Sub(actualAmount)
		if refund.IsPositive() {
			newBalance := enterprise.Balance.Add(refund)
			balanceQuery := `UPDATE enterprises SET balance = $2, updated_at = NOW() WHERE id = $1`
			if _, err := tx.ExecContext(ctx, balanceQuery, enterprise.ID, newBalance); err != nil {
				return fmt.Errorf("order repository: refund remainder %w", err)
			}
			if _, err := tx.ExecContext(
				ctx, ledgerQuery,
				enterpriseUserID, models.TransactionTypeUnfreeze, refund, newBalance, taskID,
				"Возврат остатка бюджета задачи: "+task.Title,
			); err != nil {
				return fmt.Errorf("order repository: refund ledger entry %w", err)
			}
		}

		// Блокируем строку исполнителя до чтения журнала: баланс в строке
		// income считается от последней записи, параллельные выплата и вывод
		// не должны читать одну и ту же базу.
		var workerUserID int64
		if err := tx.GetContext(ctx, &workerUserID, `SELECT user_id FROM individuals WHERE id = $1 FOR UPDATE`, order.IndividualID); err != nil {
			return fmt.Errorf("order repository: get worker user %w", err)
		}

		workerBalance, err := lastLedgerBalance(ctx, tx, workerUserID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx, ledgerQuery,
			workerUserID, models.TransactionTypeIncome, actualAmount, workerBalance.Add(actualAmount), taskID,
			"Оплата за задачу: "+task.Title,
		); err != nil {
			return fmt.Errorf("order repository: income ledger entry %w", err)
		}

		countersQuery := `
			UPDATE individuals
			SET completed_tasks = completed_tasks + 1,
				success_rate = (
					SELECT ROUND(100.0 * COUNT(*) FILTER (WHERE status = 'completed') / COUNT(*), 2)
					FROM orders
					WHERE individual_id = $1
				),
				updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, countersQuery, order.IndividualID); err != nil {
			return fmt.Errorf("order repository: update worker counters %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// Reject возвращает работу на доработку: комментарий сохраняется, заказ и
// задача снова переходят в in_progress, исполнитель может отправить повторно.
func (r *OrderRepository) Reject(ctx context.Context, taskID, enterpriseUserID int64, comment string) (*models.Order, error) {
	var order models.Order

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var taskStatus string
		taskQuery := `
			SELECT t.status
			FROM tasks t
			JOIN enterprises e ON e.id = t.enterprise_id
			WHERE t.id = $1 AND e.user_id = $2
			FOR UPDATE OF t
		`
		if err := tx.GetContext(ctx, &taskStatus, taskQuery, taskID, enterpriseUserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("order repository: lock task %w", err)
		}
		if taskStatus != models.TaskStatusSubmitted {
			return ErrInvalidOrderStatus
		}

		orderQuery := `
			UPDATE orders
			SET status = $3, review_comment = $4, review_time = NOW(), updated_at = NOW()
			WHERE task_id = $1 AND status = $2
			RETURNING id, task_id, individual_id, status, submit_content, submit_attachments, submit_time,
				review_comment, review_time, actual_amount, view_count, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, orderQuery,
			taskID, models.OrderStatusSubmitted, models.OrderStatusInProgress, comment,
		).StructScan(&order); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("order repository: reject order %w", err)
		}

		mirrorQuery := `UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, mirrorQuery, taskID, models.TaskStatusInProgress); err != nil {
			return fmt.Errorf("order repository: mirror task status %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// GetByTaskID возвращает заказ задачи.
func (r *OrderRepository) GetByTaskID(ctx context.Context, taskID int64) (*models.Order, error) {
	return common.GetByField[models.Order](ctx, r.db, "orders", "task_id", taskID, ErrOrderNotFound)
}

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	return common.GetByID[models.Order](ctx, r.db, "orders", id, ErrOrderNotFound)
}

// ListByIndividual возвращает страницу задач исполнителя вместе с полями заказа.
// Пустой статус означает выборку без фильтра по статусу заказа.
func (r *OrderRepository) ListByIndividual(ctx context.Context, individualUserID int64, status string, page common.Page) ([]models.WorkerTaskRow, bool, error) {
	page = page.Normalize()

	query := `
		SELECT t.id, t.title, t.type, o.id AS order_id, o.status AS order_status, t.budget, t.deadline,
			e.company_name AS enterprise_name, o.submit_content, o.review_comment, o.actual_amount
		FROM orders o
		JOIN individuals i ON i.id = o.individual_id
		JOIN tasks t ON t.id = o.task_id
		JOIN enterprises e ON e.id = t.enterprise_id
		WHERE i.user_id = $1
			AND ($2 = '' OR o.status = $2)
		ORDER BY o.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows := []models.WorkerTaskRow{}
	if err := r.db.SelectContext(ctx, &rows, query, individualUserID, status, page.Limit(), page.Offset()); err != nil {
		return nil, false, fmt.Errorf("order repository: list by individual %w", err)
	}

	rows, hasMore := common.Trim(rows, page)
	return rows, hasMore, nil
}

// classifyOrderMiss различает отсутствие заказа и неподходящий статус,
// когда условное обновление не нашло строку.
func (r *OrderRepository) classifyOrderMiss(ctx context.Context, tx *sqlx.Tx, taskID, individualUserID int64) error {
	var exists bool
	checkQuery := `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN individuals i ON i.id = o.individual_id
			WHERE o.task_id = $1 AND i.user_id = $2
		)
	`
	if err := tx.GetContext(ctx, &exists, checkQuery, taskID, individualUserID); err != nil {
		return fmt.Errorf("order repository: classify miss %w", err)
	}
	if !exists {
		return ErrOrderNotFound
	}
	return ErrInvalidOrderStatus
}

// attachmentsArg приводит срез вложений к типу массива PostgreSQL.
// Нулевой срез сохраняется как пустой массив, не как NULL.
func attachmentsArg(items []string) pq.StringArray {
	if items == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(items)
}

// lastLedgerBalance возвращает остаток после последней записи журнала.
func lastLedgerBalance(ctx context.Context, tx *sqlx.Tx, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `
		SELECT COALESCE((
			SELECT balance FROM transactions WHERE user_id = $1 ORDER BY id DESC LIMIT 1
		), 0)
	`
	if err := tx.GetContext(ctx, &balance, query, userID); err != nil {
		return decimal.Zero, fmt.Errorf("ledger balance: %w", err)
	}
	return balance, nil
}
