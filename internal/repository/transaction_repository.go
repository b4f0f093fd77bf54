package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
)

// TransactionRepository отвечает за таблицу transactions и денежные операции
// по инициативе пользователя: пополнение и вывод средств.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository создаёт экземпляр репозитория.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Recharge пополняет баланс компании и дописывает запись в журнал.
func (r *TransactionRepository) Recharge(ctx context.Context, enterpriseUserID int64, amount decimal.Decimal) (*models.Transaction, error) {
	var txn models.Transaction

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var newBalance decimal.Decimal
		balanceQuery := `
			UPDATE enterprises
			SET balance = balance + $2, updated_at = NOW()
			WHERE user_id = $1
			RETURNING balance
		`
		if err := tx.GetContext(ctx, &newBalance, balanceQuery, enterpriseUserID, amount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEnterpriseNotFound
			}
			return fmt.Errorf("transaction repository: recharge balance %w", err)
		}

		insertQuery := `
			INSERT INTO transactions (user_id, type, amount, balance, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, user_id, type, amount, balance, related_id, description, created_at
		`
		if err := tx.QueryRowxContext(
			ctx, insertQuery,
			enterpriseUserID, models.TransactionTypeRecharge, amount, newBalance, "Пополнение баланса",
		).StructScan(&txn); err != nil {
			return fmt.Errorf("transaction repository: recharge ledger entry %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

// Withdraw списывает заработанные средства исполнителя. Доступный остаток
// берётся из последней записи журнала, вывод сверх остатка отклоняется.
func (r *TransactionRepository) Withdraw(ctx context.Context, individualUserID int64, amount decimal.Decimal) (*models.Transaction, error) {
	var txn models.Transaction

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Блокировка строки профиля сериализует параллельные выводы.
		var individualID int64
		lockQuery := `SELECT id FROM individuals WHERE user_id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &individualID, lockQuery, individualUserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrIndividualNotFound
			}
			return fmt.Errorf("transaction repository: lock individual %w", err)
		}

		balance, err := lastLedgerBalance(ctx, tx, individualUserID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		insertQuery := `
			INSERT INTO transactions (user_id, type, amount, balance, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, user_id, type, amount, balance, related_id, description, created_at
		`
		if err := tx.QueryRowxContext(
			ctx, insertQuery,
			individualUserID, models.TransactionTypeWithdraw, amount.Neg(), balance.Sub(amount), "Вывод средств",
		).StructScan(&txn); err != nil {
			return fmt.Errorf("transaction repository: withdraw ledger entry %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

// ListByUser возвращает страницу журнала пользователя, свежие записи первыми.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, page common.Page) ([]models.Transaction, bool, error) {
	page = page.Normalize()

	query := `
		SELECT id, user_id, type, amount, balance, related_id, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`

	rows := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &rows, query, userID, page.Limit(), page.Offset()); err != nil {
		return nil, false, fmt.Errorf("transaction repository: list by user %w", err)
	}

	rows, hasMore := common.Trim(rows, page)
	return rows, hasMore, nil
}

// WorkerBalance возвращает текущий доступный остаток исполнителя.
func (r *TransactionRepository) WorkerBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `
		SELECT COALESCE((
			SELECT balance FROM transactions WHERE user_id = $1 ORDER BY id DESC LIMIT 1
		), 0)
	`
	if err := r.db.GetContext(ctx, &balance, query, userID); err != nil {
		return decimal.Zero, fmt.Errorf("transaction repository: worker balance %w", err)
	}

	return balance, nil
}

// TotalIncome возвращает сумму всех выплат исполнителю.
func (r *TransactionRepository) TotalIncome(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type = $2
	`
	if err := r.db.GetContext(ctx, &total, query, userID, models.TransactionTypeIncome); err != nil {
		return decimal.Zero, fmt.Errorf("transaction repository: total income %w", err)
	}

	return total, nil
}
