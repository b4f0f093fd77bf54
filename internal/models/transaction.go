package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction — запись журнала движения средств. Журнал только дописывается,
// Balance хранит остаток после применения операции.
type Transaction struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Type        string          `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Balance     decimal.Decimal `db:"balance" json:"balance"`
	RelatedID   *int64          `db:"related_id" json:"related_id,omitempty"`
	Description *string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
