package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Enterprise — профиль компании, расширение пользователя с ролью enterprise.
// Создаётся лениво при выборе роли.
type Enterprise struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	CompanyName *string         `db:"company_name" json:"company_name,omitempty"`
	License     *string         `db:"license" json:"license,omitempty"`
	Contact     *string         `db:"contact" json:"contact,omitempty"`
	Balance     decimal.Decimal `db:"balance" json:"balance"`
	CreditScore decimal.Decimal `db:"credit_score" json:"credit_score"`
	TotalTasks  int             `db:"total_tasks" json:"total_tasks"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Individual — профиль исполнителя, расширение пользователя с ролью individual.
type Individual struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	RealName       *string         `db:"real_name" json:"real_name,omitempty"`
	Skills         pq.StringArray  `db:"skills" json:"skills"`
	Experience     *string         `db:"experience" json:"experience,omitempty"`
	Portfolio      pq.StringArray  `db:"portfolio" json:"portfolio"`
	CreditScore    decimal.Decimal `db:"credit_score" json:"credit_score"`
	CompletedTasks int             `db:"completed_tasks" json:"completed_tasks"`
	SuccessRate    decimal.Decimal `db:"success_rate" json:"success_rate"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
