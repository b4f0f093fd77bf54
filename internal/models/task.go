package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Task описывает задачу, опубликованную компанией.
type Task struct {
	ID                    int64            `db:"id" json:"id"`
	EnterpriseID          int64            `db:"enterprise_id" json:"enterprise_id"`
	Type                  string           `db:"type" json:"type"`
	SubType               string           `db:"sub_type" json:"sub_type"`
	Title                 string           `db:"title" json:"title"`
	Description           string           `db:"description" json:"description"`
	Requirements          *string          `db:"requirements" json:"requirements,omitempty"`
	Attachments           pq.StringArray   `db:"attachments" json:"attachments"`
	Budget                decimal.Decimal  `db:"budget" json:"budget"`
	IsVideoTask           bool             `db:"is_video_task" json:"is_video_task"`
	BasePrice             *decimal.Decimal `db:"base_price" json:"base_price,omitempty"`
	PricePerThousandViews *decimal.Decimal `db:"price_per_thousand_views" json:"price_per_thousand_views,omitempty"`
	Deadline              time.Time        `db:"deadline" json:"deadline"`
	Status                string           `db:"status" json:"status"`
	CreatedAt             time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time        `db:"updated_at" json:"updated_at"`
}

// EnterpriseTaskRow — строка списка задач компании, дополненная именем
// принявшего исполнителя (если задача уже в работе).
type EnterpriseTaskRow struct {
	ID         int64           `db:"id" json:"id"`
	Title      string          `db:"title" json:"title"`
	Type       string          `db:"type" json:"type"`
	Status     string          `db:"status" json:"status"`
	Budget     decimal.Decimal `db:"budget" json:"budget"`
	Deadline   time.Time       `db:"deadline" json:"deadline"`
	WorkerName *string         `db:"worker_name" json:"worker_name,omitempty"`
}

// MarketTaskRow — строка биржи задач, дополненная названием компании.
type MarketTaskRow struct {
	ID             int64           `db:"id" json:"id"`
	Title          string          `db:"title" json:"title"`
	Type           string          `db:"type" json:"type"`
	SubType        string          `db:"sub_type" json:"sub_type"`
	Description    string          `db:"description" json:"description"`
	Budget         decimal.Decimal `db:"budget" json:"budget"`
	Deadline       time.Time       `db:"deadline" json:"deadline"`
	Status         string          `db:"status" json:"status"`
	EnterpriseName *string         `db:"enterprise_name" json:"enterprise_name,omitempty"`
}

// WorkerTaskRow — строка списка "мои задачи": задача вместе с полями заказа.
type WorkerTaskRow struct {
	ID             int64            `db:"id" json:"id"`
	Title          string           `db:"title" json:"title"`
	Type           string           `db:"type" json:"type"`
	OrderID        int64            `db:"order_id" json:"order_id"`
	OrderStatus    string           `db:"order_status" json:"order_status"`
	Budget         decimal.Decimal  `db:"budget" json:"budget"`
	Deadline       time.Time        `db:"deadline" json:"deadline"`
	EnterpriseName *string          `db:"enterprise_name" json:"enterprise_name,omitempty"`
	SubmitContent  *string          `db:"submit_content" json:"submit_content,omitempty"`
	ReviewComment  *string          `db:"review_comment" json:"review_comment,omitempty"`
	ActualAmount   *decimal.Decimal `db:"actual_amount" json:"actual_amount,omitempty"`
}

// TaskDetail — карточка задачи с данными принятого заказа.
type TaskDetail struct {
	Task
	EnterpriseName    *string        `json:"enterprise_name,omitempty"`
	AcceptedBy        *string        `json:"accepted_by,omitempty"`
	SubmitContent     *string        `json:"submit_content,omitempty"`
	SubmitAttachments pq.StringArray `json:"submit_attachments"`
	ReviewComment     *string        `json:"review_comment,omitempty"`
}

// EnterpriseStats — сводка по задачам компании для дашборда.
type EnterpriseStats struct {
	PendingReview int             `db:"pending_review" json:"pending_review"`
	InProgress    int             `db:"in_progress" json:"in_progress"`
	Completed     int             `db:"completed" json:"completed"`
	TotalTasks    int             `db:"total_tasks" json:"total_tasks"`
	Balance       decimal.Decimal `json:"balance"`
}

// WorkerStats — сводка профиля исполнителя.
type WorkerStats struct {
	CompletedTasks int             `json:"completed_tasks"`
	SuccessRate    decimal.Decimal `json:"success_rate"`
	CreditScore    decimal.Decimal `json:"credit_score"`
	Earnings       decimal.Decimal `json:"earnings"`
}
