package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Order — привязка задачи к принявшему её исполнителю.
type Order struct {
	ID                int64            `db:"id" json:"id"`
	TaskID            int64            `db:"task_id" json:"task_id"`
	IndividualID      int64            `db:"individual_id" json:"individual_id"`
	Status            string           `db:"status" json:"status"`
	SubmitContent     *string          `db:"submit_content" json:"submit_content,omitempty"`
	SubmitAttachments pq.StringArray   `db:"submit_attachments" json:"submit_attachments"`
	SubmitTime        *time.Time       `db:"submit_time" json:"submit_time,omitempty"`
	ReviewComment     *string          `db:"review_comment" json:"review_comment,omitempty"`
	ReviewTime        *time.Time       `db:"review_time" json:"review_time,omitempty"`
	ActualAmount      *decimal.Decimal `db:"actual_amount" json:"actual_amount,omitempty"`
	ViewCount         *int             `db:"view_count" json:"view_count,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}
