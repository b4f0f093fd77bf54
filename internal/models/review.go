package models

import "time"

// Review — односторонняя оценка по заказу (1-5 звёзд плюс комментарий).
type Review struct {
	ID         int64     `db:"id" json:"id"`
	OrderID    int64     `db:"order_id" json:"order_id"`
	ReviewerID int64     `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID int64     `db:"reviewee_id" json:"reviewee_id"`
	ReviewType string    `db:"review_type" json:"review_type"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
