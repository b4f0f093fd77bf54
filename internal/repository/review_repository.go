package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
)

// ErrReviewAlreadyExists возвращается при повторной оценке того же заказа
// в том же направлении.
var ErrReviewAlreadyExists = errors.New("review already exists")

// ReviewRepository отвечает за таблицу reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository создаёт экземпляр репозитория.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create сохраняет оценку по заказу. Одно направление оценки на заказ.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (order_id, reviewer_id, reviewee_id, review_type, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		review.OrderID, review.ReviewerID, review.RevieweeID, review.ReviewType, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrReviewAlreadyExists
		}
		return fmt.Errorf("review repository: create %w", err)
	}

	return nil
}

// ListByReviewee возвращает страницу оценок, полученных пользователем.
func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID int64, page common.Page) ([]models.Review, bool, error) {
	page = page.Normalize()

	query := `
		SELECT id, order_id, reviewer_id, reviewee_id, review_type, rating, comment, created_at
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows := []models.Review{}
	if err := r.db.SelectContext(ctx, &rows, query, revieweeID, page.Limit(), page.Offset()); err != nil {
		return nil, false, fmt.Errorf("review repository: list by reviewee %w", err)
	}

	rows, hasMore := common.Trim(rows, page)
	return rows, hasMore, nil
}

// AverageRating возвращает среднюю оценку пользователя и количество оценок.
func (r *ReviewRepository) AverageRating(ctx context.Context, revieweeID int64) (float64, int, error) {
	var result struct {
		Average float64 `db:"average"`
		Count   int     `db:"count"`
	}
	query := `
		SELECT COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count
		FROM reviews
		WHERE reviewee_id = $1
	`
	if err := r.db.GetContext(ctx, &result, query, revieweeID); err != nil {
		return 0, 0, fmt.Errorf("review repository: average rating %w", err)
	}

	return result.Average, result.Count, nil
}
