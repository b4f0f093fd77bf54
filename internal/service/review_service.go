package service

import (
	"context"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
	"github.com/ignatzorin/taskmarket-backend/internal/validation"
)

// ReviewRepository описывает зависимости сервиса от репозитория отзывов.
type ReviewRepositoryPort interface {
	Create(ctx context.Context, review *models.Review) error
	ListByReviewee(ctx context.Context, revieweeID int64, page common.Page) ([]models.Review, bool, error)
	AverageRating(ctx context.Context, revieweeID int64) (float64, int, error)
}

// ReviewOrderRepository описывает доступ к заказам для проверки участников.
type ReviewOrderRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Order, error)
}

// ReviewTaskRepository описывает доступ к задачам для определения владельца.
type ReviewTaskRepository interface {
	GetOwnerUserID(ctx context.Context, taskID int64) (int64, error)
}

// ReviewProfileRepository описывает доступ к профилям участников.
type ReviewProfileRepository interface {
	GetUserIDByIndividualID(ctx context.Context, individualID int64) (int64, error)
}

// ReviewService реализует взаимные оценки по завершённым заказам.
type ReviewService struct {
	reviews  ReviewRepositoryPort
	orders   ReviewOrderRepository
	tasks    ReviewTaskRepository
	profiles ReviewProfileRepository
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(
	reviews ReviewRepositoryPort,
	orders ReviewOrderRepository,
	tasks ReviewTaskRepository,
	profiles ReviewProfileRepository,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		orders:   orders,
		tasks:    tasks,
		profiles: profiles,
	}
}

// UserReviews — страница отзывов вместе со сводкой рейтинга.
type UserReviews struct {
	Reviews       []models.Review `json:"reviews"`
	HasMore       bool            `json:"has_more"`
	AverageRating float64         `json:"average_rating"`
	TotalCount    int             `json:"total_count"`
}

// Create сохраняет оценку по завершённому заказу. Направление оценки
// выводится из того, кем приходится автор: владелец задачи оценивает
// исполнителя, исполнитель — компанию. Посторонним запрещено.
func (s *ReviewService) Create(ctx context.Context, reviewerUserID, orderID int64, rating int, comment *string) (*models.Review, error) {
	if err := validation.ValidateRating(rating); err != nil {
		return nil, err
	}
	if comment != nil {
		if err := validation.ValidateLength("комментарий", *comment, 0, validation.MaxCommentLength); err != nil {
			return nil, err
		}
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, validation.Errorf("оценка доступна только по завершённому заказу")
	}

	ownerUserID, err := s.tasks.GetOwnerUserID(ctx, order.TaskID)
	if err != nil {
		return nil, err
	}
	workerUserID, err := s.profiles.GetUserIDByIndividualID(ctx, order.IndividualID)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		OrderID:    orderID,
		ReviewerID: reviewerUserID,
		Rating:     rating,
		Comment:    comment,
	}

	switch reviewerUserID {
	case ownerUserID:
		review.ReviewType = models.ReviewTypeEnterpriseToIndividual
		review.RevieweeID = workerUserID
	case workerUserID:
		review.ReviewType = models.ReviewTypeIndividualToEnterprise
		review.RevieweeID = ownerUserID
	default:
		return nil, ErrForbidden
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// ListForUser возвращает страницу полученных пользователем отзывов
// вместе со средней оценкой.
func (s *ReviewService) ListForUser(ctx context.Context, revieweeID int64, page common.Page) (*UserReviews, error) {
	reviews, hasMore, err := s.reviews.ListByReviewee(ctx, revieweeID, page)
	if err != nil {
		return nil, err
	}

	average, count, err := s.reviews.AverageRating(ctx, revieweeID)
	if err != nil {
		return nil, err
	}

	return &UserReviews{
		Reviews:       reviews,
		HasMore:       hasMore,
		AverageRating: average,
		TotalCount:    count,
	}, nil
}
