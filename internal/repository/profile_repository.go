package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
)

// Ошибки репозитория профилей.
var (
	ErrEnterpriseNotFound = errors.New("enterprise profile not found")
	ErrIndividualNotFound = errors.New("individual profile not found")
)

// ProfileRepository отвечает за таблицы enterprises и individuals.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository создаёт экземпляр репозитория.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetEnterpriseByUserID возвращает профиль компании пользователя.
func (r *ProfileRepository) GetEnterpriseByUserID(ctx context.Context, userID int64) (*models.Enterprise, error) {
	return common.GetByField[models.Enterprise](ctx, r.db, "enterprises", "user_id", userID, ErrEnterpriseNotFound)
}

// GetIndividualByUserID возвращает профиль исполнителя пользователя.
func (r *ProfileRepository) GetIndividualByUserID(ctx context.Context, userID int64) (*models.Individual, error) {
	return common.GetByField[models.Individual](ctx, r.db, "individuals", "user_id", userID, ErrIndividualNotFound)
}

// GetUserIDByIndividualID возвращает идентификатор пользователя исполнителя.
func (r *ProfileRepository) GetUserIDByIndividualID(ctx context.Context, individualID int64) (int64, error) {
	var userID int64
	if err := r.db.GetContext(ctx, &userID, `SELECT user_id FROM individuals WHERE id = $1`, individualID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrIndividualNotFound
		}
		return 0, fmt.Errorf("profile repository: get user id by individual id %w", err)
	}

	return userID, nil
}

// UpdateEnterprise обновляет реквизиты компании. NULL в аргументах
// оставляет сохранённое значение без изменений.
func (r *ProfileRepository) UpdateEnterprise(ctx context.Context, userID int64, companyName, license, contact *string) (*models.Enterprise, error) {
	var enterprise models.Enterprise
	query := `
		UPDATE enterprises
		SET company_name = COALESCE($2, company_name),
			license = COALESCE($3, license),
			contact = COALESCE($4, contact),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, company_name, license, contact, balance, credit_score, total_tasks, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, userID, companyName, license, contact).StructScan(&enterprise); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEnterpriseNotFound
		}
		return nil, fmt.Errorf("profile repository: update enterprise %w", err)
	}

	return &enterprise, nil
}

// UpdateIndividual обновляет анкету исполнителя. NULL в аргументах
// оставляет сохранённое значение, массивы заменяются целиком.
func (r *ProfileRepository) UpdateIndividual(ctx context.Context, userID int64, realName *string, skills []string, experience *string, portfolio []string) (*models.Individual, error) {
	var individual models.Individual
	query := `
		UPDATE individuals
		SET real_name = COALESCE($2, real_name),
			skills = COALESCE($3, skills),
			experience = COALESCE($4, experience),
			portfolio = COALESCE($5, portfolio),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, real_name, skills, experience, portfolio, credit_score, completed_tasks, success_rate, created_at, updated_at
	`

	var skillsArg, portfolioArg interface{}
	if skills != nil {
		skillsArg = pq.Array(skills)
	}
	if portfolio != nil {
		portfolioArg = pq.Array(portfolio)
	}

	if err := r.db.QueryRowxContext(ctx, query, userID, realName, skillsArg, experience, portfolioArg).StructScan(&individual); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIndividualNotFound
		}
		return nil, fmt.Errorf("profile repository: update individual %w", err)
	}

	return &individual, nil
}
