package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
)

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = errors.New("user not found")

// UserRepository отвечает за работу с таблицей users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertByOpenID создаёт пользователя по openid или обновляет существующего.
// Поля с NULL в аргументах не затирают сохранённые значения, время
// последнего входа обновляется всегда.
func (r *UserRepository) UpsertByOpenID(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (open_id, name, email, phone, avatar_url, login_method, last_signed_in)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (open_id) DO UPDATE
		SET name = COALESCE(EXCLUDED.name, users.name),
			email = COALESCE(EXCLUDED.email, users.email),
			phone = COALESCE(EXCLUDED.phone, users.phone),
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
			login_method = COALESCE(EXCLUDED.login_method, users.login_method),
			last_signed_in = NOW(),
			updated_at = NOW()
		RETURNING id, open_id, name, email, phone, avatar_url, login_method, role, last_signed_in, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.OpenID, user.Name, user.Email, user.Phone, user.AvatarURL, user.LoginMethod,
	).StructScan(user); err != nil {
		return fmt.Errorf("user repository: upsert by open id %w", err)
	}

	return nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", id, ErrUserNotFound)
}

// GetByOpenID возвращает пользователя по openid.
func (r *UserRepository) GetByOpenID(ctx context.Context, openID string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "open_id", openID, ErrUserNotFound)
}

// SetRole сохраняет роль пользователя и лениво создаёт соответствующий
// профиль. Вызов идемпотентен: повторный выбор той же роли не создаёт
// второй профиль и не возвращает ошибку.
func (r *UserRepository) SetRole(ctx context.Context, userID int64, role string) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		roleQuery := `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`
		result, err := tx.ExecContext(ctx, roleQuery, userID, role)
		if err != nil {
			return fmt.Errorf("user repository: set role %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("user repository: set role rows affected %w", err)
		}
		if affected == 0 {
			return ErrUserNotFound
		}

		var profileQuery string
		switch role {
		case models.RoleEnterprise:
			profileQuery = `INSERT INTO enterprises (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
		case models.RoleIndividual:
			profileQuery = `INSERT INTO individuals (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
		default:
			return nil
		}

		if _, err := tx.ExecContext(ctx, profileQuery, userID); err != nil {
			return fmt.Errorf("user repository: create profile %w", err)
		}

		return nil
	})
}
