package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignatzorin/taskmarket-backend/internal/logger"
	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/validation"
	"github.com/ignatzorin/taskmarket-backend/internal/wechat"
)

// ErrInvalidRole возвращается при попытке выбрать недопустимую роль.
var ErrInvalidRole = errors.New("invalid role")

// AuthUserRepository описывает зависимости AuthService от слоя хранилища.
type AuthUserRepository interface {
	UpsertByOpenID(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetRole(ctx context.Context, userID int64, role string) error
}

// CodeExchanger обменивает одноразовый код авторизации на сессию WeChat.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*wechat.Session, error)
}

// AuthService инкапсулирует вход через WeChat и выбор роли.
type AuthService struct {
	users       AuthUserRepository
	exchanger   CodeExchanger
	tokens      *TokenManager
	ownerOpenID string
}

// LoginInput содержит код авторизации и данные профиля из мини-приложения.
type LoginInput struct {
	Code      string
	Name      *string
	AvatarURL *string
}

// AuthResult возвращает итог входа.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresIn time.Duration
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users AuthUserRepository, exchanger CodeExchanger, tokens *TokenManager, ownerOpenID string) *AuthService {
	return &AuthService{
		users:       users,
		exchanger:   exchanger,
		tokens:      tokens,
		ownerOpenID: ownerOpenID,
	}
}

// Login обменивает код WeChat на openid, создаёт или обновляет пользователя
// и выпускает токен сессии. Код одноразовый, повторный вход требует нового.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	session, err := s.exchanger.ExchangeCode(ctx, in.Code)
	if err != nil {
		return nil, fmt.Errorf("auth service: обмен кода не выполнен: %w", err)
	}

	loginMethod := "wechat"
	user := &models.User{
		OpenID:      session.OpenID,
		Name:        in.Name,
		AvatarURL:   in.AvatarURL,
		LoginMethod: &loginMethod,
	}
	if err := s.users.UpsertByOpenID(ctx, user); err != nil {
		return nil, err
	}

	// Владелец платформы получает админскую роль при первом входе
	if s.ownerOpenID != "" && user.OpenID == s.ownerOpenID && user.Role == "" {
		if err := s.users.SetRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
		user.Role = models.RoleAdmin
	}

	return s.issueToken(user)
}

// DevLogin создаёт сессию по открытому openid без обращения к WeChat.
// Маршрут доступен только в development окружении.
func (s *AuthService) DevLogin(ctx context.Context, openID string) (*AuthResult, error) {
	if openID == "" {
		return nil, validation.Errorf("пустой openid")
	}

	loginMethod := "dev"
	user := &models.User{
		OpenID:      openID,
		LoginMethod: &loginMethod,
	}
	if err := s.users.UpsertByOpenID(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.WithField("open_id", openID).Warn("dev вход без проверки кода")

	return s.issueToken(user)
}

// SetRole сохраняет выбранную роль и лениво создаёт профиль. Повторный
// выбор той же роли безопасен. Возвращает свежий токен с новой ролью.
func (s *AuthService) SetRole(ctx context.Context, userID int64, role string) (*AuthResult, error) {
	if _, ok := models.ValidRoles[role]; !ok {
		return nil, ErrInvalidRole
	}

	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// Me возвращает сохранённого пользователя сессии.
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issueToken(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("auth service: выпуск токена не выполнен: %w", err)
	}

	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresIn: s.tokens.TTL(),
	}, nil
}
