package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
)

// ErrInvalidToken возвращается для просроченных и повреждённых токенов.
var ErrInvalidToken = errors.New("invalid token")

// Claims — данные сессии, зашитые в токен.
type Claims struct {
	UserID int64
	OpenID string
	Role   string
}

// TokenManager отвечает за выпуск и проверку JWT.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL возвращает срок жизни выпускаемых токенов.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Generate выпускает токен сессии. Пока роль не выбрана, в клейм role
// попадает сентинел none.
func (m *TokenManager) Generate(user *models.User) (string, error) {
	role := user.Role
	if role == "" {
		role = models.RoleNone
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     strconv.FormatInt(user.ID, 10),
		"open_id": user.OpenID,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse проверяет подпись и срок токена и возвращает клеймы сессии.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	openID, _ := mapClaims["open_id"].(string)
	role, _ := mapClaims["role"].(string)

	return &Claims{
		UserID: userID,
		OpenID: openID,
		Role:   role,
	}, nil
}
