package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskmarket-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextOpenIDKey = "openID"
	ContextRoleKey   = "role"
)

// AuthMiddleware проверяет JWT токен и кладёт данные пользователя в контекст.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "требуется авторизация"})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(auth, "Bearer "))
		if err != nil || claims.UserID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "токен невалиден"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextOpenIDKey, claims.OpenID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole пускает дальше только пользователей с указанной ролью.
// Роль берётся из токена, профиль сервисы перепроверяют по базе сами.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if current := c.GetString(ContextRoleKey); current != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "недостаточно прав"})
			return
		}
		c.Next()
	}
}
