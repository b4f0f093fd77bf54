package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskmarket-backend/internal/dto"
	"github.com/ignatzorin/taskmarket-backend/internal/http/middleware"
	repocommon "github.com/ignatzorin/taskmarket-backend/internal/repository/common"
)

var (
	// ErrNoUserInContext возвращается, когда запрос не прошёл AuthMiddleware.
	ErrNoUserInContext = errors.New("пользователь не найден в контексте")

	// ErrInvalidIDParam возвращается при нечисловом идентификаторе в пути.
	ErrInvalidIDParam = errors.New("неверный формат идентификатора")
)

// CurrentUserID достаёт идентификатор пользователя из gin.Context.
func CurrentUserID(c *gin.Context) (int64, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, ErrNoUserInContext
	}

	userID, ok := raw.(int64)
	if !ok || userID <= 0 {
		return 0, ErrNoUserInContext
	}

	return userID, nil
}

// CurrentUserRole достаёт роль пользователя из gin.Context.
func CurrentUserRole(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return "", ErrNoUserInContext
	}

	role, ok := raw.(string)
	if !ok {
		return "", ErrNoUserInContext
	}

	return role, nil
}

// ParseIDParam читает числовой идентификатор из параметра пути.
func ParseIDParam(c *gin.Context, paramName string) (int64, error) {
	parsed, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || parsed <= 0 {
		return 0, ErrInvalidIDParam
	}
	return parsed, nil
}

// PageFromQuery собирает параметры пагинации из ?page и ?pageSize.
func PageFromQuery(c *gin.Context) repocommon.Page {
	return repocommon.Page{
		Number: ParseIntQuery(c, "page", 1),
		Size:   ParseIntQuery(c, "pageSize", repocommon.DefaultPageSize),
	}
}

// ParseIntQuery безопасно читает целочисленный query-параметр.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// RespondData отправляет успешный ответ в общем конверте.
func RespondData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, dto.DataResponse{Success: true, Data: data})
}

// RespondMessage отправляет успешный ответ без данных.
func RespondMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.DataResponse{Success: true, Message: message})
}

// RespondPage отправляет страницу списка.
func RespondPage(c *gin.Context, items interface{}, hasMore bool) {
	RespondData(c, http.StatusOK, dto.PageResponse{Items: items, HasMore: hasMore})
}

// RespondError отправляет ошибку в общем конверте.
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Success: false, Message: message})
}

// RespondUnauthorized отправляет 401.
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// RespondBadRequest отправляет 400.
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	RespondError(c, http.StatusBadRequest, message)
}

// Fail передаёт ошибку сервиса в централизованный обработчик.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
