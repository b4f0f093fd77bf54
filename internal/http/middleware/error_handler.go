package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/taskmarket-backend/internal/logger"
	"github.com/ignatzorin/taskmarket-backend/internal/repository"
	"github.com/ignatzorin/taskmarket-backend/internal/service"
	"github.com/ignatzorin/taskmarket-backend/internal/validation"
)

// knownError сопоставляет сентинельную ошибку с HTTP статусом и сообщением клиенту.
type knownError struct {
	target  error
	status  int
	message string
}

var knownErrors = []knownError{
	{repository.ErrUserNotFound, http.StatusNotFound, "пользователь не найден"},
	{repository.ErrTaskNotFound, http.StatusNotFound, "задача не найдена"},
	{repository.ErrOrderNotFound, http.StatusNotFound, "заказ не найден"},
	{repository.ErrEnterpriseNotFound, http.StatusNotFound, "профиль предприятия не найден"},
	{repository.ErrIndividualNotFound, http.StatusNotFound, "профиль исполнителя не найден"},
	{repository.ErrTaskAlreadyTaken, http.StatusConflict, "задача уже взята другим исполнителем"},
	{repository.ErrInvalidOrderStatus, http.StatusConflict, "недопустимый статус заказа для операции"},
	{repository.ErrTaskNotCancellable, http.StatusConflict, "задачу нельзя отменить в текущем статусе"},
	{repository.ErrReviewAlreadyExists, http.StatusConflict, "отзыв уже оставлен"},
	{repository.ErrInsufficientBalance, http.StatusBadRequest, "недостаточно средств"},
	{service.ErrForbidden, http.StatusForbidden, "нет доступа к этому ресурсу"},
	{service.ErrInvalidRole, http.StatusBadRequest, "недопустимая роль"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "токен невалиден"},
}

// ErrorHandler обрабатывает ошибки централизованно: известные сентинели
// превращает в понятные статусы, внутренние ошибки маскирует.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil {
			logger.WithRequestID(c.GetString(ContextRequestIDKey)).WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("ошибка обработки запроса")
		}

		var validationErr validation.Error
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationErr.Error()})
			return
		}

		for _, known := range knownErrors {
			if errors.Is(err, known.target) {
				c.JSON(known.status, gin.H{"success": false, "message": known.message})
				return
			}
		}

		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "внутренняя ошибка сервера"})
	}
}
