package dto

import (
	"github.com/ignatzorin/taskmarket-backend/internal/models"
)

// DataResponse — общий конверт успешного ответа.
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse — общий конверт ошибки.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthResponse — результат входа или смены роли.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
	User      *models.User `json:"user"`
}

// PageResponse — страница списка с признаком продолжения.
type PageResponse struct {
	Items   interface{} `json:"items"`
	HasMore bool        `json:"hasMore"`
}
