package validation

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
)

// Error — ошибка валидации входных данных. API слой отличает её от
// внутренних ошибок и отдаёт клиенту как 400 с текстом.
type Error string

func (e Error) Error() string {
	return string(e)
}

// Errorf создаёт ошибку валидации с форматированием.
func Errorf(format string, args ...interface{}) error {
	return Error(fmt.Sprintf(format, args...))
}

// Константы валидации
const (
	MinTitleLength        = 3
	MaxTitleLength        = 255
	MinDescriptionLength  = 10
	MaxDescriptionLength  = 5000
	MaxRequirementsLength = 5000
	MaxCommentLength      = 2000
	MaxSkillLength        = 50
	MaxSkillsCount        = 50
	MaxAttachmentsCount   = 20
	MinRating             = 1
	MaxRating             = 5
)

// MaxBudget — потолок бюджета задачи, совпадает с вместимостью колонки.
var MaxBudget = decimal.RequireFromString("99999999.99")

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateAmount проверяет денежную сумму.
func ValidateAmount(fieldName string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return Errorf("%s должна быть положительной", fieldName)
	}
	if amount.GreaterThan(MaxBudget) {
		return Errorf("%s превышает допустимый максимум", fieldName)
	}
	if amount.Exponent() < -2 {
		return Errorf("%s указывается с точностью до двух знаков", fieldName)
	}
	return nil
}

// ValidateTaskType проверяет тип и подтип задачи.
func ValidateTaskType(taskType, subType string) error {
	if _, ok := models.ValidTaskTypes[taskType]; !ok {
		return Errorf("недопустимый тип задачи: %s", taskType)
	}
	if !models.IsValidSubType(taskType, subType) {
		return Errorf("недопустимый подтип %s для типа %s", subType, taskType)
	}
	return nil
}

// ValidateDeadline проверяет, что срок задачи в будущем.
func ValidateDeadline(deadline time.Time) error {
	if deadline.IsZero() {
		return Errorf("срок выполнения обязателен")
	}
	if !deadline.After(time.Now()) {
		return Errorf("срок выполнения должен быть в будущем")
	}
	return nil
}

// ValidateRating проверяет оценку отзыва.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return Errorf("оценка должна быть от %d до %d", MinRating, MaxRating)
	}
	return nil
}

// ValidateSkills проверяет список навыков исполнителя.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return Errorf("навыков не может быть больше %d", MaxSkillsCount)
	}
	for _, skill := range skills {
		if err := ValidateLength("навык", skill, 1, MaxSkillLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAttachments проверяет список вложений.
func ValidateAttachments(attachments []string) error {
	if len(attachments) > MaxAttachmentsCount {
		return Errorf("вложений не может быть больше %d", MaxAttachmentsCount)
	}
	return nil
}
