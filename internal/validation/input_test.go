package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateTaskType(t *testing.T) {
	cases := []struct {
		name     string
		taskType string
		subType  string
		wantErr  bool
	}{
		{"отчёт", "report", "industry_research", false},
		{"видео", "video", "product_promo", false},
		{"разметка", "labeling", "image_labeling", false},
		{"неизвестный тип", "translation", "any", true},
		{"пустой подтип", "report", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTaskType(tc.taskType, tc.subType)
			if tc.wantErr && err == nil {
				t.Fatalf("ожидали ошибку для типа %q/%q", tc.taskType, tc.subType)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("неожиданная ошибка: %v", err)
			}
			if tc.wantErr {
				var verr Error
				if !errors.As(err, &verr) {
					t.Fatalf("ожидали ошибку валидации, получили %T", err)
				}
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount("бюджет", decimal.RequireFromString("100.50")); err != nil {
		t.Fatalf("корректная сумма отклонена: %v", err)
	}
	if err := ValidateAmount("бюджет", decimal.Zero); err == nil {
		t.Fatal("нулевая сумма должна быть отклонена")
	}
	if err := ValidateAmount("бюджет", decimal.RequireFromString("-5")); err == nil {
		t.Fatal("отрицательная сумма должна быть отклонена")
	}
	if err := ValidateAmount("бюджет", decimal.RequireFromString("1.999")); err == nil {
		t.Fatal("сумма с тремя знаками после запятой должна быть отклонена")
	}
	if err := ValidateAmount("бюджет", decimal.RequireFromString("100000000")); err == nil {
		t.Fatal("сумма сверх лимита должна быть отклонена")
	}
}

func TestValidateLength(t *testing.T) {
	if err := ValidateLength("заголовок", "Разметка фото", MinTitleLength, MaxTitleLength); err != nil {
		t.Fatalf("корректный заголовок отклонён: %v", err)
	}
	if err := ValidateLength("заголовок", "ок", MinTitleLength, MaxTitleLength); err == nil {
		t.Fatal("короткий заголовок должен быть отклонён")
	}
	if err := ValidateLength("заголовок", strings.Repeat("ы", MaxTitleLength+1), MinTitleLength, MaxTitleLength); err == nil {
		t.Fatal("длинный заголовок должен быть отклонён")
	}
}

func TestValidateDeadline(t *testing.T) {
	if err := ValidateDeadline(time.Now().Add(48 * time.Hour)); err != nil {
		t.Fatalf("будущий дедлайн отклонён: %v", err)
	}
	if err := ValidateDeadline(time.Now().Add(-time.Hour)); err == nil {
		t.Fatal("прошедший дедлайн должен быть отклонён")
	}
}

func TestValidateRating(t *testing.T) {
	for rating := MinRating; rating <= MaxRating; rating++ {
		if err := ValidateRating(rating); err != nil {
			t.Fatalf("оценка %d отклонена: %v", rating, err)
		}
	}
	if err := ValidateRating(0); err == nil {
		t.Fatal("оценка 0 должна быть отклонена")
	}
	if err := ValidateRating(6); err == nil {
		t.Fatal("оценка 6 должна быть отклонена")
	}
}
