package service

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
)

var thousand = decimal.NewFromInt(1000)

// Settlement вычисляет сумму выплаты по принятой работе.
// Для обычных задач выплачивается весь бюджет. Для видео задач сумма
// складывается из базовой ставки и ставки за тысячу просмотров, но не
// превышает замороженный бюджет.
func Settlement(task *models.Task, viewCount *int) decimal.Decimal {
	if !task.IsVideoTask {
		return task.Budget
	}

	amount := decimal.Zero
	if task.BasePrice != nil {
		amount = amount.Add(*task.BasePrice)
	}
	if task.PricePerThousandViews != nil && viewCount != nil && *viewCount > 0 {
		views := decimal.NewFromInt(int64(*viewCount))
		amount = amount.Add(task.PricePerThousandViews.Mul(views).Div(thousand))
	}

	if amount.GreaterThan(task.Budget) {
		return task.Budget
	}

	return amount.Round(2)
}
