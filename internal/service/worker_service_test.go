package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/repository"
	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
	"github.com/ignatzorin/taskmarket-backend/internal/validation"
)

func TestAcceptCreatesSingleOrder(t *testing.T) {
	store := newMockStore()
	store.addEnterprise(enterpriseUserID, "1000.00")
	store.addIndividual(workerUserID)
	store.addIndividual(3)
	notifier := &mockNotifier{}
	enterprises := newEnterpriseService(store, notifier)
	workers := newWorkerService(store, notifier)

	task, err := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	if err != nil {
		t.Fatalf("неожиданная ошибка публикации: %v", err)
	}

	order, err := workers.Accept(context.Background(), workerUserID, task.ID)
	if err != nil {
		t.Fatalf("неожиданная ошибка принятия: %v", err)
	}
	if order.Status != models.OrderStatusInProgress {
		t.Errorf("ожидался статус in_progress, получен %q", order.Status)
	}

	// Второй исполнитель получает конфликт, второй заказ не появляется
	if _, err := workers.Accept(context.Background(), 3, task.ID); !errors.Is(err, repository.ErrTaskAlreadyTaken) {
		t.Fatalf("ожидалась ошибка ErrTaskAlreadyTaken, получено %v", err)
	}
	if len(store.orders) != 1 {
		t.Errorf("ожидался ровно один заказ, получено %d", len(store.orders))
	}

	if len(notifier.events) != 1 || notifier.events[0].event != EventTaskAccepted {
		t.Error("ожидалось событие task_accepted компании")
	}
	if notifier.events[0].userID != enterpriseUserID {
		t.Errorf("событие должно уйти владельцу задачи, ушло пользователю %d", notifier.events[0].userID)
	}
}

func TestAcceptAbsentTask(t *testing.T) {
	store := newMockStore()
	store.addIndividual(workerUserID)
	workers := newWorkerService(store, nil)

	if _, err := workers.Accept(context.Background(), workerUserID, 777); !errors.Is(err, repository.ErrTaskNotFound) {
		t.Fatalf("ожидалась ошибка ErrTaskNotFound, получено %v", err)
	}
}

func TestSubmitMirrorsTaskStatus(t *testing.T) {
	store := newMockStore()
	store.addEnterprise(enterpriseUserID, "1000.00")
	store.addIndividual(workerUserID)
	notifier := &mockNotifier{}
	enterprises := newEnterpriseService(store, notifier)
	workers := newWorkerService(store, notifier)

	task, err := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	if err != nil {
		t.Fatalf("неожиданная ошибка публикации: %v", err)
	}
	if _, err := workers.Accept(context.Background(), workerUserID, task.ID); err != nil {
		t.Fatalf("неожиданная ошибка принятия: %v", err)
	}

	order, err := workers.Submit(context.Background(), workerUserID, task.ID, "Готовый отчёт", []string{"report.pdf"}, nil)
	if err != nil {
		t.Fatalf("неожиданная ошибка отправки: %v", err)
	}

	if order.Status != models.OrderStatusSubmitted {
		t.Errorf("ожидался статус submitted, получен %q", order.Status)
	}
	if order.SubmitTime == nil {
		t.Error("ожидалась отметка времени отправки")
	}

	stored, _ := store.GetByID(context.Background(), task.ID)
	if stored.Status != models.TaskStatusSubmitted {
		t.Errorf("статус задачи должен зеркалить заказ, получен %q", stored.Status)
	}

	// Повторная отправка без возврата на доработку отклоняется
	if _, err := workers.Submit(context.Background(), workerUserID, task.ID, "Ещё раз", nil, nil); !errors.Is(err, repository.ErrInvalidOrderStatus) {
		t.Fatalf("ожидалась ошибка ErrInvalidOrderStatus, получено %v", err)
	}

	if len(notifier.events) == 0 || notifier.events[len(notifier.events)-1].event != EventTaskSubmitted {
		t.Error("ожидалось событие task_submitted компании")
	}
}

func TestSubmitWithoutOrder(t *testing.T) {
	store := newMockStore()
	store.addEnterprise(enterpriseUserID, "1000.00")
	store.addIndividual(workerUserID)
	enterprises := newEnterpriseService(store, nil)
	workers := newWorkerService(store, nil)

	task, err := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	if err != nil {
		t.Fatalf("неожиданная ошибка публикации: %v", err)
	}

	if _, err := workers.Submit(context.Background(), workerUserID, task.ID, "Без заказа", nil, nil); !errors.Is(err, repository.ErrOrderNotFound) {
		t.Fatalf("ожидалась ошибка ErrOrderNotFound, получено %v", err)
	}
}

func TestMarketFiltersAndPagination(t *testing.T) {
	store := newMockStore()
	store.addEnterprise(enterpriseUserID, "100000.00")
	store.addIndividual(workerUserID)
	enterprises := newEnterpriseService(store, nil)
	workers := newWorkerService(store, nil)

	for i := 0; i < 11; i++ {
		if _, err := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput()); err != nil {
			t.Fatalf("неожиданная ошибка публикации: %v", err)
		}
	}

	rows, hasMore, err := workers.Market(context.Background(), "", "", common.Page{Number: 1, Size: 10})
	if err != nil {
		t.Fatalf("неожиданная ошибка биржи: %v", err)
	}
	if len(rows) != 10 || !hasMore {
		t.Errorf("ожидалось 10 строк и признак следующей страницы, получено %d, %v", len(rows), hasMore)
	}

	// Принятая задача уходит с биржи
	if _, err := workers.Accept(context.Background(), workerUserID, rows[0].ID); err != nil {
		t.Fatalf("неожиданная ошибка принятия: %v", err)
	}
	rows, hasMore, err = workers.Market(context.Background(), "", "", common.Page{Number: 1, Size: 10})
	if err != nil {
		t.Fatalf("неожиданная ошибка биржи: %v", err)
	}
	if len(rows) != 10 || hasMore {
		t.Errorf("после принятия ожидалось ровно 10 строк без следующей страницы, получено %d, %v", len(rows), hasMore)
	}

	// Фильтр по типу без совпадений
	rows, _, err = workers.Market(context.Background(), models.TaskTypeVideo, "", common.Page{})
	if err != nil {
		t.Fatalf("неожиданная ошибка биржи: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("ожидалась пустая выборка по типу video, получено %d", len(rows))
	}

	// Недопустимый тип отклоняется
	if _, _, err := workers.Market(context.Background(), "design", "", common.Page{}); err == nil {
		t.Fatal("ожидалась ошибка валидации типа")
	}
}

func TestWorkerProfileAggregatesEarnings(t *testing.T) {
	store := newMockStore()
	store.addEnterprise(enterpriseUserID, "1000.00")
	store.addIndividual(workerUserID)
	enterprises := newEnterpriseService(store, nil)
	workers := newWorkerService(store, nil)

	task, err := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	if err != nil {
		t.Fatalf("неожиданная ошибка публикации: %v", err)
	}
	submitTask(t, store, workers, task.ID)
	if _, err := enterprises.Approve(context.Background(), enterpriseUserID, task.ID, nil); err != nil {
		t.Fatalf("неожиданная ошибка приёмки: %v", err)
	}

	profile, err := workers.Profile(context.Background(), workerUserID)
	if err != nil {
		t.Fatalf("неожиданная ошибка профиля: %v", err)
	}

	if profile.Stats.CompletedTasks != 1 {
		t.Errorf("ожидалась 1 завершённая задача, получено %d", profile.Stats.CompletedTasks)
	}
	if !profile.Stats.Earnings.Equal(decimal.RequireFromString("500.00")) {
		t.Errorf("ожидался заработок 500.00, получен %s", profile.Stats.Earnings)
	}
	if !profile.Balance.Equal(decimal.RequireFromString("500.00")) {
		t.Errorf("ожидался остаток 500.00, получен %s", profile.Balance)
	}
}

func TestUpdateProfileKeepsOmittedFields(t *testing.T) {
	store := newMockStore()
	store.addIndividual(workerUserID)
	workers := newWorkerService(store, nil)

	name := "Иван"
	if _, err := workers.UpdateProfile(context.Background(), workerUserID, UpdateProfileInput{
		RealName: &name,
		Skills:   []string{"монтаж", "копирайтинг"},
	}); err != nil {
		t.Fatalf("неожиданная ошибка обновления: %v", err)
	}

	// Обновление без навыков не затирает сохранённые
	experience := "3 года"
	updated, err := workers.UpdateProfile(context.Background(), workerUserID, UpdateProfileInput{Experience: &experience})
	if err != nil {
		t.Fatalf("неожиданная ошибка обновления: %v", err)
	}

	if len(updated.Skills) != 2 {
		t.Errorf("навыки должны сохраниться, получено %v", updated.Skills)
	}
	if updated.RealName == nil || *updated.RealName != "Иван" {
		t.Errorf("имя должно сохраниться, получено %v", updated.RealName)
	}

	// Слишком длинный список навыков отклоняется
	tooMany := make([]string, validation.MaxSkillsCount+1)
	for i := range tooMany {
		tooMany[i] = "навык"
	}
	if _, err := workers.UpdateProfile(context.Background(), workerUserID, UpdateProfileInput{Skills: tooMany}); err == nil {
		t.Fatal("ожидалась ошибка валидации навыков")
	}
}

func TestWithdraw(t *testing.T) {
	store := newMockStore()
	store.addEnterprise(enterpriseUserID, "1000.00")
	store.addIndividual(workerUserID)
	enterprises := newEnterpriseService(store, nil)
	workers := newWorkerService(store, nil)

	task, err := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	if err != nil {
		t.Fatalf("неожиданная ошибка публикации: %v", err)
	}
	submitTask(t, store, workers, task.ID)
	if _, err := enterprises.Approve(context.Background(), enterpriseUserID, task.ID, nil); err != nil {
		t.Fatalf("неожиданная ошибка приёмки: %v", err)
	}

	txn, err := workers.Withdraw(context.Background(), workerUserID, decimal.RequireFromString("200.00"))
	if err != nil {
		t.Fatalf("неожиданная ошибка вывода: %v", err)
	}
	if !txn.Balance.Equal(decimal.RequireFromString("300.00")) {
		t.Errorf("ожидался остаток 300.00, получен %s", txn.Balance)
	}

	// Вывод сверх остатка отклоняется
	if _, err := workers.Withdraw(context.Background(), workerUserID, decimal.RequireFromString("1000.00")); !errors.Is(err, repository.ErrInsufficientBalance) {
		t.Fatalf("ожидалась ошибка ErrInsufficientBalance, получено %v", err)
	}
}

// Каждая запись журнала исполнителя должна продолжать остаток предыдущей:
// выплата после вывода считается от остатка после вывода, а не от старой базы.
func TestWorkerLedgerBalanceChains(t *testing.T) {
	store := newMockStore()
	store.addEnterprise(enterpriseUserID, "10000.00")
	store.addIndividual(workerUserID)
	enterprises := newEnterpriseService(store, nil)
	workers := newWorkerService(store, nil)

	first, err := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	if err != nil {
		t.Fatalf("неожиданная ошибка публикации: %v", err)
	}
	submitTask(t, store, workers, first.ID)
	if _, err := enterprises.Approve(context.Background(), enterpriseUserID, first.ID, nil); err != nil {
		t.Fatalf("неожиданная ошибка приёмки: %v", err)
	}

	if _, err := workers.Withdraw(context.Background(), workerUserID, decimal.RequireFromString("200.00")); err != nil {
		t.Fatalf("неожиданная ошибка вывода: %v", err)
	}

	second, err := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	if err != nil {
		t.Fatalf("неожиданная ошибка публикации: %v", err)
	}
	submitTask(t, store, workers, second.ID)
	if _, err := enterprises.Approve(context.Background(), enterpriseUserID, second.ID, nil); err != nil {
		t.Fatalf("неожиданная ошибка приёмки: %v", err)
	}

	// 500 - 200 + 500 = 800
	if got := store.lastBalance(workerUserID); !got.Equal(decimal.RequireFromString("800.00")) {
		t.Errorf("ожидался остаток 800.00 после второй выплаты, получен %s", got)
	}

	prev := decimal.Zero
	for _, txn := range store.transactions {
		if txn.UserID != workerUserID {
			continue
		}
		if want := prev.Add(txn.Amount); !txn.Balance.Equal(want) {
			t.Errorf("запись %s нарушает цепочку остатков: ожидалось %s, получено %s", txn.Type, want, txn.Balance)
		}
		prev = txn.Balance
	}
}

func TestWorkerTaskDetailScope(t *testing.T) {
	store := newMockStore()
	store.addEnterprise(enterpriseUserID, "1000.00")
	store.addIndividual(workerUserID)
	store.addIndividual(3)
	enterprises := newEnterpriseService(store, nil)
	workers := newWorkerService(store, nil)

	task, err := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	if err != nil {
		t.Fatalf("неожиданная ошибка публикации: %v", err)
	}

	// Открытая задача видна любому исполнителю
	if _, err := workers.TaskDetail(context.Background(), 3, task.ID); err != nil {
		t.Fatalf("открытая задача должна быть видна: %v", err)
	}

	if _, err := workers.Accept(context.Background(), workerUserID, task.ID); err != nil {
		t.Fatalf("неожиданная ошибка принятия: %v", err)
	}

	// Занятая задача видна только принявшему
	if _, err := workers.TaskDetail(context.Background(), workerUserID, task.ID); err != nil {
		t.Fatalf("исполнитель заказа должен видеть карточку: %v", err)
	}
	if _, err := workers.TaskDetail(context.Background(), 3, task.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("ожидалась ошибка ErrForbidden для постороннего, получено %v", err)
	}
}

func TestMyTasksFilterByOrderStatus(t *testing.T) {
	store := newMockStore()
	store.addEnterprise(enterpriseUserID, "10000.00")
	store.addIndividual(workerUserID)
	enterprises := newEnterpriseService(store, nil)
	workers := newWorkerService(store, nil)

	first, _ := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	second, _ := enterprises.CreateTask(context.Background(), enterpriseUserID, validTaskInput())
	if _, err := workers.Accept(context.Background(), workerUserID, first.ID); err != nil {
		t.Fatalf("неожиданная ошибка принятия: %v", err)
	}
	if _, err := workers.Accept(context.Background(), workerUserID, second.ID); err != nil {
		t.Fatalf("неожиданная ошибка принятия: %v", err)
	}
	if _, err := workers.Submit(context.Background(), workerUserID, first.ID, "Результат", nil, nil); err != nil {
		t.Fatalf("неожиданная ошибка отправки: %v", err)
	}

	submitted, _, err := workers.MyTasks(context.Background(), workerUserID, models.OrderStatusSubmitted, common.Page{})
	if err != nil {
		t.Fatalf("неожиданная ошибка выборки: %v", err)
	}
	if len(submitted) != 1 || submitted[0].ID != first.ID {
		t.Errorf("ожидалась одна отправленная задача %d, получено %v", first.ID, submitted)
	}

	all, _, err := workers.MyTasks(context.Background(), workerUserID, "", common.Page{})
	if err != nil {
		t.Fatalf("неожиданная ошибка выборки: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ожидались обе задачи, получено %d", len(all))
	}

	if _, _, err := workers.MyTasks(context.Background(), workerUserID, "cancelled", common.Page{}); err == nil {
		t.Fatal("ожидалась ошибка валидации статуса заказа")
	}
}
