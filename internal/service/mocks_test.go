package service

import (
	"context"
	"sort"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/repository"
	"github.com/ignatzorin/taskmarket-backend/internal/repository/common"
)

// mockStore — общее хранилище в памяти, повторяющее контракты репозиториев
// задач, заказов, профилей и журнала средств.
type mockStore struct {
	tasks        map[int64]*models.Task
	orders       map[int64]*models.Order
	ordersByTask map[int64]*models.Order
	enterprises  map[int64]*models.Enterprise // по user id
	individuals  map[int64]*models.Individual // по user id
	transactions []models.Transaction

	nextTaskID  int64
	nextOrderID int64
	nextTxnID   int64
}

func newMockStore() *mockStore {
	return &mockStore{
		tasks:        make(map[int64]*models.Task),
		orders:       make(map[int64]*models.Order),
		ordersByTask: make(map[int64]*models.Order),
		enterprises:  make(map[int64]*models.Enterprise),
		individuals:  make(map[int64]*models.Individual),
		nextTaskID:   1,
		nextOrderID:  1,
		nextTxnID:    1,
	}
}

func (m *mockStore) addEnterprise(userID int64, balance string) *models.Enterprise {
	profile := &models.Enterprise{
		ID:          userID * 100,
		UserID:      userID,
		Balance:     decimal.RequireFromString(balance),
		CreditScore: decimal.RequireFromString("5.0"),
	}
	m.enterprises[userID] = profile
	return profile
}

func (m *mockStore) addIndividual(userID int64) *models.Individual {
	profile := &models.Individual{
		ID:          userID * 100,
		UserID:      userID,
		CreditScore: decimal.RequireFromString("5.0"),
		SuccessRate: decimal.RequireFromString("100.00"),
	}
	m.individuals[userID] = profile
	return profile
}

func (m *mockStore) enterpriseByID(id int64) *models.Enterprise {
	for _, profile := range m.enterprises {
		if profile.ID == id {
			return profile
		}
	}
	return nil
}

func (m *mockStore) individualByID(id int64) *models.Individual {
	for _, profile := range m.individuals {
		if profile.ID == id {
			return profile
		}
	}
	return nil
}

func (m *mockStore) appendTxn(userID int64, txnType string, amount, balance decimal.Decimal, relatedID *int64) models.Transaction {
	txn := models.Transaction{
		ID:        m.nextTxnID,
		UserID:    userID,
		Type:      txnType,
		Amount:    amount,
		Balance:   balance,
		RelatedID: relatedID,
		CreatedAt: time.Now(),
	}
	m.nextTxnID++
	m.transactions = append(m.transactions, txn)
	return txn
}

func (m *mockStore) lastBalance(userID int64) decimal.Decimal {
	for i := len(m.transactions) - 1; i >= 0; i-- {
		if m.transactions[i].UserID == userID {
			return m.transactions[i].Balance
		}
	}
	return decimal.Zero
}

// --- репозиторий задач ---

func (m *mockStore) Create(ctx context.Context, task *models.Task, enterpriseUserID int64) error {
	profile, ok := m.enterprises[enterpriseUserID]
	if !ok {
		return repository.ErrEnterpriseNotFound
	}
	if profile.Balance.LessThan(task.Budget) {
		return repository.ErrInsufficientBalance
	}

	task.ID = m.nextTaskID
	m.nextTaskID++
	task.EnterpriseID = profile.ID
	task.Status = models.TaskStatusApproved
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	profile.Balance = profile.Balance.Sub(task.Budget)
	profile.TotalTasks++
	m.appendTxn(enterpriseUserID, models.TransactionTypeFreeze, task.Budget.Neg(), profile.Balance, &task.ID)

	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

func (m *mockStore) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	if task, ok := m.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, repository.ErrTaskNotFound
}

func (m *mockStore) GetDetail(ctx context.Context, id int64) (*models.TaskDetail, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}

	detail := &models.TaskDetail{Task: *task}
	if profile := m.enterpriseByID(task.EnterpriseID); profile != nil {
		detail.EnterpriseName = profile.CompanyName
	}
	if order, ok := m.ordersByTask[id]; ok {
		detail.SubmitContent = order.SubmitContent
		detail.SubmitAttachments = order.SubmitAttachments
		detail.ReviewComment = order.ReviewComment
	}
	return detail, nil
}

func (m *mockStore) GetOwnerUserID(ctx context.Context, taskID int64) (int64, error) {
	task, ok := m.tasks[taskID]
	if !ok {
		return 0, repository.ErrTaskNotFound
	}
	if profile := m.enterpriseByID(task.EnterpriseID); profile != nil {
		return profile.UserID, nil
	}
	return 0, repository.ErrEnterpriseNotFound
}

func (m *mockStore) sortedTasks() []*models.Task {
	tasks := make([]*models.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID > tasks[j].ID })
	return tasks
}

func (m *mockStore) ListByEnterprise(ctx context.Context, enterpriseID int64, status string, page common.Page) ([]models.EnterpriseTaskRow, bool, error) {
	page = page.Normalize()

	rows := []models.EnterpriseTaskRow{}
	for _, task := range m.sortedTasks() {
		if task.EnterpriseID != enterpriseID {
			continue
		}
		if status != "" && task.Status != status {
			continue
		}
		rows = append(rows, models.EnterpriseTaskRow{
			ID: task.ID, Title: task.Title, Type: task.Type,
			Status: task.Status, Budget: task.Budget, Deadline: task.Deadline,
		})
	}

	start := page.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + page.Limit()
	if end > len(rows) {
		end = len(rows)
	}
	trimmed, hasMore := common.Trim(rows[start:end], page)
	return trimmed, hasMore, nil
}

func (m *mockStore) ListRecent(ctx context.Context, enterpriseID int64, limit int) ([]models.EnterpriseTaskRow, error) {
	rows, _, err := m.ListByEnterprise(ctx, enterpriseID, "", common.Page{Number: 1, Size: limit})
	return rows, err
}

func (m *mockStore) StatsByEnterprise(ctx context.Context, enterpriseID int64) (*models.EnterpriseStats, error) {
	stats := &models.EnterpriseStats{}
	for _, task := range m.tasks {
		if task.EnterpriseID != enterpriseID {
			continue
		}
		stats.TotalTasks++
		switch task.Status {
		case models.TaskStatusSubmitted:
			stats.PendingReview++
		case models.TaskStatusInProgress:
			stats.InProgress++
		case models.TaskStatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

func (m *mockStore) Cancel(ctx context.Context, taskID, enterpriseUserID int64) error {
	profile, ok := m.enterprises[enterpriseUserID]
	if !ok {
		return repository.ErrEnterpriseNotFound
	}
	task, ok := m.tasks[taskID]
	if !ok || task.EnterpriseID != profile.ID {
		return repository.ErrTaskNotFound
	}
	if task.Status != models.TaskStatusPending && task.Status != models.TaskStatusApproved {
		return repository.ErrTaskNotCancellable
	}

	task.Status = models.TaskStatusCancelled
	profile.Balance = profile.Balance.Add(task.Budget)
	m.appendTxn(enterpriseUserID, models.TransactionTypeUnfreeze, task.Budget, profile.Balance, &taskID)
	return nil
}

func (m *mockStore) SearchMarket(ctx context.Context, taskType, keyword string, page common.Page) ([]models.MarketTaskRow, bool, error) {
	page = page.Normalize()

	rows := []models.MarketTaskRow{}
	for _, task := range m.sortedTasks() {
		if task.Status != models.TaskStatusApproved {
			continue
		}
		if taskType != "" && task.Type != taskType {
			continue
		}
		if keyword != "" && !containsFold(task.Title, keyword) && !containsFold(task.Description, keyword) {
			continue
		}
		row := models.MarketTaskRow{
			ID: task.ID, Title: task.Title, Type: task.Type, SubType: task.SubType,
			Description: task.Description, Budget: task.Budget, Deadline: task.Deadline, Status: task.Status,
		}
		if profile := m.enterpriseByID(task.EnterpriseID); profile != nil {
			row.EnterpriseName = profile.CompanyName
		}
		rows = append(rows, row)
	}

	start := page.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + page.Limit()
	if end > len(rows) {
		end = len(rows)
	}
	trimmed, hasMore := common.Trim(rows[start:end], page)
	return trimmed, hasMore, nil
}

// --- репозиторий заказов ---

func (m *mockStore) Accept(ctx context.Context, taskID, individualUserID int64) (*models.Order, error) {
	profile, ok := m.individuals[individualUserID]
	if !ok {
		return nil, repository.ErrIndividualNotFound
	}
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	if task.Status != models.TaskStatusApproved {
		return nil, repository.ErrTaskAlreadyTaken
	}

	task.Status = models.TaskStatusInProgress
	order := &models.Order{
		ID:           m.nextOrderID,
		TaskID:       taskID,
		IndividualID: profile.ID,
		Status:       models.OrderStatusInProgress,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.nextOrderID++
	m.orders[order.ID] = order
	m.ordersByTask[taskID] = order

	copied := *order
	return &copied, nil
}

func (m *mockStore) Submit(ctx context.Context, taskID, individualUserID int64, content string, attachments []string, viewCount *int) (*models.Order, error) {
	profile, ok := m.individuals[individualUserID]
	if !ok {
		return nil, repository.ErrIndividualNotFound
	}
	order, ok := m.ordersByTask[taskID]
	if !ok || order.IndividualID != profile.ID {
		return nil, repository.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusInProgress {
		return nil, repository.ErrInvalidOrderStatus
	}

	order.Status = models.OrderStatusSubmitted
	order.SubmitContent = &content
	order.SubmitAttachments = pq.StringArray(attachments)
	now := time.Now()
	order.SubmitTime = &now
	if viewCount != nil {
		order.ViewCount = viewCount
	}
	m.tasks[taskID].Status = models.TaskStatusSubmitted

	copied := *order
	return &copied, nil
}

func (m *mockStore) Approve(ctx context.Context, taskID, enterpriseUserID int64, actualAmount decimal.Decimal) (*models.Order, error) {
	profile, ok := m.enterprises[enterpriseUserID]
	if !ok {
		return nil, repository.ErrEnterpriseNotFound
	}
	task, ok := m.tasks[taskID]
	if !ok || task.EnterpriseID != profile.ID {
		return nil, repository.ErrTaskNotFound
	}
	if task.Status != models.TaskStatusSubmitted {
		return nil, repository.ErrInvalidOrderStatus
	}
	order, ok := m.ordersByTask[taskID]
	if !ok || order.Status != models.OrderStatusSubmitted {
		return nil, repository.ErrOrderNotFound
	}

	order.Status = models.OrderStatusCompleted
	order.ActualAmount = &actualAmount
	now := time.Now()
	order.ReviewTime = &now
	task.Status = models.TaskStatusCompleted

	m.appendTxn(enterpriseUserID, models.TransactionTypePay, actualAmount.Neg(), profile.Balance, &taskID)
	refund := task.Budget.Sub(actualAmount)
	if refund.IsPositive() {
		profile.Balance = profile.Balance.Add(refund)
		m.appendTxn(enterpriseUserID, models.TransactionTypeUnfreeze, refund, profile.Balance, &taskID)
	}

	worker := m.individualByID(order.IndividualID)
	workerBalance := m.lastBalance(worker.UserID).Add(actualAmount)
	m.appendTxn(worker.UserID, models.TransactionTypeIncome, actualAmount, workerBalance, &taskID)
	worker.CompletedTasks++

	copied := *order
	return &copied, nil
}

func (m *mockStore) Reject(ctx context.Context, taskID, enterpriseUserID int64, comment string) (*models.Order, error) {
	profile, ok := m.enterprises[enterpriseUserID]
	if !ok {
		return nil, repository.ErrEnterpriseNotFound
	}
	task, ok := m.tasks[taskID]
	if !ok || task.EnterpriseID != profile.ID {
		return nil, repository.ErrTaskNotFound
	}
	if task.Status != models.TaskStatusSubmitted {
		return nil, repository.ErrInvalidOrderStatus
	}
	order := m.ordersByTask[taskID]

	order.Status = models.OrderStatusInProgress
	order.ReviewComment = &comment
	now := time.Now()
	order.ReviewTime = &now
	task.Status = models.TaskStatusInProgress

	copied := *order
	return &copied, nil
}

func (m *mockStore) GetByTaskID(ctx context.Context, taskID int64) (*models.Order, error) {
	if order, ok := m.ordersByTask[taskID]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	if order, ok := m.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockStore) ListByIndividual(ctx context.Context, individualUserID int64, status string, page common.Page) ([]models.WorkerTaskRow, bool, error) {
	page = page.Normalize()
	profile, ok := m.individuals[individualUserID]
	if !ok {
		return nil, false, repository.ErrIndividualNotFound
	}

	rows := []models.WorkerTaskRow{}
	for _, task := range m.sortedTasks() {
		order, ok := m.ordersByTask[task.ID]
		if !ok || order.IndividualID != profile.ID {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		rows = append(rows, models.WorkerTaskRow{
			ID: task.ID, Title: task.Title, Type: task.Type,
			OrderID: order.ID, OrderStatus: order.Status,
			Budget: task.Budget, Deadline: task.Deadline,
			SubmitContent: order.SubmitContent, ReviewComment: order.ReviewComment,
			ActualAmount: order.ActualAmount,
		})
	}

	start := page.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + page.Limit()
	if end > len(rows) {
		end = len(rows)
	}
	trimmed, hasMore := common.Trim(rows[start:end], page)
	return trimmed, hasMore, nil
}

// --- репозиторий профилей ---

func (m *mockStore) GetEnterpriseByUserID(ctx context.Context, userID int64) (*models.Enterprise, error) {
	if profile, ok := m.enterprises[userID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, repository.ErrEnterpriseNotFound
}

func (m *mockStore) GetIndividualByUserID(ctx context.Context, userID int64) (*models.Individual, error) {
	if profile, ok := m.individuals[userID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, repository.ErrIndividualNotFound
}

func (m *mockStore) UpdateEnterprise(ctx context.Context, userID int64, companyName, license, contact *string) (*models.Enterprise, error) {
	profile, ok := m.enterprises[userID]
	if !ok {
		return nil, repository.ErrEnterpriseNotFound
	}
	if companyName != nil {
		profile.CompanyName = companyName
	}
	if license != nil {
		profile.License = license
	}
	if contact != nil {
		profile.Contact = contact
	}
	copied := *profile
	return &copied, nil
}

func (m *mockStore) UpdateIndividual(ctx context.Context, userID int64, realName *string, skills []string, experience *string, portfolio []string) (*models.Individual, error) {
	profile, ok := m.individuals[userID]
	if !ok {
		return nil, repository.ErrIndividualNotFound
	}
	if realName != nil {
		profile.RealName = realName
	}
	if skills != nil {
		profile.Skills = pq.StringArray(skills)
	}
	if experience != nil {
		profile.Experience = experience
	}
	if portfolio != nil {
		profile.Portfolio = pq.StringArray(portfolio)
	}
	copied := *profile
	return &copied, nil
}

func (m *mockStore) GetUserIDByIndividualID(ctx context.Context, individualID int64) (int64, error) {
	if profile := m.individualByID(individualID); profile != nil {
		return profile.UserID, nil
	}
	return 0, repository.ErrIndividualNotFound
}

// --- журнал средств ---

func (m *mockStore) Recharge(ctx context.Context, enterpriseUserID int64, amount decimal.Decimal) (*models.Transaction, error) {
	profile, ok := m.enterprises[enterpriseUserID]
	if !ok {
		return nil, repository.ErrEnterpriseNotFound
	}
	profile.Balance = profile.Balance.Add(amount)
	txn := m.appendTxn(enterpriseUserID, models.TransactionTypeRecharge, amount, profile.Balance, nil)
	return &txn, nil
}

func (m *mockStore) Withdraw(ctx context.Context, individualUserID int64, amount decimal.Decimal) (*models.Transaction, error) {
	if _, ok := m.individuals[individualUserID]; !ok {
		return nil, repository.ErrIndividualNotFound
	}
	balance := m.lastBalance(individualUserID)
	if balance.LessThan(amount) {
		return nil, repository.ErrInsufficientBalance
	}
	txn := m.appendTxn(individualUserID, models.TransactionTypeWithdraw, amount.Neg(), balance.Sub(amount), nil)
	return &txn, nil
}

func (m *mockStore) ListByUser(ctx context.Context, userID int64, page common.Page) ([]models.Transaction, bool, error) {
	page = page.Normalize()

	rows := []models.Transaction{}
	for i := len(m.transactions) - 1; i >= 0; i-- {
		if m.transactions[i].UserID == userID {
			rows = append(rows, m.transactions[i])
		}
	}

	start := page.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + page.Limit()
	if end > len(rows) {
		end = len(rows)
	}
	trimmed, hasMore := common.Trim(rows[start:end], page)
	return trimmed, hasMore, nil
}

func (m *mockStore) WorkerBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return m.lastBalance(userID), nil
}

func (m *mockStore) TotalIncome(ctx context.Context, userID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, txn := range m.transactions {
		if txn.UserID == userID && txn.Type == models.TransactionTypeIncome {
			total = total.Add(txn.Amount)
		}
	}
	return total, nil
}

// mockNotifier записывает отправленные события.
type mockNotifier struct {
	events []notifiedEvent
}

type notifiedEvent struct {
	userID int64
	event  string
}

func (m *mockNotifier) Notify(userID int64, event string, payload interface{}) {
	m.events = append(m.events, notifiedEvent{userID: userID, event: event})
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
