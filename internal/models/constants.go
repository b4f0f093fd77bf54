package models

// Роли пользователей платформы.
const (
	RoleEnterprise = "enterprise"
	RoleIndividual = "individual"
	RoleAdmin      = "admin"
)

// RoleNone — сентинел для токена, когда роль ещё не выбрана.
const RoleNone = "none"

// TaskType константы типов задач.
const (
	TaskTypeReport   = "report"
	TaskTypeVideo    = "video"
	TaskTypeLabeling = "labeling"
)

// TaskStatus константы статусов задач.
const (
	TaskStatusPending    = "pending"
	TaskStatusApproved   = "approved"
	TaskStatusInProgress = "in_progress"
	TaskStatusSubmitted  = "submitted"
	TaskStatusCompleted  = "completed"
	TaskStatusRejected   = "rejected"
	TaskStatusCancelled  = "cancelled"
)

// OrderStatus константы статусов заказов. Статус rejected не терминальный:
// после доработки исполнитель отправляет результат повторно.
const (
	OrderStatusInProgress = "in_progress"
	OrderStatusSubmitted  = "submitted"
	OrderStatusCompleted  = "completed"
	OrderStatusRejected   = "rejected"
)

// TransactionType типы записей журнала транзакций.
const (
	TransactionTypeRecharge = "recharge"
	TransactionTypeFreeze   = "freeze"
	TransactionTypeUnfreeze = "unfreeze"
	TransactionTypePay      = "pay"
	TransactionTypeIncome   = "income"
	TransactionTypeWithdraw = "withdraw"
)

// ReviewType направления оценки.
const (
	ReviewTypeEnterpriseToIndividual = "enterprise_to_individual"
	ReviewTypeIndividualToEnterprise = "individual_to_enterprise"
)

// ValidRoles список ролей, которые можно выбрать при онбординге.
var ValidRoles = map[string]struct{}{
	RoleEnterprise: {},
	RoleIndividual: {},
}

// ValidTaskTypes список валидных типов задач.
var ValidTaskTypes = map[string]struct{}{
	TaskTypeReport:   {},
	TaskTypeVideo:    {},
	TaskTypeLabeling: {},
}

// ValidTaskStatuses список валидных статусов задач.
var ValidTaskStatuses = map[string]struct{}{
	TaskStatusPending:    {},
	TaskStatusApproved:   {},
	TaskStatusInProgress: {},
	TaskStatusSubmitted:  {},
	TaskStatusCompleted:  {},
	TaskStatusRejected:   {},
	TaskStatusCancelled:  {},
}

// ValidOrderStatuses список валидных статусов заказов.
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusInProgress: {},
	OrderStatusSubmitted:  {},
	OrderStatusCompleted:  {},
	OrderStatusRejected:   {},
}

// TaskSubTypes допустимые подтипы по каждому типу задачи.
var TaskSubTypes = map[string][]string{
	TaskTypeReport: {
		"industry_research",
		"data_analysis",
		"business_plan",
		"consulting",
		"academic",
	},
	TaskTypeVideo: {
		"wechat_video",
		"product_promo",
		"tutorial",
		"creative",
		"live_editing",
		"post_production",
	},
	TaskTypeLabeling: {
		"image_labeling",
		"text_labeling",
		"audio_labeling",
		"video_labeling",
		"point_cloud",
		"data_cleaning",
	},
}

// IsValidSubType проверяет, что подтип допустим для данного типа задачи.
func IsValidSubType(taskType, subType string) bool {
	for _, st := range TaskSubTypes[taskType] {
		if st == subType {
			return true
		}
	}
	return false
}
