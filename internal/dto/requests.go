package dto

import (
	"github.com/shopspring/decimal"
)

// WechatUserInfo — профиль из мини-программы, все поля опциональны.
type WechatUserInfo struct {
	Name      *string `json:"nickName"`
	AvatarURL *string `json:"avatarUrl"`
}

// WechatLoginRequest — вход через code2session.
type WechatLoginRequest struct {
	Code     string          `json:"code" binding:"required"`
	UserInfo *WechatUserInfo `json:"userInfo"`
}

// DevLoginRequest — вход без WeChat, только для development.
type DevLoginRequest struct {
	OpenID string `json:"openId" binding:"required"`
}

// SetRoleRequest — выбор роли после первого входа.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateTaskRequest — публикация задачи предприятием.
type CreateTaskRequest struct {
	Type                  string           `json:"type" binding:"required"`
	SubType               string           `json:"subType" binding:"required"`
	Title                 string           `json:"title" binding:"required"`
	Description           string           `json:"description" binding:"required"`
	Requirements          *string          `json:"requirements"`
	Attachments           []string         `json:"attachments"`
	Budget                decimal.Decimal  `json:"budget" binding:"required"`
	IsVideoTask           bool             `json:"isVideoTask"`
	BasePrice             *decimal.Decimal `json:"basePrice"`
	PricePerThousandViews *decimal.Decimal `json:"pricePerThousandViews"`
	Deadline              string           `json:"deadline" binding:"required"`
}

// ApproveTaskRequest — приёмка результата. viewCount нужен только
// для видео-задач, иначе игнорируется.
type ApproveTaskRequest struct {
	ViewCount *int `json:"viewCount"`
}

// RejectTaskRequest — возврат результата на доработку.
type RejectTaskRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// UpdateEnterpriseProfileRequest — частичное обновление анкеты предприятия.
type UpdateEnterpriseProfileRequest struct {
	CompanyName *string `json:"companyName"`
	License     *string `json:"license"`
	Contact     *string `json:"contact"`
}

// RechargeRequest — пополнение баланса предприятия.
type RechargeRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SubmitTaskRequest — сдача результата исполнителем.
type SubmitTaskRequest struct {
	Result      string   `json:"result" binding:"required"`
	Attachments []string `json:"attachments"`
	ViewCount   *int     `json:"viewCount"`
}

// UpdateWorkerProfileRequest — частичное обновление анкеты исполнителя.
// nil означает «поле не менять», пустой срез — «очистить».
type UpdateWorkerProfileRequest struct {
	RealName   *string  `json:"realName"`
	Skills     []string `json:"skills"`
	Experience *string  `json:"experience"`
	Portfolio  []string `json:"portfolio"`
}

// WithdrawRequest — вывод средств исполнителем.
type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CreateReviewRequest — отзыв по завершённому заказу.
type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment"`
}
