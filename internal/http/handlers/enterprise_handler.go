package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskmarket-backend/internal/dto"
	"github.com/ignatzorin/taskmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskmarket-backend/internal/service"
)

// EnterpriseHandler обслуживает кабинет предприятия: задачи, приёмка, баланс.
type EnterpriseHandler struct {
	enterprises *service.EnterpriseService
}

func NewEnterpriseHandler(enterprises *service.EnterpriseService) *EnterpriseHandler {
	return &EnterpriseHandler{enterprises: enterprises}
}

// Stats GET /enterprise/stats
func (h *EnterpriseHandler) Stats(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	stats, err := h.enterprises.Stats(c.Request.Context(), userID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, stats)
}

// RecentTasks GET /enterprise/tasks/recent
func (h *EnterpriseHandler) RecentTasks(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit := common.ParseIntQuery(c, "limit", 5)
	tasks, err := h.enterprises.RecentTasks(c.Request.Context(), userID, limit)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, tasks)
}

// ListTasks GET /enterprise/tasks
func (h *EnterpriseHandler) ListTasks(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	tasks, hasMore, err := h.enterprises.ListTasks(c.Request.Context(), userID, c.Query("status"), common.PageFromQuery(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondPage(c, tasks, hasMore)
}

// CreateTask POST /enterprise/tasks
func (h *EnterpriseHandler) CreateTask(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "не заполнены обязательные поля задачи")
		return
	}

	task, err := h.enterprises.CreateTask(c.Request.Context(), userID, service.CreateTaskInput{
		Type:                  req.Type,
		SubType:               req.SubType,
		Title:                 req.Title,
		Description:           req.Description,
		Requirements:          req.Requirements,
		Attachments:           req.Attachments,
		Budget:                req.Budget,
		IsVideoTask:           req.IsVideoTask,
		BasePrice:             req.BasePrice,
		PricePerThousandViews: req.PricePerThousandViews,
		Deadline:              req.Deadline,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusCreated, task)
}

// TaskDetail GET /enterprise/tasks/:id
func (h *EnterpriseHandler) TaskDetail(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	taskID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	detail, err := h.enterprises.TaskDetail(c.Request.Context(), userID, taskID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, detail)
}

// Approve POST /enterprise/tasks/:id/approve
func (h *EnterpriseHandler) Approve(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	taskID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	// Тело опционально: без viewCount берём значение из заказа.
	var req dto.ApproveTaskRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.enterprises.Approve(c.Request.Context(), userID, taskID, req.ViewCount)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, order)
}

// Reject POST /enterprise/tasks/:id/reject
func (h *EnterpriseHandler) Reject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	taskID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RejectTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "требуется комментарий для доработки")
		return
	}

	order, err := h.enterprises.Reject(c.Request.Context(), userID, taskID, req.Comment)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, order)
}

// CancelTask POST /enterprise/tasks/:id/cancel
func (h *EnterpriseHandler) CancelTask(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	taskID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.enterprises.CancelTask(c.Request.Context(), userID, taskID); err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondMessage(c, http.StatusOK, "задача отменена, бюджет возвращён")
}

// Profile GET /enterprise/profile
func (h *EnterpriseHandler) Profile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	profile, err := h.enterprises.Profile(c.Request.Context(), userID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, profile)
}

// UpdateProfile PUT /enterprise/profile
func (h *EnterpriseHandler) UpdateProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.UpdateEnterpriseProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	profile, err := h.enterprises.UpdateProfile(c.Request.Context(), userID, req.CompanyName, req.License, req.Contact)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, profile)
}

// Recharge POST /enterprise/recharge
func (h *EnterpriseHandler) Recharge(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "требуется сумма пополнения")
		return
	}

	txn, err := h.enterprises.Recharge(c.Request.Context(), userID, req.Amount)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, txn)
}

// Transactions GET /enterprise/transactions
func (h *EnterpriseHandler) Transactions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	txns, hasMore, err := h.enterprises.Transactions(c.Request.Context(), userID, common.PageFromQuery(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondPage(c, txns, hasMore)
}
