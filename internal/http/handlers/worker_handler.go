package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskmarket-backend/internal/dto"
	"github.com/ignatzorin/taskmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskmarket-backend/internal/service"
)

// WorkerHandler обслуживает кабинет исполнителя и публичную биржу задач.
type WorkerHandler struct {
	workers *service.WorkerService
}

func NewWorkerHandler(workers *service.WorkerService) *WorkerHandler {
	return &WorkerHandler{workers: workers}
}

// Market GET /market/tasks — публичный, авторизация не требуется.
func (h *WorkerHandler) Market(c *gin.Context) {
	tasks, hasMore, err := h.workers.Market(c.Request.Context(), c.Query("type"), c.Query("keyword"), common.PageFromQuery(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondPage(c, tasks, hasMore)
}

// MyTasks GET /worker/tasks
func (h *WorkerHandler) MyTasks(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	tasks, hasMore, err := h.workers.MyTasks(c.Request.Context(), userID, c.Query("status"), common.PageFromQuery(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondPage(c, tasks, hasMore)
}

// Accept POST /worker/tasks/:id/accept
func (h *WorkerHandler) Accept(c *gin.Context) {
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

	order, err := h.workers.Accept(c.Request.Context(), userID, taskID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusCreated, order)
}

// Submit POST /worker/tasks/:id/submit
func (h *WorkerHandler) Submit(c *gin.Context) {
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

	var req dto.SubmitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "требуется описание результата")
		return
	}

	order, err := h.workers.Submit(c.Request.Context(), userID, taskID, req.Result, req.Attachments, req.ViewCount)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, order)
}

// TaskDetail GET /worker/tasks/:id
func (h *WorkerHandler) TaskDetail(c *gin.Context) {
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

	detail, err := h.workers.TaskDetail(c.Request.Context(), userID, taskID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, detail)
}

// Profile GET /worker/profile
func (h *WorkerHandler) Profile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	profile, err := h.workers.Profile(c.Request.Context(), userID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, profile)
}

// UpdateProfile PUT /worker/profile
func (h *WorkerHandler) UpdateProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.UpdateWorkerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	profile, err := h.workers.UpdateProfile(c.Request.Context(), userID, service.UpdateProfileInput{
		RealName:   req.RealName,
		Skills:     req.Skills,
		Experience: req.Experience,
		Portfolio:  req.Portfolio,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, profile)
}

// Withdraw POST /worker/withdraw
func (h *WorkerHandler) Withdraw(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "требуется сумма вывода")
		return
	}

	txn, err := h.workers.Withdraw(c.Request.Context(), userID, req.Amount)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, txn)
}

// Transactions GET /worker/transactions
func (h *WorkerHandler) Transactions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	txns, hasMore, err := h.workers.Transactions(c.Request.Context(), userID, common.PageFromQuery(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondPage(c, txns, hasMore)
}
