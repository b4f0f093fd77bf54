package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskmarket-backend/internal/dto"
	"github.com/ignatzorin/taskmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskmarket-backend/internal/service"
)

// AuthHandler обслуживает вход через WeChat и выбор роли.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// WechatLogin POST /auth/wechat-login
func (h *AuthHandler) WechatLogin(c *gin.Context) {
	var req dto.WechatLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "требуется code из мини-программы")
		return
	}

	in := service.LoginInput{Code: req.Code}
	if req.UserInfo != nil {
		in.Name = req.UserInfo.Name
		in.AvatarURL = req.UserInfo.AvatarURL
	}

	result, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, authResponse(result))
}

// DevLogin POST /auth/dev-login
func (h *AuthHandler) DevLogin(c *gin.Context) {
	var req dto.DevLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "требуется openId")
		return
	}

	result, err := h.auth.DevLogin(c.Request.Context(), req.OpenID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, authResponse(result))
}

// SetRole POST /auth/role
func (h *AuthHandler) SetRole(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "требуется роль")
		return
	}

	result, err := h.auth.SetRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, authResponse(result))
}

// Me GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondData(c, http.StatusOK, user)
}

// Logout POST /auth/logout
// Токены stateless, сервер просто подтверждает выход.
func (h *AuthHandler) Logout(c *gin.Context) {
	common.RespondMessage(c, http.StatusOK, "выход выполнен")
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
		User:      result.User,
	}
}
