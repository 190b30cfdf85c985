package handler

import (
	"errors"
	"net/http"

	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/logic"
	"github.com/blues/gfc/internal/model"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	userLogic  *logic.UserLogic
	auditLogic *logic.AuditLogic
	authCfg    config.AuthConfig
}

// NewUserHandler 创建用户处理器
func NewUserHandler(userLogic *logic.UserLogic, auditLogic *logic.AuditLogic, authCfg config.AuthConfig) *UserHandler {
	return &UserHandler{
		userLogic:  userLogic,
		auditLogic: auditLogic,
		authCfg:    authCfg,
	}
}

// Signup 注册
func (h *UserHandler) Signup(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if req.Role == "" {
		req.Role = string(auth.RoleDonor)
	}

	user, err := h.userLogic.Signup(req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, logic.ErrEmailTaken) {
			ErrorResponse(c, http.StatusConflict, err.Error())
			return
		}
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "签发token失败")
		return
	}

	SuccessResponse(c, http.StatusCreated, "注册成功", LoginResponse{
		Token: token,
		User:  ToUserResponse(user),
	})
}

// Login 登录
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	user, err := h.userLogic.Authenticate(req.Email, req.Password)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "签发token失败")
		return
	}

	SuccessResponse(c, http.StatusOK, "登录成功", LoginResponse{
		Token: token,
		User:  ToUserResponse(user),
	})
}

// Logout 登出
// token由客户端丢弃，服务端仅留审计记录，任何内部失败都不阻塞登出
func (h *UserHandler) Logout(c *gin.Context) {
	if claims := auth.ClaimsFrom(c); claims != nil {
		h.auditLogic.Record(claims.UserId, model.AuditActionLogout, "user", claims.UserId,
			model.AuditStatusSuccess, "")
	}
	SuccessResponse(c, http.StatusOK, "已登出", nil)
}

// Me 当前登录用户资料，每次请求都重新读取
func (h *UserHandler) Me(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	user, err := h.userLogic.GetUser(claims.UserId)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取用户资料成功", ToUserResponse(user))
}

// UpdateProfile 更新资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	claims := auth.ClaimsFrom(c)
	user, err := h.userLogic.UpdateProfile(claims.UserId, req.Name, req.AvatarURL)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "更新资料成功", ToUserResponse(user))
}

// RequestPasswordReset 发送重置密码邮件
func (h *UserHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		ResetURL string `json:"reset_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	if err := h.userLogic.RequestPasswordReset(req.Email, req.ResetURL); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "如果邮箱已注册，重置邮件将很快送达", nil)
}

// ResetPassword 凭token重置密码
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	if err := h.userLogic.ResetPassword(req.Token, req.Password); err != nil {
		if errors.Is(err, logic.ErrResetTokenInvalid) {
			ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "密码已重置", nil)
}

func (h *UserHandler) issueToken(user *model.UserModel) (string, error) {
	role, err := auth.ParseRole(user.Role)
	if err != nil {
		return "", err
	}
	return auth.GenerateToken(user.Id, user.Email, role, h.authCfg.JWTSecret, h.authCfg.TokenExpiry)
}
