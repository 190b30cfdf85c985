package handler

import (
	"net/http"

	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/logic"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 角色分发仪表盘处理器
type DashboardHandler struct {
	dashboardLogic *logic.DashboardLogic
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(dashboardLogic *logic.DashboardLogic) *DashboardHandler {
	return &DashboardHandler{dashboardLogic: dashboardLogic}
}

// GetDashboard 按登录角色返回捐赠人/机构/管理员三种视图之一
// 角色无法解析时返回403，不再静默退回捐赠人视图
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		ErrorResponse(c, http.StatusUnauthorized, "未登录")
		return
	}

	dashboard, err := h.dashboardLogic.Build(claims.UserId, claims.Role)
	if err != nil {
		ErrorResponse(c, http.StatusForbidden, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取仪表盘成功", dashboard)
}
