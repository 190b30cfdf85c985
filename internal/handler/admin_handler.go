package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/logic"
	"github.com/blues/gfc/internal/model"
	"github.com/gin-gonic/gin"
)

// AdminHandler 管理端处理器，所有动作写审计日志
type AdminHandler struct {
	ngoLogic      *logic.NgoLogic
	wishlistLogic *logic.WishlistLogic
	storyLogic    *logic.StoryLogic
	donationLogic *logic.DonationLogic
	auditLogic    *logic.AuditLogic
	statsLogic    *logic.StatsLogic
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(ngoLogic *logic.NgoLogic, wishlistLogic *logic.WishlistLogic,
	storyLogic *logic.StoryLogic, donationLogic *logic.DonationLogic,
	auditLogic *logic.AuditLogic, statsLogic *logic.StatsLogic) *AdminHandler {
	return &AdminHandler{
		ngoLogic:      ngoLogic,
		wishlistLogic: wishlistLogic,
		storyLogic:    storyLogic,
		donationLogic: donationLogic,
		auditLogic:    auditLogic,
		statsLogic:    statsLogic,
	}
}

// VerifyNgo 机构认证/取消认证
func (h *AdminHandler) VerifyNgo(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的机构ID")
		return
	}

	var req struct {
		Verified *bool `json:"verified" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	claims := auth.ClaimsFrom(c)
	action := model.AuditActionVerifyNgo
	if !*req.Verified {
		action = model.AuditActionUnverifyNgo
	}

	ngo, err := h.ngoLogic.SetVerified(id, *req.Verified)
	if err != nil {
		h.auditLogic.Record(claims.UserId, action, "ngo", id, model.AuditStatusFailed, err.Error())
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	h.auditLogic.Record(claims.UserId, action, "ngo", id, model.AuditStatusSuccess,
		fmt.Sprintf("verified=%t", *req.Verified))
	SuccessResponse(c, http.StatusOK, "认证状态已更新", ToNgoResponse(ngo))
}

// ReviewWishlist 审核清单：通过发布或退回草稿
func (h *AdminHandler) ReviewWishlist(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的清单ID")
		return
	}

	var req struct {
		Approve *bool `json:"approve" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	claims := auth.ClaimsFrom(c)
	var wishlist *model.WishlistModel
	action := model.AuditActionPublishWishlist
	if *req.Approve {
		wishlist, err = h.wishlistLogic.Publish(id)
	} else {
		action = model.AuditActionRejectWishlist
		wishlist, err = h.wishlistLogic.Reject(id)
	}
	if err != nil {
		h.auditLogic.Record(claims.UserId, action, "wishlist", id, model.AuditStatusFailed, err.Error())
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	h.auditLogic.Record(claims.UserId, action, "wishlist", id, model.AuditStatusSuccess, "")
	SuccessResponse(c, http.StatusOK, "清单审核完成", ToWishlistResponse(wishlist, nil))
}

// ReviewStory 审核成功案例
func (h *AdminHandler) ReviewStory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的案例ID")
		return
	}

	var req struct {
		Approve *bool `json:"approve" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	claims := auth.ClaimsFrom(c)
	action := model.AuditActionApproveStory
	if !*req.Approve {
		action = model.AuditActionRejectStory
	}

	story, err := h.storyLogic.SetApproved(id, *req.Approve)
	if err != nil {
		h.auditLogic.Record(claims.UserId, action, "success_story", id, model.AuditStatusFailed, err.Error())
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	h.auditLogic.Record(claims.UserId, action, "success_story", id, model.AuditStatusSuccess, "")
	SuccessResponse(c, http.StatusOK, "案例审核完成", ToStoryResponse(story))
}

// GetAuditLogs 审计日志列表
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	logs, total, err := h.auditLogic.List(c.Query("action"), page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取审计日志成功", GetAuditLogsResponse{
		Logs:       ToAuditLogResponseList(logs),
		Pagination: NewPagination(page, pageSize, total),
	})
}

// GetPendingDonations 滞留的待确认捐赠，仅供管理端观察
func (h *AdminHandler) GetPendingDonations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	donations, total, err := h.donationLogic.ListByStatus(model.DonationStatusPending, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取待确认捐赠成功", GetDonationsResponse{
		Donations:  ToDonationResponseList(donations),
		Pagination: NewPagination(page, pageSize, total),
	})
}

// GetPlatformStats 平台统计
func (h *AdminHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.statsLogic.GetPlatformStats()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取平台统计成功", gin.H{"stats": stats})
}
