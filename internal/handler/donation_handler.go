package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/logic"
	"github.com/blues/gfc/internal/model"
	"github.com/blues/gfc/internal/wizard"
	"github.com/gin-gonic/gin"
)

// DonationHandler 捐赠处理器，覆盖向导流程与线下转账登记
type DonationHandler struct {
	donationLogic *logic.DonationLogic
}

// NewDonationHandler 创建捐赠处理器
func NewDonationHandler(donationLogic *logic.DonationLogic) *DonationHandler {
	return &DonationHandler{donationLogic: donationLogic}
}

// StartSession 开启捐赠向导会话
func (h *DonationHandler) StartSession(c *gin.Context) {
	var req struct {
		WishlistId int64 `json:"wishlist_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	var donorId int64
	if claims := auth.ClaimsFrom(c); claims != nil {
		donorId = claims.UserId
	}

	session, err := h.donationLogic.StartSession(req.WishlistId, donorId)
	if err != nil {
		if errors.Is(err, logic.ErrWishlistNotFound) {
			ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "捐赠会话已创建", ToSessionResponse(session))
}

// GetSession 查看会话状态
func (h *DonationHandler) GetSession(c *gin.Context) {
	session, err := h.donationLogic.GetSession(c.Param("sid"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取会话成功", ToSessionResponse(session))
}

// CancelSession 放弃捐赠流程
func (h *DonationHandler) CancelSession(c *gin.Context) {
	if err := h.donationLogic.CancelSession(c.Param("sid")); err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "捐赠会话已取消", nil)
}

// ToggleItem 选中/取消选中物品
func (h *DonationHandler) ToggleItem(c *gin.Context) {
	var req struct {
		ItemId int64 `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	session, err := h.donationLogic.ToggleItem(c.Param("sid"), req.ItemId)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "购物车已更新", ToSessionResponse(session))
}

// SetItemQty 修改已选物品数量
func (h *DonationHandler) SetItemQty(c *gin.Context) {
	var req struct {
		ItemId int64 `json:"item_id" binding:"required"`
		Qty    int   `json:"qty" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	session, err := h.donationLogic.SetItemQty(c.Param("sid"), req.ItemId, req.Qty)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "数量已更新", ToSessionResponse(session))
}

// SetDetails 填写捐赠人信息
func (h *DonationHandler) SetDetails(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	session, err := h.donationLogic.SetDetails(c.Param("sid"), req.Name, req.Email)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "捐赠人信息已保存", ToSessionResponse(session))
}

// NextStep 向导前进
func (h *DonationHandler) NextStep(c *gin.Context) {
	session, err := h.donationLogic.NextStep(c.Param("sid"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "已进入下一步", ToSessionResponse(session))
}

// PrevStep 向导后退
func (h *DonationHandler) PrevStep(c *gin.Context) {
	session, err := h.donationLogic.PrevStep(c.Param("sid"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "已返回上一步", ToSessionResponse(session))
}

// Confirm 支付确认，成功后会话进入success
func (h *DonationHandler) Confirm(c *gin.Context) {
	var req struct {
		Gateway string `json:"gateway"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}
	if req.Gateway == "" {
		req.Gateway = "demo"
	}

	result, err := h.donationLogic.Confirm(c.Param("sid"), req.Gateway)
	if err != nil {
		if errors.Is(err, logic.ErrPaymentDeclined) {
			ErrorResponse(c, http.StatusPaymentRequired, err.Error())
			return
		}
		h.sessionError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "捐赠成功，感谢您的爱心", result)
}

// GetSummary 成功页摘要
func (h *DonationHandler) GetSummary(c *gin.Context) {
	summary, err := h.donationLogic.GetSummary(c.Param("sid"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取捐赠摘要成功", summary)
}

// CreateManualDonation 登记线下转账捐赠
func (h *DonationHandler) CreateManualDonation(c *gin.Context) {
	var req struct {
		NgoId          int64  `json:"ngo_id" binding:"required"`
		WishlistId     int64  `json:"wishlist_id" binding:"required"`
		WishlistItemId int64  `json:"wishlist_item_id"`
		DonorName      string `json:"donor_name" binding:"required"`
		DonorEmail     string `json:"donor_email" binding:"required,email"`
		Amount         int64  `json:"amount" binding:"required,min=1"`
		Qty            int    `json:"qty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	donation := &model.DonationModel{
		NgoId:          req.NgoId,
		WishlistId:     req.WishlistId,
		WishlistItemId: req.WishlistItemId,
		DonorName:      req.DonorName,
		DonorEmail:     req.DonorEmail,
		Amount:         req.Amount,
		Qty:            req.Qty,
	}
	if claims := auth.ClaimsFrom(c); claims != nil {
		donation.DonorId = claims.UserId
	}

	if err := h.donationLogic.CreateManualDonation(donation); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "捐赠已登记，请完成转账后确认", ToDonationResponse(donation))
}

// ConfirmManualDonation 捐赠人确认转账完成
func (h *DonationHandler) ConfirmManualDonation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的捐赠ID")
		return
	}

	donation, err := h.donationLogic.ConfirmManualDonation(id)
	if err != nil {
		if errors.Is(err, logic.ErrDonationNotFound) {
			ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "捐赠已确认，感谢您的爱心", ToDonationResponse(donation))
}

// GetMyDonations 当前用户的捐赠记录
func (h *DonationHandler) GetMyDonations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	claims := auth.ClaimsFrom(c)
	donations, total, err := h.donationLogic.ListByDonor(claims.UserId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取捐赠记录成功", GetDonationsResponse{
		Donations:  ToDonationResponseList(donations),
		Pagination: NewPagination(page, pageSize, total),
	})
}

// sessionError 会话相关错误统一映射
func (h *DonationHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, wizard.ErrSessionFinished):
		ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	}
}
