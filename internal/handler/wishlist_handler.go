package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/logic"
	"github.com/blues/gfc/internal/model"
	"github.com/gin-gonic/gin"
)

// WishlistHandler 愿望清单处理器
type WishlistHandler struct {
	wishlistLogic *logic.WishlistLogic
	ngoLogic      *logic.NgoLogic
	statsLogic    *logic.StatsLogic
}

// NewWishlistHandler 创建愿望清单处理器
func NewWishlistHandler(wishlistLogic *logic.WishlistLogic, ngoLogic *logic.NgoLogic,
	statsLogic *logic.StatsLogic) *WishlistHandler {
	return &WishlistHandler{
		wishlistLogic: wishlistLogic,
		ngoLogic:      ngoLogic,
		statsLogic:    statsLogic,
	}
}

// CreateWishlist 创建清单
func (h *WishlistHandler) CreateWishlist(c *gin.Context) {
	var req struct {
		NgoId        int64  `json:"ngo_id" binding:"required"`
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		TargetAmount int64  `json:"target_amount" binding:"required,min=1"`
		Items        []struct {
			Name  string `json:"name" binding:"required"`
			Price int64  `json:"price" binding:"required,min=1"`
			Qty   int    `json:"qty" binding:"required,min=1"`
		} `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	if !h.ownsNgo(c, req.NgoId) {
		return
	}

	wishlist := &model.WishlistModel{
		NgoId:        req.NgoId,
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
	}
	items := make([]model.WishlistItemModel, len(req.Items))
	for i, item := range req.Items {
		items[i] = model.WishlistItemModel{Name: item.Name, Price: item.Price, Qty: item.Qty}
	}

	preview, err := h.wishlistLogic.CreateWishlist(wishlist, items)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "创建愿望清单成功", CreateWishlistResponse{
		Wishlist:      ToWishlistResponse(wishlist, items),
		PreviewAmount: preview,
	})
}

// GetWishlists 公开清单列表
func (h *WishlistHandler) GetWishlists(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	ngoId, _ := strconv.ParseInt(c.DefaultQuery("ngo_id", "0"), 10, 64)

	wishlists, total, err := h.wishlistLogic.ListPublished(ngoId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取清单列表成功", GetWishlistsResponse{
		Wishlists:  ToWishlistResponseList(wishlists),
		Pagination: NewPagination(page, pageSize, total),
	})
}

// GetWishlist 清单详情（含物品）
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的清单ID")
		return
	}

	wishlist, items, err := h.wishlistLogic.GetWishlist(id)
	if err != nil {
		if errors.Is(err, logic.ErrWishlistNotFound) {
			ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取清单详情成功", ToWishlistResponse(wishlist, items))
}

// GetWishlistStats 清单统计信息
func (h *WishlistHandler) GetWishlistStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的清单ID")
		return
	}

	stats, err := h.statsLogic.GetWishlistStats(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取清单统计成功", gin.H{"stats": stats})
}

// SubmitWishlist 草稿提交审核
func (h *WishlistHandler) SubmitWishlist(c *gin.Context) {
	h.ownerTransition(c, h.wishlistLogic.SubmitForReview, "清单已提交审核")
}

// CompleteWishlist 机构手动结束清单
func (h *WishlistHandler) CompleteWishlist(c *gin.Context) {
	h.ownerTransition(c, h.wishlistLogic.Complete, "清单已结束")
}

// ownerTransition 机构负责人触发的清单状态转移
func (h *WishlistHandler) ownerTransition(c *gin.Context,
	fn func(int64) (*model.WishlistModel, error), message string) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的清单ID")
		return
	}

	wishlist, _, err := h.wishlistLogic.GetWishlist(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	if !h.ownsNgo(c, wishlist.NgoId) {
		return
	}

	updated, err := fn(id)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, message, ToWishlistResponse(updated, nil))
}

// ownsNgo 校验当前用户是否机构负责人
func (h *WishlistHandler) ownsNgo(c *gin.Context, ngoId int64) bool {
	ngo, err := h.ngoLogic.GetNgo(ngoId)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return false
	}

	claims := auth.ClaimsFrom(c)
	if ngo.OwnerId != claims.UserId {
		ErrorResponse(c, http.StatusForbidden, "只有机构负责人可以执行此操作")
		return false
	}
	return true
}
