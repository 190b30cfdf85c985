package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/logic"
	"github.com/blues/gfc/internal/model"
	"github.com/blues/gfc/internal/payment"
	"github.com/blues/gfc/internal/storage"
	"github.com/gin-gonic/gin"
)

// NgoHandler 机构处理器
type NgoHandler struct {
	ngoLogic *logic.NgoLogic
	store    *storage.Store
}

// NewNgoHandler 创建机构处理器
func NewNgoHandler(ngoLogic *logic.NgoLogic, store *storage.Store) *NgoHandler {
	return &NgoHandler{ngoLogic: ngoLogic, store: store}
}

// CreateNgo 创建机构
func (h *NgoHandler) CreateNgo(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		RegistrationNo string `json:"registration_no" binding:"required"`
		Category       string `json:"category"`
		Description    string `json:"description"`
		ContactEmail   string `json:"contact_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	claims := auth.ClaimsFrom(c)
	ngo := &model.NgoModel{
		OwnerId:        claims.UserId,
		Name:           req.Name,
		RegistrationNo: req.RegistrationNo,
		Category:       req.Category,
		Description:    req.Description,
		ContactEmail:   req.ContactEmail,
	}
	if err := h.ngoLogic.CreateNgo(ngo); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "创建机构成功", ToNgoResponse(ngo))
}

// GetNgos 公开机构列表
func (h *NgoHandler) GetNgos(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	ngos, total, err := h.ngoLogic.ListVerified(c.Query("category"), c.Query("search"), page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取机构列表成功", GetNgosResponse{
		Ngos:       ToNgoResponseList(ngos),
		Pagination: NewPagination(page, pageSize, total),
	})
}

// GetNgo 机构详情，支持数字id或slug
func (h *NgoHandler) GetNgo(c *gin.Context) {
	idStr := c.Param("id")

	var ngo *model.NgoModel
	var err error
	if id, convErr := strconv.ParseInt(idStr, 10, 64); convErr == nil {
		ngo, err = h.ngoLogic.GetNgo(id)
	} else {
		ngo, err = h.ngoLogic.GetNgoBySlug(idStr)
	}
	if err != nil {
		if errors.Is(err, logic.ErrNgoNotFound) {
			ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取机构详情成功", ToNgoResponse(ngo))
}

// UpdateNgo 更新机构信息，仅机构负责人本人
func (h *NgoHandler) UpdateNgo(c *gin.Context) {
	ngo, ok := h.ownedNgo(c)
	if !ok {
		return
	}

	var req struct {
		Name         string `json:"name"`
		Category     string `json:"category"`
		Description  string `json:"description"`
		ContactEmail string `json:"contact_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.ContactEmail != "" {
		updates["contact_email"] = req.ContactEmail
	}

	updated, err := h.ngoLogic.UpdateNgo(ngo.Id, updates)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "更新机构成功", ToNgoResponse(updated))
}

// UploadLogo 上传机构logo
func (h *NgoHandler) UploadLogo(c *gin.Context) {
	ngo, ok := h.ownedNgo(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "缺少上传文件")
		return
	}

	url, err := h.store.SaveUpload(storage.BucketLogos, file)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.ngoLogic.SetLogoURL(ngo.Id, url); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "上传logo成功", gin.H{"url": url})
}

// GetSettlement 机构收款信息，供线下转账捐赠展示
func (h *NgoHandler) GetSettlement(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的机构ID")
		return
	}

	account, err := h.ngoLogic.GetSettlementAccount(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取收款信息成功", ToSettlementResponse(account))
}

// SaveSettlement 保存机构收款账户
// 银行账户字段与UPI信息二选一；UPI未上传收款码时由服务端生成
func (h *NgoHandler) SaveSettlement(c *gin.Context) {
	ngo, ok := h.ownedNgo(c)
	if !ok {
		return
	}

	var req struct {
		HolderName    string `json:"holder_name"`
		AccountNumber string `json:"account_number"`
		IFSC          string `json:"ifsc"`
		BankName      string `json:"bank_name"`
		BranchName    string `json:"branch_name"`
		UpiId         string `json:"upi_id"`
		QrImageURL    string `json:"qr_image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	account := &model.SettlementAccountModel{
		NgoId:         ngo.Id,
		HolderName:    req.HolderName,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		BankName:      req.BankName,
		BranchName:    req.BranchName,
		UpiId:         req.UpiId,
		QrImageURL:    req.QrImageURL,
	}

	if account.UpiId != "" && account.QrImageURL == "" {
		png, err := payment.GenerateUpiQR(account.UpiId, ngo.Name, 0)
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}
		url, err := h.store.SaveBytes(storage.BucketQrCodes, ".png", png)
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}
		account.QrImageURL = url
	}

	if err := h.ngoLogic.SaveSettlementAccount(account); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "保存收款账户成功", ToSettlementResponse(account))
}

// ownedNgo 解析路径中的机构并校验归属
func (h *NgoHandler) ownedNgo(c *gin.Context) (*model.NgoModel, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的机构ID")
		return nil, false
	}

	ngo, err := h.ngoLogic.GetNgo(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return nil, false
	}

	claims := auth.ClaimsFrom(c)
	if ngo.OwnerId != claims.UserId {
		ErrorResponse(c, http.StatusForbidden, "只有机构负责人可以执行此操作")
		return nil, false
	}
	return ngo, true
}
