package handler

import (
	"time"

	"github.com/blues/gfc/internal/model"
	"github.com/blues/gfc/internal/wizard"
)

// 用户相关响应模型

// UserResponse 用户响应模型
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// 机构相关响应模型

// NgoResponse 机构响应模型
type NgoResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	RegistrationNo string    `json:"registrationNo"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	LogoURL        string    `json:"logoUrl"`
	ContactEmail   string    `json:"contactEmail"`
	Verified       bool      `json:"verified"`
	Slug           string    `json:"slug"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GetNgosResponse 机构列表响应
type GetNgosResponse struct {
	Ngos       []NgoResponse `json:"ngos"`
	Pagination Pagination    `json:"pagination"`
}

// SettlementResponse 收款账户响应
// 银行与UPI互斥，未配置的一侧字段为空
type SettlementResponse struct {
	NgoID         int64  `json:"ngoId"`
	HolderName    string `json:"holderName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	BranchName    string `json:"branchName,omitempty"`
	UpiID         string `json:"upiId,omitempty"`
	QrImageURL    string `json:"qrImageUrl,omitempty"`
}

// 清单相关响应模型

// WishlistResponse 清单响应模型
type WishlistResponse struct {
	ID           int64     `json:"id"`
	NgoID        int64     `json:"ngoId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TargetAmount int64     `json:"targetAmount"`
	RaisedAmount int64     `json:"raisedAmount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`

	Items []WishlistItemResponse `json:"items,omitempty"`
}

// WishlistItemResponse 清单物品响应模型
type WishlistItemResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Qty       int    `json:"qty"`
	FundedQty int    `json:"fundedQty"`
	Funded    bool   `json:"funded"`
}

// CreateWishlistResponse 创建清单响应，预览金额仅为物品合计
type CreateWishlistResponse struct {
	Wishlist      WishlistResponse `json:"wishlist"`
	PreviewAmount int64            `json:"previewAmount"`
}

// GetWishlistsResponse 清单列表响应
type GetWishlistsResponse struct {
	Wishlists  []WishlistResponse `json:"wishlists"`
	Pagination Pagination         `json:"pagination"`
}

// 捐赠相关响应模型

// DonationResponse 捐赠记录响应模型
type DonationResponse struct {
	ID         int64     `json:"id"`
	NgoID      int64     `json:"ngoId"`
	WishlistID int64     `json:"wishlistId"`
	DonorName  string    `json:"donorName"`
	Amount     int64     `json:"amount"`
	Qty        int       `json:"qty"`
	Gateway    string    `json:"gateway"`
	TxnID      string    `json:"txnId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GetDonationsResponse 捐赠记录列表响应
type GetDonationsResponse struct {
	Donations  []DonationResponse `json:"donations"`
	Pagination Pagination         `json:"pagination"`
}

// SessionResponse 向导会话响应模型
type SessionResponse struct {
	ID         string            `json:"id"`
	WishlistID int64             `json:"wishlistId"`
	Step       string            `json:"step"`
	Cart       []wizard.CartItem `json:"cart"`
	Total      int64             `json:"total"`
	DonorName  string            `json:"donorName"`
	DonorEmail string            `json:"donorEmail"`
}

// 成功案例相关响应模型

// StoryResponse 成功案例响应模型
type StoryResponse struct {
	ID        int64     `json:"id"`
	NgoID     int64     `json:"ngoId"`
	Title     string    `json:"title"`
	StoryText string    `json:"storyText"`
	MediaURL  string    `json:"mediaUrl"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditLogResponse 审计日志响应模型
type AuditLogResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entityId"`
	Status    string    `json:"status"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetAuditLogsResponse 审计日志列表响应
type GetAuditLogsResponse struct {
	Logs       []AuditLogResponse `json:"logs"`
	Pagination Pagination         `json:"pagination"`
}

// 转换函数

// ToUserResponse 将用户数据库模型转换为响应模型
func ToUserResponse(user *model.UserModel) UserResponse {
	return UserResponse{
		ID:        user.Id,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}

// ToNgoResponse 将机构数据库模型转换为响应模型
func ToNgoResponse(ngo *model.NgoModel) NgoResponse {
	return NgoResponse{
		ID:             ngo.Id,
		Name:           ngo.Name,
		RegistrationNo: ngo.RegistrationNo,
		Category:       ngo.Category,
		Description:    ngo.Description,
		LogoURL:        ngo.LogoURL,
		ContactEmail:   ngo.ContactEmail,
		Verified:       ngo.Verified,
		Slug:           ngo.Slug,
		CreatedAt:      ngo.CreatedAt,
	}
}

// ToNgoResponseList 将机构数据库模型列表转换为响应模型列表
func ToNgoResponseList(ngos []model.NgoModel) []NgoResponse {
	result := make([]NgoResponse, len(ngos))
	for i, ngo := range ngos {
		result[i] = ToNgoResponse(&ngo)
	}
	return result
}

// ToSettlementResponse 将收款账户数据库模型转换为响应模型
func ToSettlementResponse(account *model.SettlementAccountModel) SettlementResponse {
	return SettlementResponse{
		NgoID:         account.NgoId,
		HolderName:    account.HolderName,
		AccountNumber: account.AccountNumber,
		IFSC:          account.IFSC,
		BankName:      account.BankName,
		BranchName:    account.BranchName,
		UpiID:         account.UpiId,
		QrImageURL:    account.QrImageURL,
	}
}

// ToWishlistResponse 将清单数据库模型转换为响应模型
func ToWishlistResponse(wishlist *model.WishlistModel, items []model.WishlistItemModel) WishlistResponse {
	resp := WishlistResponse{
		ID:           wishlist.Id,
		NgoID:        wishlist.NgoId,
		Title:        wishlist.Title,
		Description:  wishlist.Description,
		TargetAmount: wishlist.TargetAmount,
		RaisedAmount: wishlist.RaisedAmount,
		Status:       string(wishlist.Status),
		CreatedAt:    wishlist.CreatedAt,
	}
	for i := range items {
		resp.Items = append(resp.Items, ToWishlistItemResponse(&items[i]))
	}
	return resp
}

// ToWishlistResponseList 将清单数据库模型列表转换为响应模型列表
func ToWishlistResponseList(wishlists []model.WishlistModel) []WishlistResponse {
	result := make([]WishlistResponse, len(wishlists))
	for i, wishlist := range wishlists {
		result[i] = ToWishlistResponse(&wishlist, nil)
	}
	return result
}

// ToWishlistItemResponse 将清单物品数据库模型转换为响应模型
func ToWishlistItemResponse(item *model.WishlistItemModel) WishlistItemResponse {
	return WishlistItemResponse{
		ID:        item.Id,
		Name:      item.Name,
		Price:     item.Price,
		Qty:       item.Qty,
		FundedQty: item.FundedQty,
		Funded:    item.Funded(),
	}
}

// ToDonationResponse 将捐赠记录数据库模型转换为响应模型
func ToDonationResponse(donation *model.DonationModel) DonationResponse {
	return DonationResponse{
		ID:         donation.Id,
		NgoID:      donation.NgoId,
		WishlistID: donation.WishlistId,
		DonorName:  donation.DonorName,
		Amount:     donation.Amount,
		Qty:        donation.Qty,
		Gateway:    donation.Gateway,
		TxnID:      donation.TxnId,
		Status:     string(donation.Status),
		CreatedAt:  donation.CreatedAt,
	}
}

// ToDonationResponseList 将捐赠记录数据库模型列表转换为响应模型列表
func ToDonationResponseList(donations []model.DonationModel) []DonationResponse {
	result := make([]DonationResponse, len(donations))
	for i, donation := range donations {
		result[i] = ToDonationResponse(&donation)
	}
	return result
}

// ToSessionResponse 将向导会话转换为响应模型
func ToSessionResponse(session *wizard.Session) SessionResponse {
	return SessionResponse{
		ID:         session.Id,
		WishlistID: session.WishlistId,
		Step:       string(session.Step),
		Cart:       session.Cart,
		Total:      session.Total(),
		DonorName:  session.DonorName,
		DonorEmail: session.DonorEmail,
	}
}

// ToStoryResponse 将成功案例数据库模型转换为响应模型
func ToStoryResponse(story *model.SuccessStoryModel) StoryResponse {
	return StoryResponse{
		ID:        story.Id,
		NgoID:     story.NgoId,
		Title:     story.Title,
		StoryText: story.StoryText,
		MediaURL:  story.MediaURL,
		Approved:  story.Approved,
		CreatedAt: story.CreatedAt,
	}
}

// ToStoryResponseList 将成功案例数据库模型列表转换为响应模型列表
func ToStoryResponseList(stories []model.SuccessStoryModel) []StoryResponse {
	result := make([]StoryResponse, len(stories))
	for i, story := range stories {
		result[i] = ToStoryResponse(&story)
	}
	return result
}

// ToAuditLogResponse 将审计日志数据库模型转换为响应模型
func ToAuditLogResponse(entry *model.AuditLogModel) AuditLogResponse {
	return AuditLogResponse{
		ID:        entry.Id,
		UserID:    entry.UserId,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityId,
		Status:    entry.Status,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
}

// ToAuditLogResponseList 将审计日志数据库模型列表转换为响应模型列表
func ToAuditLogResponseList(entries []model.AuditLogModel) []AuditLogResponse {
	result := make([]AuditLogResponse, len(entries))
	for i, entry := range entries {
		result[i] = ToAuditLogResponse(&entry)
	}
	return result
}
