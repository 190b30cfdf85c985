package model

import (
	"time"
)

// WishlistModel 愿望清单模型
type WishlistModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	NgoId       int64  `json:"ngo_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`

	// 筹款信息
	TargetAmount int64 `json:"target_amount" gorm:"not null" binding:"required,min=0"`
	RaisedAmount int64 `json:"raised_amount" gorm:"default:0"`

	// 状态
	Status WishlistStatus `json:"status" gorm:"default:'draft';index"`
}

// WishlistStatus 清单状态
type WishlistStatus string

const (
	WishlistStatusDraft     WishlistStatus = "draft"     // 草稿
	WishlistStatusPending   WishlistStatus = "pending"   // 待审核
	WishlistStatusPublished WishlistStatus = "published" // 已发布
	WishlistStatusCompleted WishlistStatus = "completed" // 已完成
)

// TableName 自定义表名
func (WishlistModel) TableName() string {
	return "wishlist"
}

// WishlistItemModel 愿望清单物品模型
type WishlistItemModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WishlistId int64  `json:"wishlist_id" gorm:"not null;index"`
	Name       string `json:"name" gorm:"not null" binding:"required"`
	Price      int64  `json:"price" gorm:"not null" binding:"required,min=1"`
	Qty        int    `json:"qty" gorm:"not null;default:1"`
	FundedQty  int    `json:"funded_qty" gorm:"default:0"`
}

// TableName 自定义表名
func (WishlistItemModel) TableName() string {
	return "wishlist_item"
}

// Funded 物品是否已全部认捐
func (w *WishlistItemModel) Funded() bool {
	return w.FundedQty >= w.Qty
}
