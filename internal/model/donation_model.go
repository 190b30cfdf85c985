package model

import (
	"time"
)

// DonationModel 捐赠记录模型
type DonationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联信息
	DonorId        int64 `json:"donor_id" gorm:"index"`
	NgoId          int64 `json:"ngo_id" gorm:"not null;index"`
	WishlistId     int64 `json:"wishlist_id" gorm:"not null;index"`
	WishlistItemId int64 `json:"wishlist_item_id" gorm:"index"`

	// 捐赠人信息（游客捐赠时无DonorId，仅保留展示信息）
	DonorName  string `json:"donor_name" gorm:"not null"`
	DonorEmail string `json:"donor_email" gorm:"not null"`

	// 支付信息
	Amount  int64  `json:"amount" gorm:"not null"`
	Qty     int    `json:"qty" gorm:"not null;default:1"`
	Gateway string `json:"gateway" gorm:"not null;index"`
	TxnId   string `json:"txn_id" gorm:"uniqueIndex"`

	// 状态
	Status DonationStatus `json:"status" gorm:"default:'pending';index"`
}

// DonationStatus 捐赠状态
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"   // 待确认
	DonationStatusCompleted DonationStatus = "completed" // 已完成
	DonationStatusFailed    DonationStatus = "failed"    // 失败
	DonationStatusRefunded  DonationStatus = "refunded"  // 已退款
)

// TableName 自定义表名
func (DonationModel) TableName() string {
	return "donation"
}
