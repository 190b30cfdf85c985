package model

import (
	"time"
)

// AuditLogModel 审计日志模型，仅追加不修改
type AuditLogModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	UserId   int64  `json:"user_id" gorm:"not null;index"`
	Action   string `json:"action" gorm:"not null;index"`
	Entity   string `json:"entity" gorm:"not null"`
	EntityId int64  `json:"entity_id"`
	Status   string `json:"status" gorm:"not null"`
	Details  string `json:"details" gorm:"type:text"`
}

// 审计动作
const (
	AuditActionVerifyNgo       = "verify_ngo"
	AuditActionUnverifyNgo     = "unverify_ngo"
	AuditActionPublishWishlist = "publish_wishlist"
	AuditActionRejectWishlist  = "reject_wishlist"
	AuditActionApproveStory    = "approve_story"
	AuditActionRejectStory     = "reject_story"
	AuditActionLogout          = "logout"
)

// 审计结果
const (
	AuditStatusSuccess = "success"
	AuditStatusFailed  = "failed"
)

// TableName 自定义表名
func (AuditLogModel) TableName() string {
	return "audit_log"
}
