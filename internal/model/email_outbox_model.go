package model

import (
	"time"
)

// EmailOutboxModel 邮件发件箱模型
// 邮件与业务写入同一事务落库，由调度任务异步投递
type EmailOutboxModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 邮件内容
	To      string `json:"to" gorm:"not null"`
	Subject string `json:"subject" gorm:"not null"`
	Text    string `json:"text" gorm:"type:text"`
	HTML    string `json:"html" gorm:"type:text"`

	// 投递状态
	Status    OutboxStatus `json:"status" gorm:"default:'pending';index"`
	Attempts  int          `json:"attempts" gorm:"default:0"`
	LastError string       `json:"last_error" gorm:"type:text"`
}

// OutboxStatus 发件箱状态
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending" // 待投递
	OutboxStatusSending OutboxStatus = "sending" // 投递中，已被某个投递方认领
	OutboxStatusSent    OutboxStatus = "sent"    // 已投递
	OutboxStatusFailed  OutboxStatus = "failed"  // 投递失败
)

// TableName 自定义表名
func (EmailOutboxModel) TableName() string {
	return "email_outbox"
}
