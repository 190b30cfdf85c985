package model

import (
	"time"
)

// SuccessStoryModel 成功案例模型
type SuccessStoryModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NgoId     int64  `json:"ngo_id" gorm:"not null;index"`
	Title     string `json:"title" gorm:"not null" binding:"required"`
	StoryText string `json:"story_text" gorm:"type:text"`
	MediaURL  string `json:"media_url"`

	// 审核标记，仅管理员可切换
	Approved bool `json:"approved" gorm:"default:false;index"`
}

// TableName 自定义表名
func (SuccessStoryModel) TableName() string {
	return "success_story"
}
