package model

import (
	"time"
)

// UserModel 用户模型
type UserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Name      string `json:"name" gorm:"not null" binding:"required"`
	Email     string `json:"email" gorm:"not null;uniqueIndex" binding:"required,email"`
	AvatarURL string `json:"avatar_url"`

	// 凭证信息
	PasswordHash string `json:"-" gorm:"not null"`

	// 角色
	Role string `json:"role" gorm:"not null;default:'donor'"`

	// 密码重置
	ResetToken       string    `json:"-" gorm:"index"`
	ResetTokenExpiry time.Time `json:"-"`
}

// TableName 自定义表名
func (UserModel) TableName() string {
	return "user_profile"
}
