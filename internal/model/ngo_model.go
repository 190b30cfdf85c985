package model

import (
	"time"
)

// NgoModel 公益机构模型
type NgoModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	OwnerId        int64  `json:"owner_id" gorm:"not null;index"`
	Name           string `json:"name" gorm:"not null" binding:"required"`
	RegistrationNo string `json:"registration_no" gorm:"not null;uniqueIndex" binding:"required"`
	Category       string `json:"category" gorm:"index"`
	Description    string `json:"description" gorm:"type:text"`
	LogoURL        string `json:"logo_url"`
	ContactEmail   string `json:"contact_email"`

	// 公开展示
	Verified bool   `json:"verified" gorm:"default:false;index"`
	Slug     string `json:"slug" gorm:"uniqueIndex"`
}

// TableName 自定义表名
func (NgoModel) TableName() string {
	return "ngo"
}

// SettlementAccountModel 机构收款账户模型
// 银行账户字段与UPI字段互斥，二者必须恰好配置一组
type SettlementAccountModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NgoId int64 `json:"ngo_id" gorm:"not null;uniqueIndex"`

	// 银行账户信息
	HolderName    string `json:"holder_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	BankName      string `json:"bank_name"`
	BranchName    string `json:"branch_name"`

	// UPI信息
	UpiId      string `json:"upi_id"`
	QrImageURL string `json:"qr_image_url"`
}

// TableName 自定义表名
func (SettlementAccountModel) TableName() string {
	return "settlement_account"
}

// HasBankDetails 是否配置了完整银行账户
func (s *SettlementAccountModel) HasBankDetails() bool {
	return s.HolderName != "" && s.AccountNumber != "" && s.IFSC != "" &&
		s.BankName != "" && s.BranchName != ""
}

// HasUpiDetails 是否配置了完整UPI信息
func (s *SettlementAccountModel) HasUpiDetails() bool {
	return s.UpiId != "" && s.QrImageURL != ""
}
