package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/mailer"
	"github.com/blues/gfc/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 认证相关错误
var (
	ErrEmailTaken         = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrResetTokenInvalid  = errors.New("重置链接无效或已过期")
)

// UserLogic 用户业务逻辑
type UserLogic struct {
	db         *gorm.DB
	dispatcher *mailer.Dispatcher
}

// NewUserLogic 创建用户业务逻辑
func NewUserLogic(db *gorm.DB, dispatcher *mailer.Dispatcher) *UserLogic {
	return &UserLogic{db: db, dispatcher: dispatcher}
}

// Signup 注册用户
// 凭证与资料同表落库，角色字符串在入口处解析为封闭枚举
func (u *UserLogic) Signup(name, email, password, role string) (*model.UserModel, error) {
	if name == "" || email == "" {
		return nil, errors.New("姓名和邮箱不能为空")
	}
	if len(password) < 8 {
		return nil, errors.New("密码长度至少8位")
	}

	parsedRole, err := auth.ParseRole(role)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := u.db.Model(&model.UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.UserModel{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(parsedRole),
	}
	if err := u.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	return user, nil
}

// Authenticate 校验登录凭证
func (u *UserLogic) Authenticate(email, password string) (*model.UserModel, error) {
	var user model.UserModel
	if err := u.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetUser 按id取用户资料，每次调用都是新鲜读取
func (u *UserLogic) GetUser(id int64) (*model.UserModel, error) {
	var user model.UserModel
	if err := u.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// UpdateProfile 更新资料
func (u *UserLogic) UpdateProfile(id int64, name, avatarURL string) (*model.UserModel, error) {
	user, err := u.GetUser(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if avatarURL != "" {
		updates["avatar_url"] = avatarURL
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := u.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新资料失败: %w", err)
	}
	return user, nil
}

// RequestPasswordReset 签发重置token并通过发件箱寄送重置邮件
// 邮箱不存在时静默成功，避免泄露注册状态
func (u *UserLogic) RequestPasswordReset(email, resetBaseURL string) error {
	var user model.UserModel
	if err := u.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("查询用户失败: %w", err)
	}

	token := uuid.NewString()
	expiry := time.Now().Add(1 * time.Hour)

	var outboxId int64
	err := u.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"reset_token":        token,
			"reset_token_expiry": expiry,
		}).Error; err != nil {
			return err
		}

		email := &model.EmailOutboxModel{
			To:      user.Email,
			Subject: "重置密码",
			Text:    fmt.Sprintf("您好 %s，请访问以下链接重置密码：%s?token=%s（1小时内有效）", user.Name, resetBaseURL, token),
			HTML:    fmt.Sprintf(`<p>您好 %s，</p><p><a href="%s?token=%s">点击这里重置密码</a>（1小时内有效）</p>`, user.Name, resetBaseURL, token),
		}
		if err := u.dispatcher.Enqueue(tx, email); err != nil {
			return err
		}
		outboxId = email.Id
		return nil
	})
	if err != nil {
		return fmt.Errorf("发起密码重置失败: %w", err)
	}

	u.dispatcher.DispatchAsync(outboxId)
	return nil
}

// ResetPassword 凭token设置新密码
func (u *UserLogic) ResetPassword(token, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("密码长度至少8位")
	}

	var user model.UserModel
	if err := u.db.Where("reset_token = ? AND reset_token != ''", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("查询用户失败: %w", err)
	}

	if time.Now().After(user.ResetTokenExpiry) {
		return ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}

	if err := u.db.Model(&user).Updates(map[string]interface{}{
		"password_hash":      string(hash),
		"reset_token":        "",
		"reset_token_expiry": time.Time{},
	}).Error; err != nil {
		return fmt.Errorf("重置密码失败: %w", err)
	}
	return nil
}
