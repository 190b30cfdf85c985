package logic

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/blues/gfc/internal/model"
	"github.com/blues/gfc/internal/payment"
	"gorm.io/gorm"
)

// ErrNgoNotFound 机构不存在
var ErrNgoNotFound = errors.New("机构不存在")

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// NgoLogic 机构业务逻辑
type NgoLogic struct {
	db *gorm.DB
}

// NewNgoLogic 创建机构业务逻辑
func NewNgoLogic(db *gorm.DB) *NgoLogic {
	return &NgoLogic{db: db}
}

// CreateNgo 创建机构，新机构默认未认证，不进入公开列表
func (n *NgoLogic) CreateNgo(ngo *model.NgoModel) error {
	if err := n.validateNgo(ngo); err != nil {
		return err
	}

	ngo.Verified = false
	ngo.Slug = n.uniqueSlug(ngo.Name)

	if err := n.db.Create(ngo).Error; err != nil {
		return fmt.Errorf("创建机构失败: %w", err)
	}
	return nil
}

// UpdateNgo 更新机构信息，认证状态只能由管理员动作变更
func (n *NgoLogic) UpdateNgo(id int64, updates map[string]interface{}) (*model.NgoModel, error) {
	ngo, err := n.GetNgo(id)
	if err != nil {
		return nil, err
	}

	delete(updates, "verified")
	delete(updates, "slug")
	delete(updates, "owner_id")

	if len(updates) > 0 {
		if err := n.db.Model(ngo).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("更新机构失败: %w", err)
		}
	}
	return ngo, nil
}

// GetNgo 按id取机构
func (n *NgoLogic) GetNgo(id int64) (*model.NgoModel, error) {
	var ngo model.NgoModel
	if err := n.db.First(&ngo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNgoNotFound
		}
		return nil, fmt.Errorf("查询机构失败: %w", err)
	}
	return &ngo, nil
}

// GetNgoBySlug 按slug取机构
func (n *NgoLogic) GetNgoBySlug(slug string) (*model.NgoModel, error) {
	var ngo model.NgoModel
	if err := n.db.Where("slug = ?", slug).First(&ngo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNgoNotFound
		}
		return nil, fmt.Errorf("查询机构失败: %w", err)
	}
	return &ngo, nil
}

// ListVerified 公开机构列表，仅已认证机构，支持类目过滤与名称子串搜索
func (n *NgoLogic) ListVerified(category, search string, page, pageSize int) ([]model.NgoModel, int64, error) {
	query := n.db.Model(&model.NgoModel{}).Where("verified = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询机构列表失败: %w", err)
	}

	var ngos []model.NgoModel
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&ngos).Error; err != nil {
		return nil, 0, fmt.Errorf("查询机构列表失败: %w", err)
	}
	return ngos, total, nil
}

// ListByOwner 机构负责人名下的机构
func (n *NgoLogic) ListByOwner(ownerId int64) ([]model.NgoModel, error) {
	var ngos []model.NgoModel
	if err := n.db.Where("owner_id = ?", ownerId).Order("created_at DESC").Find(&ngos).Error; err != nil {
		return nil, fmt.Errorf("查询机构列表失败: %w", err)
	}
	return ngos, nil
}

// ListUnverified 待认证机构，供管理端审核
func (n *NgoLogic) ListUnverified() ([]model.NgoModel, error) {
	var ngos []model.NgoModel
	if err := n.db.Where("verified = ?", false).Order("created_at ASC").Find(&ngos).Error; err != nil {
		return nil, fmt.Errorf("查询机构列表失败: %w", err)
	}
	return ngos, nil
}

// SetVerified 变更认证状态
func (n *NgoLogic) SetVerified(id int64, verified bool) (*model.NgoModel, error) {
	ngo, err := n.GetNgo(id)
	if err != nil {
		return nil, err
	}

	if err := n.db.Model(ngo).Update("verified", verified).Error; err != nil {
		return nil, fmt.Errorf("更新认证状态失败: %w", err)
	}
	return ngo, nil
}

// SetLogoURL 更新机构logo
func (n *NgoLogic) SetLogoURL(id int64, url string) error {
	if err := n.db.Model(&model.NgoModel{}).Where("id = ?", id).Update("logo_url", url).Error; err != nil {
		return fmt.Errorf("更新logo失败: %w", err)
	}
	return nil
}

// SaveSettlementAccount 保存收款账户，银行与UPI二选一校验
func (n *NgoLogic) SaveSettlementAccount(account *model.SettlementAccountModel) error {
	if _, err := n.GetNgo(account.NgoId); err != nil {
		return err
	}
	if err := payment.ValidateSettlementAccount(account); err != nil {
		return err
	}

	var existing model.SettlementAccountModel
	err := n.db.Where("ngo_id = ?", account.NgoId).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("查询收款账户失败: %w", err)
		}
		if err := n.db.Create(account).Error; err != nil {
			return fmt.Errorf("保存收款账户失败: %w", err)
		}
		return nil
	}

	account.Id = existing.Id
	if err := n.db.Save(account).Error; err != nil {
		return fmt.Errorf("保存收款账户失败: %w", err)
	}
	return nil
}

// GetSettlementAccount 取机构收款账户
func (n *NgoLogic) GetSettlementAccount(ngoId int64) (*model.SettlementAccountModel, error) {
	var account model.SettlementAccountModel
	if err := n.db.Where("ngo_id = ?", ngoId).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("机构未配置收款账户")
		}
		return nil, fmt.Errorf("查询收款账户失败: %w", err)
	}
	return &account, nil
}

// validateNgo 校验机构数据
func (n *NgoLogic) validateNgo(ngo *model.NgoModel) error {
	if ngo.OwnerId == 0 {
		return errors.New("机构负责人不能为空")
	}
	if ngo.Name == "" {
		return errors.New("机构名称不能为空")
	}
	if ngo.RegistrationNo == "" {
		return errors.New("注册编号不能为空")
	}
	return nil
}

// uniqueSlug 由名称生成唯一slug，冲突时追加序号
func (n *NgoLogic) uniqueSlug(name string) string {
	base := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "ngo"
	}

	slug := base
	for i := 2; ; i++ {
		var count int64
		n.db.Model(&model.NgoModel{}).Where("slug = ?", slug).Count(&count)
		if count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
