package logic

import (
	"errors"
	"fmt"

	"github.com/blues/gfc/internal/model"
	"gorm.io/gorm"
)

// ErrStoryNotFound 成功案例不存在
var ErrStoryNotFound = errors.New("成功案例不存在")

// StoryLogic 成功案例业务逻辑
type StoryLogic struct {
	db *gorm.DB
}

// NewStoryLogic 创建成功案例业务逻辑
func NewStoryLogic(db *gorm.DB) *StoryLogic {
	return &StoryLogic{db: db}
}

// CreateStory 机构提交案例，默认未审核
func (s *StoryLogic) CreateStory(story *model.SuccessStoryModel) error {
	if story.NgoId == 0 {
		return errors.New("所属机构不能为空")
	}
	if story.Title == "" {
		return errors.New("案例标题不能为空")
	}

	story.Approved = false
	if err := s.db.Create(story).Error; err != nil {
		return fmt.Errorf("创建成功案例失败: %w", err)
	}
	return nil
}

// GetStory 按id取案例
func (s *StoryLogic) GetStory(id int64) (*model.SuccessStoryModel, error) {
	var story model.SuccessStoryModel
	if err := s.db.First(&story, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("查询成功案例失败: %w", err)
	}
	return &story, nil
}

// SetApproved 管理员切换审核标记
func (s *StoryLogic) SetApproved(id int64, approved bool) (*model.SuccessStoryModel, error) {
	story, err := s.GetStory(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(story).Update("approved", approved).Error; err != nil {
		return nil, fmt.Errorf("更新审核状态失败: %w", err)
	}
	story.Approved = approved
	return story, nil
}

// ListApproved 公开案例列表
func (s *StoryLogic) ListApproved(ngoId int64, page, pageSize int) ([]model.SuccessStoryModel, int64, error) {
	query := s.db.Model(&model.SuccessStoryModel{}).Where("approved = ?", true)
	if ngoId > 0 {
		query = query.Where("ngo_id = ?", ngoId)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询成功案例失败: %w", err)
	}

	var stories []model.SuccessStoryModel
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&stories).Error; err != nil {
		return nil, 0, fmt.Errorf("查询成功案例失败: %w", err)
	}
	return stories, total, nil
}

// ListPendingApproval 待审核案例，供管理端
func (s *StoryLogic) ListPendingApproval() ([]model.SuccessStoryModel, error) {
	var stories []model.SuccessStoryModel
	if err := s.db.Where("approved = ?", false).Order("created_at ASC").Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("查询成功案例失败: %w", err)
	}
	return stories, nil
}
