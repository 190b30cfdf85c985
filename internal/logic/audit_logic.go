package logic

import (
	"fmt"
	"time"

	"github.com/blues/gfc/internal/logger"
	"github.com/blues/gfc/internal/model"
	"gorm.io/gorm"
)

// AuditLogic 审计日志业务逻辑，仅追加写入
type AuditLogic struct {
	db *gorm.DB
}

// NewAuditLogic 创建审计日志业务逻辑
func NewAuditLogic(db *gorm.DB) *AuditLogic {
	return &AuditLogic{db: db}
}

// Record 写入一条审计记录
// 审计失败只记日志，不把失败冒泡给触发它的管理动作
func (a *AuditLogic) Record(userId int64, action, entity string, entityId int64, status, details string) {
	entry := &model.AuditLogModel{
		UserId:   userId,
		Action:   action,
		Entity:   entity,
		EntityId: entityId,
		Status:   status,
		Details:  details,
	}
	if err := a.db.Create(entry).Error; err != nil {
		logger.Error("Failed to write audit log (action=%s entity=%s): %v", action, entity, err)
	}
}

// List 审计记录分页查询，可按动作过滤
func (a *AuditLogic) List(action string, page, pageSize int) ([]model.AuditLogModel, int64, error) {
	query := a.db.Model(&model.AuditLogModel{})
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询审计日志失败: %w", err)
	}

	var entries []model.AuditLogModel
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("查询审计日志失败: %w", err)
	}
	return entries, total, nil
}

// PruneBefore 清理指定时间之前的审计记录，返回删除行数
func (a *AuditLogic) PruneBefore(cutoff time.Time) (int64, error) {
	result := a.db.Where("created_at < ?", cutoff).Delete(&model.AuditLogModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("清理审计日志失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}
