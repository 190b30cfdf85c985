package task

import (
	"time"

	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/logger"
	"github.com/blues/gfc/internal/logic"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// AuditRetentionJob 审计日志保留任务，超期记录按天清理
type AuditRetentionJob struct {
	auditLogic *logic.AuditLogic
	config     *config.Config
}

// NewAuditRetentionJob 创建审计日志保留任务
func NewAuditRetentionJob(db *gorm.DB, cfg *config.Config) *AuditRetentionJob {
	return &AuditRetentionJob{
		auditLogic: logic.NewAuditLogic(db),
		config:     cfg,
	}
}

// GetName 获取任务名称
func (j *AuditRetentionJob) GetName() string {
	return "audit_log_retention"
}

// GetSchedule 获取调度配置
func (j *AuditRetentionJob) GetSchedule() gocron.JobDefinition {
	return gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0)))
}

// Execute 执行任务
func (j *AuditRetentionJob) Execute() {
	retention := j.config.Task.AuditRetention
	if retention <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retention)
	deleted, err := j.auditLogic.PruneBefore(cutoff)
	if err != nil {
		logger.Error("Audit retention job failed: %v", err)
		return
	}
	if deleted > 0 {
		logger.Info("Audit retention job removed %d entries older than %s",
			deleted, cutoff.Format("2006-01-02"))
	}
}
