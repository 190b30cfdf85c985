package task

import (
	"time"

	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/logger"
	"github.com/blues/gfc/internal/mailer"
	"github.com/go-co-op/gocron/v2"
)

// OutboxSweepJob 发件箱扫描任务
// 即时投递失败或进程重启遗留的pending邮件由本任务兜底重投
type OutboxSweepJob struct {
	dispatcher *mailer.Dispatcher
	config     *config.Config
}

// NewOutboxSweepJob 创建发件箱扫描任务
func NewOutboxSweepJob(dispatcher *mailer.Dispatcher, cfg *config.Config) *OutboxSweepJob {
	return &OutboxSweepJob{
		dispatcher: dispatcher,
		config:     cfg,
	}
}

// GetName 获取任务名称
func (j *OutboxSweepJob) GetName() string {
	return "email_outbox_sweeper"
}

// GetSchedule 获取调度配置
func (j *OutboxSweepJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *OutboxSweepJob) Execute() {
	count, err := j.dispatcher.SweepPending()
	if err != nil {
		logger.Error("Outbox sweep failed: %v", err)
		return
	}
	if count > 0 {
		logger.Info("Outbox sweep dispatched %d pending emails", count)
	}
}
