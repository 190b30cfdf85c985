package task

import (
	"time"

	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/logger"
	"github.com/blues/gfc/internal/wizard"
	"github.com/go-co-op/gocron/v2"
)

// SessionSweepJob 向导会话清理任务
// 被放弃或已完成的会话只存在于进程内存，超过空闲时限后整体移除
type SessionSweepJob struct {
	sessions *wizard.Store
	config   *config.Config
}

// NewSessionSweepJob 创建会话清理任务
func NewSessionSweepJob(sessions *wizard.Store, cfg *config.Config) *SessionSweepJob {
	return &SessionSweepJob{
		sessions: sessions,
		config:   cfg,
	}
}

// GetName 获取任务名称
func (j *SessionSweepJob) GetName() string {
	return "donation_session_sweeper"
}

// GetSchedule 获取调度配置
func (j *SessionSweepJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *SessionSweepJob) Execute() {
	ttl := j.config.Task.SessionTTL
	if ttl <= 0 {
		return
	}

	removed := j.sessions.Sweep(time.Duration(ttl) * time.Minute)
	if removed > 0 {
		logger.Info("Session sweep removed %d idle donation sessions", removed)
	}
}
