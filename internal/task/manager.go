package task

import (
	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/logger"
	"github.com/blues/gfc/internal/mailer"
	"github.com/blues/gfc/internal/wizard"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Job 调度任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler  gocron.Scheduler
	db         *gorm.DB
	dispatcher *mailer.Dispatcher
	sessions   *wizard.Store
	config     *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, dispatcher *mailer.Dispatcher, sessions *wizard.Store, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler:  s,
		db:         db,
		dispatcher: dispatcher,
		sessions:   sessions,
		config:     cfg,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, dispatcher *mailer.Dispatcher, sessions *wizard.Store, cfg *config.Config) *Manager {
	manager := NewManager(db, dispatcher, sessions, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	m.register(NewOutboxSweepJob(m.dispatcher, m.config))
	m.register(NewAuditRetentionJob(m.db, m.config))
	m.register(NewSessionSweepJob(m.sessions, m.config))
}

// register 注册单个任务，单例模式避免重入
func (m *Manager) register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
