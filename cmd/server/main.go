package main

import (
	"log"

	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/database"
	"github.com/blues/gfc/internal/logger"
	"github.com/blues/gfc/internal/mailer"
	"github.com/blues/gfc/internal/payment"
	"github.com/blues/gfc/internal/router"
	"github.com/blues/gfc/internal/storage"
	"github.com/blues/gfc/internal/task"
	"github.com/blues/gfc/internal/wizard"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Log)

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化对象存储
	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// 初始化邮件投递器
	mailClient := mailer.NewClient(cfg.Mail.RelayURL)
	dispatcher, err := mailer.NewDispatcher(db, mailClient, cfg.Task.OutboxWorkers, cfg.Task.MaxAttempts)
	if err != nil {
		log.Fatalf("Failed to initialize mail dispatcher: %v", err)
	}
	defer dispatcher.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	sessions := wizard.NewStore()
	r := router.Setup(router.Deps{
		DB:         db,
		Config:     cfg,
		Store:      store,
		Dispatcher: dispatcher,
		Gateways:   payment.NewRegistry(cfg.Gateway),
		Sessions:   sessions,
	})

	// 启动定时任务
	manager := task.Start(db, dispatcher, sessions, cfg)
	defer manager.Stop()

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
