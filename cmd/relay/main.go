package main

import (
	"log"
	"net/http"

	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/logger"
	"github.com/blues/gfc/internal/relay"
	"github.com/rs/cors"
)

func main() {
	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Log)

	mux := http.NewServeMux()
	mux.Handle("/send-email", relay.Handler(relay.NewSMTPSender(cfg.Mail)))

	// 前端直接调用，放开跨域
	handler := cors.AllowAll().Handler(mux)

	// 启动中继服务
	log.Printf("Email relay starting on port %s", cfg.Mail.RelayPort)
	if err := http.ListenAndServe(":"+cfg.Mail.RelayPort, handler); err != nil {
		log.Fatalf("Failed to start relay: %v", err)
	}
}
