package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"

	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/logger"
)

// Sender 邮件投递实现，便于测试替换
type Sender interface {
	Send(to, subject, text, html string) error
}

// SMTPSender 通过SMTP投递邮件
type SMTPSender struct {
	cfg config.MailConfig
}

// NewSMTPSender 创建SMTP投递器
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send 发送一封邮件，优先HTML正文
func (s *SMTPSender) Send(to, subject, text, html string) error {
	body := text
	contentType := "text/plain; charset=UTF-8"
	if html != "" {
		body = html
		contentType = "text/html; charset=UTF-8"
	}

	msg := []byte("From: " + s.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: " + contentType + "\r\n" +
		"\r\n" + body + "\r\n")

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// Handler /send-email 处理器
// 只接受POST和预检OPTIONS，其余方法一律405
func Handler(sender Sender) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
			return
		case http.MethodPost:
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
			return
		}

		var req struct {
			To      string `json:"to"`
			Subject string `json:"subject"`
			Text    string `json:"text"`
			HTML    string `json:"html"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
			return
		}
		if req.To == "" || req.Subject == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "to and subject are required"})
			return
		}

		if err := sender.Send(req.To, req.Subject, req.Text, req.HTML); err != nil {
			logger.Error("Relay failed to send email to %s: %v", req.To, err)
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		logger.Info("Relay sent email to %s", req.To)
		json.NewEncoder(w).Encode(map[string]string{"message": "email sent"})
	})
}
