package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blues/gfc/internal/logger"
)

// Payload 邮件中继请求体
type Payload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Result 发送结果
// 客户端从不向调用方抛错，所有失败统一归并为 Success=false
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Client 邮件中继客户端
// 每次Send都是一次独立的全新尝试，客户端内部没有重试也没有去重
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient 创建邮件中继客户端
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Send 发送一封邮件
func (c *Client) Send(payload Payload) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("序列化邮件失败: %v", err)}
	}

	resp, err := c.httpClient.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Warn("Mail relay request failed: %v", err)
		return Result{Success: false, Error: fmt.Sprintf("邮件服务请求失败: %v", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("Mail relay returned status %d: %s", resp.StatusCode, string(respBody))
		return Result{Success: false, Error: fmt.Sprintf("邮件服务返回错误状态 %d", resp.StatusCode)}
	}

	var relayResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &relayResp); err == nil && relayResp.Error != "" {
		return Result{Success: false, Error: relayResp.Error}
	}

	if relayResp.Message == "" {
		relayResp.Message = "邮件已发送"
	}
	return Result{Success: true, Message: relayResp.Message}
}
