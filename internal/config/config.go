package config

import (
	"github.com/blues/gfc/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`   // JWT签名密钥
	TokenExpiry int    `mapstructure:"token_expiry"` // token有效期（小时）
}

// MailConfig 邮件中继配置
type MailConfig struct {
	RelayURL  string `mapstructure:"relay_url"`  // 邮件中继端点
	RelayPort string `mapstructure:"relay_port"` // relay进程监听端口
	From      string `mapstructure:"from"`       // 发件人地址
	SMTPHost  string `mapstructure:"smtp_host"`  // relay进程使用
	SMTPPort  string `mapstructure:"smtp_port"`
	SMTPUser  string `mapstructure:"smtp_user"`
	SMTPPass  string `mapstructure:"smtp_pass"`
}

// GatewayConfig 支付网关配置
// 三个网关均为预留的可发布密钥，当前仅demo网关参与流程
type GatewayConfig struct {
	RazorpayKey string `mapstructure:"razorpay_key"`
	StripeKey   string `mapstructure:"stripe_key"`
	PaytmKey    string `mapstructure:"paytm_key"`
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	BaseDir   string `mapstructure:"base_dir"`   // 文件落盘根目录
	PublicURL string `mapstructure:"public_url"` // 公开访问URL前缀
}

type TaskConfig struct {
	Interval       int `mapstructure:"interval"`        // 秒
	OutboxWorkers  int `mapstructure:"outbox_workers"`  // 邮件投递协程数
	MaxAttempts    int `mapstructure:"max_attempts"`    // 单封邮件最大投递次数
	AuditRetention int `mapstructure:"audit_retention"` // 审计日志保留天数
	SessionTTL     int `mapstructure:"session_ttl"`     // 向导会话空闲保留分钟数
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

const placeholderKey = "pk_test_placeholder"

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/gfc")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "giftforcause")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	viper.SetDefault("auth.token_expiry", 24)
	viper.SetDefault("mail.relay_url", "http://localhost:8090/send-email")
	viper.SetDefault("mail.relay_port", "8090")
	viper.SetDefault("mail.from", "noreply@giftforcause.org")
	viper.SetDefault("mail.smtp_host", "localhost")
	viper.SetDefault("mail.smtp_port", "587")
	viper.SetDefault("gateway.razorpay_key", placeholderKey)
	viper.SetDefault("gateway.stripe_key", placeholderKey)
	viper.SetDefault("gateway.paytm_key", placeholderKey)
	viper.SetDefault("storage.base_dir", "data/uploads")
	viper.SetDefault("storage.public_url", "http://localhost:8080/uploads")
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("task.outbox_workers", 4)
	viper.SetDefault("task.max_attempts", 5)
	viper.SetDefault("task.audit_retention", 90)
	viper.SetDefault("task.session_ttl", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	config.warnPlaceholders()

	return &config
}

// warnPlaceholders 占位凭证仅告警不中断启动，后续远程调用自行失败
func (c *Config) warnPlaceholders() {
	if c.Gateway.RazorpayKey == placeholderKey {
		logger.Warn("Gateway config: razorpay key is a placeholder, payments via razorpay will fail")
	}
	if c.Gateway.StripeKey == placeholderKey {
		logger.Warn("Gateway config: stripe key is a placeholder, payments via stripe will fail")
	}
	if c.Gateway.PaytmKey == placeholderKey {
		logger.Warn("Gateway config: paytm key is a placeholder, payments via paytm will fail")
	}
	if c.Mail.SMTPUser == "" {
		logger.Warn("Mail config: smtp credentials missing, relay delivery will fail")
	}
}
