package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务配置
// 读取顺序：默认值 < config.yaml < 环境变量
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	System   SystemConfig
	Session  SessionConfig
	Template TemplateConfig
	Limit    LimitConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	DSN      string
	LogLevel string // silent / error / warn / info
}

type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
	Issuer    string
}

// SystemConfig 系统操作人 (用于订单创建审计)，启动时解析一次
type SystemConfig struct {
	Username string
	Password string // 仅首次创建时使用
}

type SessionConfig struct {
	IdleTimeout time.Duration
	ReapSpec    string // cron 表达式
}

type TemplateConfig struct {
	ApplyConcurrency int
}

// LimitConfig 冷却限流，0 表示关闭
type LimitConfig struct {
	OrderSubmitCooldown   time.Duration // 同一餐桌同一客户端连续下单间隔
	TemplateApplyCooldown time.Duration // 同一模板连续下发间隔
}

type LogConfig struct {
	Level       string
	Development bool
}

// Load 加载配置
// path 为空时只读取环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			DSN:      v.GetString("database.dsn"),
			LogLevel: v.GetString("database.log_level"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt.secret"),
			AccessTTL: v.GetDuration("jwt.access_ttl"),
			Issuer:    v.GetString("jwt.issuer"),
		},
		System: SystemConfig{
			Username: v.GetString("system.username"),
			Password: v.GetString("system.password"),
		},
		Session: SessionConfig{
			IdleTimeout: v.GetDuration("session.idle_timeout"),
			ReapSpec:    v.GetString("session.reap_spec"),
		},
		Template: TemplateConfig{
			ApplyConcurrency: v.GetInt("template.apply_concurrency"),
		},
		Limit: LimitConfig{
			OrderSubmitCooldown:   v.GetDuration("limit.order_submit_cooldown"),
			TemplateApplyCooldown: v.GetDuration("limit.template_apply_cooldown"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("DATABASE_DSN 未配置")
	}
	if c.System.Username == "" {
		return errors.New("SYSTEM_USERNAME 未配置")
	}
	if c.Template.ApplyConcurrency <= 0 {
		c.Template.ApplyConcurrency = 1
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("jwt.secret", "foodcourt-secret-key-change-in-production")
	v.SetDefault("jwt.access_ttl", 2*time.Hour)
	v.SetDefault("jwt.issuer", "foodcourt")
	v.SetDefault("system.username", "system")
	v.SetDefault("session.idle_timeout", 2*time.Hour)
	v.SetDefault("session.reap_spec", "0 */10 * * * *")
	v.SetDefault("template.apply_concurrency", 8)
	v.SetDefault("limit.order_submit_cooldown", 2*time.Second)
	v.SetDefault("limit.template_apply_cooldown", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// 兼容扁平的环境变量名
func bindEnv(v *viper.Viper) {
	pairs := map[string]string{
		"server.port":                   "SERVER_PORT",
		"database.dsn":                  "DATABASE_DSN",
		"database.log_level":            "DB_LOG_LEVEL",
		"jwt.secret":                    "JWT_SECRET",
		"jwt.access_ttl":                "JWT_ACCESS_TTL",
		"system.username":               "SYSTEM_USERNAME",
		"system.password":               "SYSTEM_PASSWORD",
		"session.idle_timeout":          "SESSION_IDLE_TIMEOUT",
		"session.reap_spec":             "SESSION_REAP_SPEC",
		"template.apply_concurrency":    "TEMPLATE_APPLY_CONCURRENCY",
		"limit.order_submit_cooldown":   "ORDER_SUBMIT_COOLDOWN",
		"limit.template_apply_cooldown": "TEMPLATE_APPLY_COOLDOWN",
		"log.level":                     "LOG_LEVEL",
		"log.development":               "LOG_DEVELOPMENT",
	}
	for key, env := range pairs {
		_ = v.BindEnv(key, env)
	}
}
