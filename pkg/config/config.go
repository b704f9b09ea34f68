// Package config 提供 TOML 配置加载，支持环境变量覆盖
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/wyfcoding/stocktrading/pkg/logger"
)

// Config 基础配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`
	// 数据库配置
	Database DatabaseConfig `mapstructure:"database"`
	// Kafka 配置
	Kafka KafkaConfig `mapstructure:"kafka"`
	// 行情接口配置
	Quote QuoteConfig `mapstructure:"quote"`
	// 消费者配置
	Consumer ConsumerConfig `mapstructure:"consumer"`
	// 日志配置
	Logger logger.Config `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	// 监听地址
	Host string `mapstructure:"host"`
	// 监听端口
	Port int `mapstructure:"port"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动：mysql, postgres
	Driver string `mapstructure:"driver"`
	// 数据源名称
	DSN string `mapstructure:"dsn"`
	// 最大连接数
	MaxOpenConns int `mapstructure:"max_open_conns"`
	// 最大空闲连接数
	MaxIdleConns int `mapstructure:"max_idle_conns"`
	// 连接最大生命周期（秒）
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`
	// 是否启用日志
	LogEnabled bool `mapstructure:"log_enabled"`
	// 慢查询阈值（毫秒）
	SlowQueryThreshold int `mapstructure:"slow_query_threshold"`
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	// Broker 地址列表
	Brokers []string `mapstructure:"brokers"`
	// Consumer Group ID，每个消费者实例在启动时显式指定
	GroupID string `mapstructure:"group_id"`
	// 买入指令 topic
	OrdersTopic string `mapstructure:"orders_topic"`
	// 下单成功通知 topic
	NotificationsTopic string `mapstructure:"notifications_topic"`
	// 死信 topic，留空则关闭死信投递
	DeadLetterTopic string `mapstructure:"dead_letter_topic"`
	// 单次拉取的最大消息数
	BatchSize int `mapstructure:"batch_size"`
	// 拉取批次的等待时间（秒）
	PollTimeout int `mapstructure:"poll_timeout"`
	// 消费者会话超时（秒）
	SessionTimeout int `mapstructure:"session_timeout"`
	// 生产者最大重试次数
	MaxRetries int `mapstructure:"max_retries"`
	// 生产者重试间隔（毫秒）
	RetryBackoff int `mapstructure:"retry_backoff"`
}

// QuoteConfig 行情接口配置
type QuoteConfig struct {
	// 行情接口基础地址
	BaseURL string `mapstructure:"base_url"`
	// 请求超时（秒）
	Timeout int `mapstructure:"timeout"`
}

// ConsumerConfig 消费者配置
type ConsumerConfig struct {
	// 队列消息未携带用户时使用的用户 ID
	DefaultUserID int64 `mapstructure:"default_user_id"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// Prometheus 监听端口
	Port int `mapstructure:"port"`
	// 指标路径
	Path string `mapstructure:"path"`
}

// Load 从 TOML 文件加载配置，支持 APP_ 前缀的环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate 校验必填配置项
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	if c.Quote.BaseURL == "" {
		return fmt.Errorf("quote.base_url is required")
	}
	return nil
}
