package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// TCPConfig 终端接入网关配置
type TCPConfig struct {
	Addr           string        `mapstructure:"addr"`
	MaxConnections int           `mapstructure:"maxConnections"`
	KeepaliveIdle  time.Duration `mapstructure:"keepaliveIdle"`
	KeepaliveIntvl time.Duration `mapstructure:"keepaliveInterval"`
	KeepaliveCount int           `mapstructure:"keepaliveCount"`
}

// ControlConfig 运维控制通道配置
type ControlConfig struct {
	Path string `mapstructure:"path"`
}

// RegistryConfig 终端数据库配置
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// HTTPConfig HTTP 管理接口配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// Config 顶层配置结构
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	TCP      TCPConfig      `mapstructure:"tcp"`
	Control  ControlConfig  `mapstructure:"control"`
	Registry RegistryConfig `mapstructure:"registry"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Load 从 YAML 文件与环境变量加载配置。path 为空时回退到
// configs/example.yaml，允许仅靠默认值与环境变量启动。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// 环境变量覆盖：前缀 JT808_，点号替换为下划线
	v.SetEnvPrefix("JT808")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if fmt.Sprintf("%T", err) != fmt.Sprintf("%T", notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "jt808-server")
	v.SetDefault("app.env", "dev")

	v.SetDefault("tcp.addr", ":8193")
	v.SetDefault("tcp.maxConnections", 512)
	v.SetDefault("tcp.keepaliveIdle", "30s")
	v.SetDefault("tcp.keepaliveInterval", "5s")
	v.SetDefault("tcp.keepaliveCount", 3)

	v.SetDefault("control.path", "/tmp/jt808cmd.sock")
	v.SetDefault("registry.path", "devices.list")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/jt808-server.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}
