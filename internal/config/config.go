// Package config 加载 idgen 服务配置：默认值 < 配置文件 < 环境变量 < 命令行参数
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
	"katydid-common-idgen/pkg/logger"
)

// 配置键，同时也是环境变量名
const (
	KeyWorkerID               = "WORKER_ID"
	KeyDatacenterID           = "DATACENTER_ID"
	KeyClockBackwardStrategy  = "CLOCK_BACKWARD_STRATEGY"
	KeyClockBackwardTolerance = "CLOCK_BACKWARD_TOLERANCE_MS"
	KeyEnableMetrics          = "ENABLE_METRICS"
	KeyHTTPAddr               = "HTTP_ADDR"
	KeyAuthJWTSecret          = "AUTH_JWT_SECRET"
	KeyLogLevel               = "LOG_LEVEL"
	KeyLogFormat              = "LOG_FORMAT"
	KeyLogFile                = "LOG_FILE"
	KeyLogMaxSizeMB           = "LOG_MAX_SIZE_MB"
	KeyLogMaxBackups          = "LOG_MAX_BACKUPS"
	KeyLogMaxAgeDays          = "LOG_MAX_AGE_DAYS"
	KeyLogCompress            = "LOG_COMPRESS"
)

// flagKeys 命令行参数名到配置键的映射
var flagKeys = map[string]string{
	"worker-id":               KeyWorkerID,
	"datacenter-id":           KeyDatacenterID,
	"clock-backward-strategy": KeyClockBackwardStrategy,
	"enable-metrics":          KeyEnableMetrics,
	"http-addr":               KeyHTTPAddr,
	"log-level":               KeyLogLevel,
	"log-format":              KeyLogFormat,
	"log-file":                KeyLogFile,
}

// Config 服务配置
type Config struct {
	WorkerID                 int64  `mapstructure:"WORKER_ID"`
	DatacenterID             int64  `mapstructure:"DATACENTER_ID"`
	ClockBackwardStrategy    string `mapstructure:"CLOCK_BACKWARD_STRATEGY"`
	ClockBackwardToleranceMs int64  `mapstructure:"CLOCK_BACKWARD_TOLERANCE_MS"`
	EnableMetrics            bool   `mapstructure:"ENABLE_METRICS"`

	HTTPAddr      string `mapstructure:"HTTP_ADDR"`
	AuthJWTSecret string `mapstructure:"AUTH_JWT_SECRET"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	LogFile       string `mapstructure:"LOG_FILE"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `mapstructure:"LOG_MAX_AGE_DAYS"`
	LogCompress   bool   `mapstructure:"LOG_COMPRESS"`
}

func setDefaults(v *viper.Viper) {
	logDefaults := logger.Default()

	v.SetDefault(KeyWorkerID, 0)
	v.SetDefault(KeyDatacenterID, 0)
	v.SetDefault(KeyClockBackwardStrategy, core.StrategyUseLastTimestamp.String())
	v.SetDefault(KeyClockBackwardTolerance, 5)
	v.SetDefault(KeyEnableMetrics, true)
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyAuthJWTSecret, "")
	v.SetDefault(KeyLogLevel, logDefaults.Level)
	v.SetDefault(KeyLogFormat, logDefaults.Format)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSizeMB, logDefaults.MaxSizeMB)
	v.SetDefault(KeyLogMaxBackups, logDefaults.MaxBackups)
	v.SetDefault(KeyLogMaxAgeDays, logDefaults.MaxAgeDays)
	v.SetDefault(KeyLogCompress, false)
}

// Load 加载配置
// path 为可选的配置文件（yaml/json/toml，按扩展名识别）；flags 中已注册且被显式设置的参数优先级最高
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
// 生成器身份与回拨容忍度的范围检查由 snowflake.Config 负责，这里先行执行以便启动时尽早失败
func (c *Config) Validate() error {
	if _, err := core.ParseClockBackwardStrategy(c.ClockBackwardStrategy); err != nil {
		return fmt.Errorf("%s: %w", KeyClockBackwardStrategy, err)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR cannot be empty")
	}
	sf, err := c.SnowflakeConfig(nil)
	if err != nil {
		return err
	}
	return sf.Validate()
}

// SnowflakeConfig 转换为生成器配置
func (c *Config) SnowflakeConfig(log *zap.Logger) (*snowflake.Config, error) {
	strategy, err := core.ParseClockBackwardStrategy(c.ClockBackwardStrategy)
	if err != nil {
		return nil, err
	}
	// 配置来源带默认值 5，读到的 0 是显式设置的零容忍
	tolerance := c.ClockBackwardToleranceMs
	if tolerance == 0 {
		tolerance = snowflake.NoClockBackwardTolerance
	}
	return &snowflake.Config{
		WorkerID:               c.WorkerID,
		DatacenterID:           c.DatacenterID,
		ClockBackwardStrategy:  strategy,
		ClockBackwardTolerance: tolerance,
		EnableMetrics:          c.EnableMetrics,
		Logger:                 log,
	}, nil
}

// LoggerConfig 转换为日志配置
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompress,
	}
}
