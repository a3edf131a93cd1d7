// Package logger 构建进程级 zap 日志记录器，支持 lumberjack 文件滚动
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config 日志配置
type Config struct {
	// Level 日志级别：debug|info|warn|error
	Level string

	// Format 输出格式：console|json
	Format string

	// File 日志文件路径，为空时只输出到标准错误
	File string

	// MaxSizeMB 单个日志文件最大尺寸（MB），超过后滚动
	MaxSizeMB int

	// MaxBackups 保留的旧日志文件数量
	MaxBackups int

	// MaxAgeDays 旧日志文件保留天数
	MaxAgeDays int

	// Compress 是否gzip压缩滚动后的文件
	Compress bool
}

// Default 默认配置：info 级别，console 格式，仅标准错误
func Default() Config {
	return Config{
		Level:      "info",
		Format:     FormatConsole,
		MaxSizeMB:  100,
		MaxBackups: 7,
		MaxAgeDays: 30,
	}
}

// New 根据配置创建日志记录器
func New(cfg Config) (*zap.Logger, error) {
	return build(cfg, zapcore.Lock(os.Stderr))
}

func build(cfg Config, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoder, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	sink := console
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		sink = zapcore.NewMultiWriteSyncer(console, zapcore.AddSync(rotator))
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel 解析日志级别，空字符串视为 info
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg), nil
	case FormatJSON:
		return zapcore.NewJSONEncoder(encCfg), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: use console|json", format)
	}
}
