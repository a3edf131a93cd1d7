package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestClockBackwardStrategy 测试时钟回拨策略
func TestClockBackwardStrategy(t *testing.T) {
	tests := []struct {
		name     string
		strategy ClockBackwardStrategy
		expected string
		isValid  bool
	}{
		{"沿用上次时间戳策略", StrategyUseLastTimestamp, "use_last_timestamp", true},
		{"错误策略", StrategyError, "error", true},
		{"等待策略", StrategyWait, "wait", true},
		{"未知策略", ClockBackwardStrategy(999), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy.String(); got != tt.expected {
				t.Errorf("String() = %s, 期望 %s", got, tt.expected)
			}
			if got := tt.strategy.IsValid(); got != tt.isValid {
				t.Errorf("IsValid() = %v, 期望 %v", got, tt.isValid)
			}
		})
	}
}

// TestParseClockBackwardStrategy 测试策略解析
func TestParseClockBackwardStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockBackwardStrategy
		wantErr bool
	}{
		{"", StrategyUseLastTimestamp, false},
		{"use_last_timestamp", StrategyUseLastTimestamp, false},
		{"clamp", StrategyUseLastTimestamp, false},
		{"ERROR", StrategyError, false},
		{" wait ", StrategyWait, false},
		{"retry", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClockBackwardStrategy(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("期望 ErrInvalidConfig, 得到 %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("不期望错误: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, 期望 %v", got, tt.want)
			}
		})
	}
}

// TestConfigError 测试配置错误
func TestConfigError(t *testing.T) {
	err := error(&ConfigError{Field: FieldWorkerID, Value: 32, Min: 0, Max: 31})

	if !strings.Contains(err.Error(), "WORKER_ID") || !strings.Contains(err.Error(), "32") {
		t.Errorf("错误消息应包含字段名和取值, 得到 %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidWorkerID) {
		t.Error("应匹配 ErrInvalidWorkerID")
	}
	if errors.Is(err, ErrInvalidDatacenterID) {
		t.Error("不应匹配 ErrInvalidDatacenterID")
	}

	wrapped := fmt.Errorf("create: %w", &ConfigError{Field: FieldDatacenterID, Value: -1, Max: 31})
	var cfgErr *ConfigError
	if !errors.As(wrapped, &cfgErr) {
		t.Fatal("errors.As 应能取出 ConfigError")
	}
	if cfgErr.Field != FieldDatacenterID || cfgErr.Value != -1 {
		t.Errorf("ConfigError = %+v", cfgErr)
	}
	if !errors.Is(wrapped, ErrInvalidDatacenterID) {
		t.Error("应匹配 ErrInvalidDatacenterID")
	}

	other := &ConfigError{Field: "CLOCK_BACKWARD_TOLERANCE_MS", Value: 5000, Max: 1000}
	if !errors.Is(other, ErrInvalidConfig) {
		t.Error("其他字段应匹配 ErrInvalidConfig")
	}
}

// TestClockRegressionError 测试时钟回拨错误
func TestClockRegressionError(t *testing.T) {
	err := &ClockRegressionError{Last: 1000, Now: 990}

	if err.Drift() != 10 {
		t.Errorf("Drift() = %d, 期望 10", err.Drift())
	}
	if !errors.Is(err, ErrClockMovedBackwards) {
		t.Error("应匹配 ErrClockMovedBackwards")
	}
	if !strings.Contains(err.Error(), "10 ms") {
		t.Errorf("错误消息应包含回拨量, 得到 %q", err.Error())
	}
}

// TestErrors 测试错误定义
func TestErrors(t *testing.T) {
	for _, err := range []error{
		ErrInvalidWorkerID,
		ErrInvalidDatacenterID,
		ErrInvalidConfig,
		ErrClockMovedBackwards,
		ErrTimestampOutOfRange,
		ErrInvalidSnowflakeID,
		ErrInvalidBatchSize,
		ErrNilConfig,
		ErrGeneratorNotFound,
		ErrGeneratorAlreadyExists,
		ErrIdentityInUse,
		ErrInvalidKey,
		ErrMaxGeneratorsReached,
	} {
		if err == nil || err.Error() == "" {
			t.Errorf("错误定义不应为空: %v", err)
		}
	}
}
