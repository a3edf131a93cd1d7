package core

import (
	"fmt"
	"strings"
)

// ClockBackwardStrategy 时钟回拨处理策略
type ClockBackwardStrategy int

const (
	// StrategyUseLastTimestamp 沿用上次时间戳并继续递增序列号（默认，保证单调）
	StrategyUseLastTimestamp ClockBackwardStrategy = iota
	// StrategyError 直接返回错误
	StrategyError
	// StrategyWait 等待追上（容忍短暂回拨）
	StrategyWait
)

// String 实现Stringer接口
func (s ClockBackwardStrategy) String() string {
	switch s {
	case StrategyError:
		return "error"
	case StrategyWait:
		return "wait"
	case StrategyUseLastTimestamp:
		return "use_last_timestamp"
	default:
		return "unknown"
	}
}

// IsValid 验证策略是否有效
func (s ClockBackwardStrategy) IsValid() bool {
	switch s {
	case StrategyError, StrategyWait, StrategyUseLastTimestamp:
		return true
	default:
		return false
	}
}

// ParseClockBackwardStrategy 从配置字符串解析策略，空串返回默认策略
func ParseClockBackwardStrategy(s string) (ClockBackwardStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "use_last_timestamp", "uselasttimestamp", "clamp":
		return StrategyUseLastTimestamp, nil
	case "error":
		return StrategyError, nil
	case "wait":
		return StrategyWait, nil
	default:
		return 0, fmt.Errorf("%w: unknown clock backward strategy %q", ErrInvalidConfig, s)
	}
}
