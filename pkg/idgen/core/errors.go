package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWorkerID 工作机器ID超出有效范围
	ErrInvalidWorkerID = errors.New("invalid worker id: must be between 0 and 31")

	// ErrInvalidDatacenterID 数据中心ID超出有效范围
	ErrInvalidDatacenterID = errors.New("invalid datacenter id: must be between 0 and 31")

	// ErrInvalidConfig 其他配置项无效
	ErrInvalidConfig = errors.New("invalid generator config")

	// ErrClockMovedBackwards 检测到时钟回拨
	ErrClockMovedBackwards = errors.New("clock moved backwards: refusing to generate id")

	// ErrTimestampOutOfRange 时钟读数超出 41 位时间戳可表示的范围（早于Epoch或约2093年之后）
	ErrTimestampOutOfRange = errors.New("timestamp out of range for the configured epoch")

	// ErrInvalidSnowflakeID 无效的Snowflake ID
	ErrInvalidSnowflakeID = errors.New("invalid snowflake id")

	// ErrInvalidBatchSize 批量生成数量无效
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrNilConfig 配置为nil
	ErrNilConfig = errors.New("config cannot be nil")

	// ErrGeneratorNotFound 生成器未找到
	ErrGeneratorNotFound = errors.New("generator not found")

	// ErrGeneratorAlreadyExists 生成器已存在
	ErrGeneratorAlreadyExists = errors.New("generator already exists")

	// ErrIdentityInUse 同一进程内 (worker, datacenter) 组合已被占用
	ErrIdentityInUse = errors.New("worker/datacenter identity already in use")

	// ErrInvalidKey 无效的键
	ErrInvalidKey = errors.New("invalid key")

	// ErrMaxGeneratorsReached 达到最大生成器数量
	ErrMaxGeneratorsReached = errors.New("maximum number of generators reached")
)

// ConfigError 构造期配置错误
// Field 使用环境变量名（WORKER_ID / DATACENTER_ID），便于运维直接定位配置项
type ConfigError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s out of range: %d, valid range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// Unwrap 让 errors.Is 能够匹配到对应的哨兵错误
func (e *ConfigError) Unwrap() error {
	switch e.Field {
	case FieldWorkerID:
		return ErrInvalidWorkerID
	case FieldDatacenterID:
		return ErrInvalidDatacenterID
	default:
		return ErrInvalidConfig
	}
}

// 配置字段名（与环境变量名一致）
const (
	FieldWorkerID     = "WORKER_ID"
	FieldDatacenterID = "DATACENTER_ID"
)

// ClockRegressionError 时钟回拨错误
type ClockRegressionError struct {
	Last int64 // 上次签发ID的毫秒时间戳
	Now  int64 // 本次读取到的毫秒时间戳
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("%s: detected backward drift of %d ms (last=%d, now=%d)",
		ErrClockMovedBackwards.Error(), e.Drift(), e.Last, e.Now)
}

// Drift 回拨的毫秒数
func (e *ClockRegressionError) Drift() int64 {
	return e.Last - e.Now
}

func (e *ClockRegressionError) Unwrap() error {
	return ErrClockMovedBackwards
}
