package snowflake

import (
	"fmt"

	"katydid-common-idgen/pkg/idgen/core"
)

// Validator Snowflake ID验证器
type Validator struct {
	clock func() int64
}

var _ core.IIDValidator = (*Validator)(nil)

// ValidateID 全局验证函数
func ValidateID(id uint64) error {
	return NewValidator().Validate(id)
}

// NewValidator 创建新的验证器实例（无状态，可共享）
func NewValidator() *Validator {
	return &Validator{clock: systemClock}
}

// Validate 验证Snowflake ID的有效性
func (v *Validator) Validate(id uint64) error {
	// 验证1：零值不是合法ID
	if id == 0 {
		return fmt.Errorf("%w: id must be positive", core.ErrInvalidSnowflakeID)
	}

	// 验证2：最高位保留为0，保证ID可以无损存入有符号BIGINT
	if id>>63 != 0 {
		return fmt.Errorf("%w: sign bit set in %d", core.ErrInvalidSnowflakeID, id)
	}

	// 验证3：时间戳不能太超前（容忍服务器之间的时钟偏差）
	timestamp := ExtractTimestampMillis(id)
	now := v.clock()
	if timestamp > now+maxFutureTimeTolerance {
		return fmt.Errorf("%w: timestamp %d is too far in the future (current: %d, max tolerance: %d ms)",
			core.ErrInvalidSnowflakeID, timestamp, now, maxFutureTimeTolerance)
	}

	return nil
}

// ValidateBatch 批量验证ID，遇到第一个错误立即返回
func (v *Validator) ValidateBatch(ids []uint64) error {
	for i, id := range ids {
		if err := v.Validate(id); err != nil {
			return fmt.Errorf("invalid ID at index %d: %w", i, err)
		}
	}
	return nil
}
