package snowflake

import (
	"fmt"

	"katydid-common-idgen/pkg/idgen/core"
)

// Factory Snowflake生成器工厂（无状态）
type Factory struct{}

// NewFactory 创建Snowflake工厂实例
func NewFactory() *Factory {
	return &Factory{}
}

// Create 根据配置创建生成器，接受 *Config 或 Config
func (f *Factory) Create(config any) (core.IGenerator, error) {
	var cfg *Config
	switch c := config.(type) {
	case *Config:
		cfg = c
	case Config:
		cfg = &c
	default:
		return nil, fmt.Errorf("%w: expected *snowflake.Config, got %T", core.ErrInvalidConfig, config)
	}

	// 注意：不能直接返回 NewWithConfig 的结果，nil *Generator 会变成非nil接口
	gen, err := NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return gen, nil
}
