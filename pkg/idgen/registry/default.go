package registry

import (
	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

const (
	// DefaultGeneratorKey 默认生成器的键
	DefaultGeneratorKey = "default"
)

// InitDefaultGenerator 使用指定配置注册默认生成器
// 默认生成器已存在时返回 core.ErrGeneratorAlreadyExists
func InitDefaultGenerator(config *snowflake.Config) (core.IGenerator, error) {
	return GetRegistry().Create(DefaultGeneratorKey, config)
}

// GetDefaultGenerator 获取默认生成器
// 未初始化时以 worker=0, datacenter=0 懒创建，仅适合单实例部署
func GetDefaultGenerator() (core.IGenerator, error) {
	return GetRegistry().GetOrCreate(DefaultGeneratorKey, &snowflake.Config{})
}

// ResetDefaultGenerator 移除默认生成器并释放其身份（主要用于测试）
func ResetDefaultGenerator() {
	_ = GetRegistry().Remove(DefaultGeneratorKey)
}
