// Package idgen 是 Snowflake ID 生成的便捷入口
//
// 进程启动时调用一次 Init 指定本实例的 (worker, datacenter) 身份，之后通过包级函数生成和解析ID：
//
//	if err := idgen.Init(cfg.WorkerID, cfg.DatacenterID); err != nil {
//		return err
//	}
//	id, err := idgen.NextID()
//
// 需要多个生成器或自定义时钟回拨策略时，直接使用 snowflake 与 registry 子包。
package idgen

import (
	"fmt"
	"time"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/domain"
	"katydid-common-idgen/pkg/idgen/registry"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

type (
	// ID 生成的ID，JSON中序列化为十进制字符串
	ID = domain.ID

	// IDInfo 解析后的ID信息
	IDInfo = core.IDInfo

	// Config 生成器配置
	Config = snowflake.Config
)

// New 创建一个独立的生成器，不注册到默认注册表
func New(workerID, datacenterID int64) (*snowflake.Generator, error) {
	return snowflake.New(workerID, datacenterID)
}

// Init 以指定身份初始化默认生成器，进程内只能调用一次
func Init(workerID, datacenterID int64) error {
	return InitWithConfig(&Config{WorkerID: workerID, DatacenterID: datacenterID})
}

// InitWithConfig 以完整配置初始化默认生成器
func InitWithConfig(config *Config) error {
	if _, err := registry.InitDefaultGenerator(config); err != nil {
		return fmt.Errorf("init default generator: %w", err)
	}
	return nil
}

// Default 获取默认生成器，未初始化时使用 worker=0, datacenter=0
func Default() (core.IGenerator, error) {
	return registry.GetDefaultGenerator()
}

// NextID 使用默认生成器生成ID
func NextID() (ID, error) {
	gen, err := Default()
	if err != nil {
		return 0, err
	}
	id, err := gen.NextID()
	if err != nil {
		return 0, err
	}
	return ID(id), nil
}

// MustNextID 生成ID，失败时panic
func MustNextID() ID {
	id, err := NextID()
	if err != nil {
		panic(fmt.Sprintf("idgen: %v", err))
	}
	return id
}

// NextIDs 使用默认生成器批量生成n个严格递增的ID
func NextIDs(n int) (domain.IDSlice, error) {
	gen, err := Default()
	if err != nil {
		return nil, err
	}
	ids, err := gen.NextIDBatch(n)
	if err != nil {
		return nil, err
	}
	return domain.NewIDSlice(ids...), nil
}

// Parse 解析字符串形式的ID（十进制、0x、0b）并返回各字段
func Parse(s string) (*IDInfo, error) {
	id, err := domain.ParseID(s)
	if err != nil {
		return nil, err
	}
	return id.Parse()
}

// Validate 验证ID的有效性
func Validate(id uint64) error {
	return snowflake.ValidateID(id)
}

// ExtractTimestamp 提取ID的生成时间（UTC）
func ExtractTimestamp(id uint64) time.Time {
	return snowflake.ExtractTimestamp(id)
}

// ExtractDatacenterID 提取数据中心ID
func ExtractDatacenterID(id uint64) uint8 {
	return snowflake.ExtractDatacenterID(id)
}

// ExtractWorkerID 提取工作机器ID
func ExtractWorkerID(id uint64) uint8 {
	return snowflake.ExtractWorkerID(id)
}

// ExtractSequence 提取序列号
func ExtractSequence(id uint64) uint16 {
	return snowflake.ExtractSequence(id)
}
