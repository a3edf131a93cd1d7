package core

import "time"

// IIDGenerator ID生成器基础接口
type IIDGenerator interface {
	// NextID 生成下一个唯一ID（线程安全）
	NextID() (uint64, error)
}

// IBatchGenerator 批量ID生成接口
type IBatchGenerator interface {
	IIDGenerator

	// NextIDBatch 批量生成指定数量的ID（线程安全，结果严格递增）
	NextIDBatch(n int) ([]uint64, error)
}

// IConfigurableGenerator 可配置的生成器接口
type IConfigurableGenerator interface {
	// GetWorkerID 获取工作机器ID（0-31）
	GetWorkerID() uint8

	// GetDatacenterID 获取数据中心ID（0-31）
	GetDatacenterID() uint8
}

// IMonitorableGenerator 可监控的生成器接口
type IMonitorableGenerator interface {
	GetMetrics() map[string]uint64
	ResetMetrics()
	GetIDCount() uint64
}

// IGenerator 完整功能的生成器接口
type IGenerator interface {
	IBatchGenerator
	IConfigurableGenerator
	IMonitorableGenerator

	// ParseID 解析ID，提取其中的时间戳、机器ID等元信息
	ParseID(id uint64) (*IDInfo, error)

	// LastTimestamp 最后一次签发ID的毫秒（Unix毫秒），用于同身份生成器的接续
	LastTimestamp() int64
}

// IDInfo ID信息结构
type IDInfo struct {
	ID           uint64    // 原始ID值
	Timestamp    int64     // 时间戳（Unix毫秒）
	Time         time.Time // 时间戳对应的UTC时间
	DatacenterID uint8     // 数据中心ID（0-31）
	WorkerID     uint8     // 工作机器ID（0-31）
	Sequence     uint16    // 序列号（0-4095）
}

// IIDParser ID解析器接口
type IIDParser interface {
	Parse(id uint64) (*IDInfo, error)
	ExtractTimestamp(id uint64) time.Time
	ExtractDatacenterID(id uint64) uint8
	ExtractWorkerID(id uint64) uint8
	ExtractSequence(id uint64) uint16
}

// IIDValidator ID验证器接口
type IIDValidator interface {
	Validate(id uint64) error
	ValidateBatch(ids []uint64) error
}
