package snowflake

import "time"

const (
	// Epoch 起始时间戳 (2024-01-01 00:00:00 UTC)，毫秒
	Epoch int64 = 1704067200000

	// 位数分配
	TimestampBits    = 41 // 时间戳位数
	DatacenterIDBits = 5  // 数据中心ID位数
	WorkerIDBits     = 5  // 工作机器ID位数
	SequenceBits     = 12 // 序列号位数

	// 最大值计算(切记不是个数)
	MaxTimestamp    = -1 ^ (-1 << TimestampBits)    // 2^41 - 1，约69年
	MaxDatacenterID = -1 ^ (-1 << DatacenterIDBits) // 31 [0, 31]
	MaxWorkerID     = -1 ^ (-1 << WorkerIDBits)     // 31 [0, 31]
	MaxSequence     = -1 ^ (-1 << SequenceBits)     // 4095 [0, 4095]

	// 位移量
	WorkerIDShift     = SequenceBits                                   // 12
	DatacenterIDShift = SequenceBits + WorkerIDBits                    // 17
	TimestampShift    = SequenceBits + WorkerIDBits + DatacenterIDBits // 22

	// 等待下一毫秒时的休眠时间
	sleepDuration = 100 * time.Microsecond

	// 时钟回拨默认容忍时间（毫秒），ClockBackwardTolerance 为 0 时使用
	defaultClockBackwardTolerance = 5

	// NoClockBackwardTolerance 显式关闭容忍：StrategyWait 遇到任何回拨都直接报错
	NoClockBackwardTolerance int64 = -1

	// 时钟回拨容忍度的绝对上限（毫秒），防止无限等待
	maxClockBackwardToleranceLimit = 1000

	// 批量生成最大数量（支持跨毫秒生成）
	maxBatchSize = 100_000

	// 等待策略最大重试次数
	maxWaitRetries = 10

	// 允许的未来时间容差（毫秒）
	maxFutureTimeTolerance = 60 * 1000
)
