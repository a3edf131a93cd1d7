package snowflake

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"katydid-common-idgen/pkg/idgen/core"
)

var _ core.IGenerator = (*Generator)(nil)

// Generator Snowflake算法的ID生成器实现
type Generator struct {
	// ========== 核心状态（受 mu 保护） ==========
	lastTimestamp int64 // 上次生成ID的时间戳（Unix毫秒）
	sequence      int64 // 当前毫秒内的序列号（0-4095）

	// ========== 固定身份（构造后不可变） ==========
	datacenterID    uint8
	workerID        uint8
	precomputedPart uint64 // 预计算的 datacenterID|workerID 部分

	// ========== 配置和工具 ==========
	config    *Config
	clock     func() int64
	metrics   *Metrics // nil 时不收集
	validator core.IIDValidator
	parser    core.IIDParser
	logger    *zap.Logger

	mu sync.Mutex
}

// waitKind 生成过程中需要在锁外执行的等待动作
type waitKind int

const (
	waitNone       waitKind = iota
	waitNextMillis          // 序列号耗尽，等待时钟越过 last
	waitCatchUp             // StrategyWait：等待回拨的时钟追上 last
)

// attempt 一次加锁生成尝试的结果
type attempt struct {
	id   uint64
	wait waitKind
	last int64 // 需要越过/追上的毫秒
	now  int64 // 本次读取到的时钟
}

// New 创建一个新的Snowflake ID生成器（默认策略，关闭监控）
func New(workerID, datacenterID int64) (*Generator, error) {
	return NewWithConfig(&Config{
		WorkerID:     workerID,
		DatacenterID: datacenterID,
	})
}

// NewWithConfig 使用配置创建Snowflake ID生成器
func NewWithConfig(config *Config) (*Generator, error) {
	if config == nil {
		return nil, core.ErrNilConfig
	}

	// 步骤1：验证配置（只在构造时执行一次）
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 步骤2：在副本上设置默认值，不修改调用方的配置
	cfg := config.Clone()
	cfg.SetDefaults()

	var metrics *Metrics
	if cfg.EnableMetrics {
		metrics = NewMetrics()
	}

	g := &Generator{
		datacenterID:    uint8(cfg.DatacenterID),
		workerID:        uint8(cfg.WorkerID),
		precomputedPart: uint64(cfg.DatacenterID)<<DatacenterIDShift | uint64(cfg.WorkerID)<<WorkerIDShift,
		config:          cfg,
		clock:           cfg.Clock,
		metrics:         metrics,
		validator:       NewValidator(),
		parser:          NewParser(),
		logger:          cfg.Logger.Named("snowflake"),
	}

	// 接续上一个同身份生成器：序列号置满，同一毫秒内的首次生成会等待下一毫秒
	if cfg.ResumeAfter > 0 {
		g.lastTimestamp = cfg.ResumeAfter
		g.sequence = MaxSequence
	}

	g.logger.Info("Snowflake生成器创建成功",
		zap.Int64("worker_id", cfg.WorkerID),
		zap.Int64("datacenter_id", cfg.DatacenterID),
		zap.Stringer("clock_backward_strategy", cfg.ClockBackwardStrategy),
		zap.Bool("metrics_enabled", cfg.EnableMetrics))

	return g, nil
}

// NextID 生成下一个唯一ID（线程安全）
// 序列号耗尽或等待时钟追上时，会释放锁后休眠再重试
func (g *Generator) NextID() (uint64, error) {
	catchUps := 0
	for {
		g.mu.Lock()
		a, err := g.nextIDLocked()
		g.mu.Unlock()

		if err != nil {
			return 0, err
		}
		if a.wait == waitNone {
			g.metrics.addIDs(1)
			return a.id, nil
		}
		if err := g.await(a, &catchUps); err != nil {
			return 0, err
		}
	}
}

// Generate 生成下一个ID
// 默认策略下不会失败；若配置为 StrategyError/StrategyWait 且发生无法容忍的时钟回拨则 panic，
// 需要处理错误的调用方应使用 NextID
func (g *Generator) Generate() uint64 {
	id, err := g.NextID()
	if err != nil {
		panic(err)
	}
	return id
}

// NextIDBatch 批量生成ID（线程安全，结果严格递增）
func (g *Generator) NextIDBatch(n int) ([]uint64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d",
			core.ErrInvalidBatchSize, n)
	}
	if n > maxBatchSize {
		return nil, fmt.Errorf("%w: batch size too large (max %d), got %d",
			core.ErrInvalidBatchSize, maxBatchSize, n)
	}

	ids := make([]uint64, 0, n)
	catchUps := 0
	for len(ids) < n {
		var a attempt
		var err error

		// 一次加锁尽量填满当前毫秒
		g.mu.Lock()
		for len(ids) < n {
			a, err = g.nextIDLocked()
			if err != nil || a.wait != waitNone {
				break
			}
			ids = append(ids, a.id)
		}
		g.mu.Unlock()

		if err != nil {
			g.metrics.addIDs(len(ids))
			return ids, fmt.Errorf("%w (generated %d/%d IDs)", err, len(ids), n)
		}
		if a.wait != waitNone {
			if err := g.await(a, &catchUps); err != nil {
				g.metrics.addIDs(len(ids))
				return ids, fmt.Errorf("%w (generated %d/%d IDs)", err, len(ids), n)
			}
		}
	}

	g.metrics.addIDs(n)
	return ids, nil
}

// nextIDLocked 单次生成尝试，调用者必须已持有锁
// 需要等待时不修改状态，返回 wait != waitNone 由调用方在锁外等待后重试
func (g *Generator) nextIDLocked() (attempt, error) {
	// 步骤1：读取当前时钟
	now := g.clock()

	// 步骤2：时钟回拨处理
	if now < g.lastTimestamp {
		g.metrics.recordClockBackward()
		switch g.config.ClockBackwardStrategy {
		case core.StrategyUseLastTimestamp:
			g.logger.Debug("时钟回拨，沿用上次时间戳",
				zap.Int64("last_timestamp", g.lastTimestamp),
				zap.Int64("current_timestamp", now))
			now = g.lastTimestamp
		case core.StrategyWait:
			if g.lastTimestamp-now <= g.config.ClockBackwardTolerance {
				return attempt{wait: waitCatchUp, last: g.lastTimestamp, now: now}, nil
			}
			fallthrough
		default:
			err := &core.ClockRegressionError{Last: g.lastTimestamp, Now: now}
			g.logger.Warn("时钟回拨，ID生成失败", zap.Error(err))
			return attempt{}, err
		}
	}

	if now < Epoch || now-Epoch > MaxTimestamp {
		return attempt{}, fmt.Errorf("%w: clock reading %d ms", core.ErrTimestampOutOfRange, now)
	}

	// 步骤3：序列号管理
	if now == g.lastTimestamp {
		next := (g.sequence + 1) & MaxSequence
		if next == 0 {
			// 本毫秒 4096 个序列号已用尽，状态保持不变，等待下一毫秒
			g.metrics.recordOverflow()
			return attempt{wait: waitNextMillis, last: g.lastTimestamp, now: now}, nil
		}
		g.sequence = next
	} else {
		g.sequence = 0
	}

	// 步骤4：更新状态并组装ID
	g.lastTimestamp = now
	return attempt{id: g.compose(now)}, nil
}

func (g *Generator) compose(timestamp int64) uint64 {
	return uint64(timestamp-Epoch)<<TimestampShift | g.precomputedPart | uint64(g.sequence)
}

// await 在锁外执行等待动作
func (g *Generator) await(a attempt, catchUps *int) error {
	start := time.Now()
	defer func() { g.metrics.observeWait(time.Since(start)) }()

	switch a.wait {
	case waitNextMillis:
		g.waitNextMillis(a.last)
		return nil
	case waitCatchUp:
		*catchUps++
		if *catchUps > maxWaitRetries {
			return fmt.Errorf("%w: backward drift persisted after %d retries",
				&core.ClockRegressionError{Last: a.last, Now: a.now}, maxWaitRetries)
		}
		time.Sleep(time.Duration(a.last-a.now+1) * time.Millisecond)
		return nil
	default:
		return nil
	}
}

// waitNextMillis 休眠轮询直到时钟越过 lastTimestamp
func (g *Generator) waitNextMillis(lastTimestamp int64) {
	for g.clock() <= lastTimestamp {
		time.Sleep(sleepDuration)
	}
}

// GetWorkerID 获取工作机器ID
func (g *Generator) GetWorkerID() uint8 {
	return g.workerID
}

// GetDatacenterID 获取数据中心ID
func (g *Generator) GetDatacenterID() uint8 {
	return g.datacenterID
}

// LastTimestamp 最后一次签发ID的毫秒（Unix毫秒），未签发过时为 0 或 ResumeAfter
func (g *Generator) LastTimestamp() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastTimestamp
}

// GetClockBackwardStrategy 获取时钟回拨策略
func (g *Generator) GetClockBackwardStrategy() core.ClockBackwardStrategy {
	return g.config.ClockBackwardStrategy
}

// GetMetrics 获取性能监控指标
func (g *Generator) GetMetrics() map[string]uint64 {
	return g.metrics.ToMap()
}

// ResetMetrics 重置性能监控指标
func (g *Generator) ResetMetrics() {
	g.metrics.Reset()
}

// GetIDCount 获取已生成的ID总数
func (g *Generator) GetIDCount() uint64 {
	if g.metrics == nil {
		return 0
	}
	return g.metrics.IDCount.Load()
}

// ParseID 解析ID
func (g *Generator) ParseID(id uint64) (*core.IDInfo, error) {
	return g.parser.Parse(id)
}

// ValidateID 验证ID
func (g *Generator) ValidateID(id uint64) error {
	return g.validator.Validate(id)
}
