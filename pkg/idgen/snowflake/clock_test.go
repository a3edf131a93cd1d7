package snowflake

import (
	"sync/atomic"
	"testing"
)

// fakeClock 可控时钟，用于模拟同一毫秒、跨毫秒和时钟回拨
type fakeClock struct {
	ms atomic.Int64
}

func newFakeClock(ms int64) *fakeClock {
	c := &fakeClock{}
	c.ms.Store(ms)
	return c
}

func (c *fakeClock) Now() int64 { return c.ms.Load() }

func (c *fakeClock) Set(ms int64) { c.ms.Store(ms) }

func (c *fakeClock) Advance(ms int64) { c.ms.Add(ms) }

// baseTime 2025-01-01 00:00:00 UTC
const baseTime int64 = 1735689600000

// newClockedGenerator 创建使用模拟时钟的生成器（worker=1, datacenter=1，开启监控）
func newClockedGenerator(t testing.TB, clock *fakeClock, opts ...func(*Config)) *Generator {
	t.Helper()
	cfg := &Config{WorkerID: 1, DatacenterID: 1, Clock: clock.Now, EnableMetrics: true}
	for _, opt := range opts {
		opt(cfg)
	}
	gen, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	return gen
}
