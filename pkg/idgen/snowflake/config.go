package snowflake

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"katydid-common-idgen/pkg/idgen/core"
)

// Config Snowflake生成器配置
type Config struct {
	// WorkerID 工作机器ID，范围 0-31
	// 用途：标识同一数据中心内的不同进程，需由部署方在带外分配
	WorkerID int64 `env:"WORKER_ID" validate:"gte=0,lte=31"`

	// DatacenterID 数据中心ID，范围 0-31
	DatacenterID int64 `env:"DATACENTER_ID" validate:"gte=0,lte=31"`

	// ClockBackwardStrategy 时钟回拨处理策略
	// 可选值：
	//   - StrategyUseLastTimestamp: 沿用上次时间戳继续递增序列号（默认，保证单调）
	//   - StrategyError: 直接返回 ClockRegressionError
	//   - StrategyWait: 回拨量在容忍范围内时等待时钟追上
	ClockBackwardStrategy core.ClockBackwardStrategy

	// ClockBackwardTolerance 时钟回拨容忍时间（毫秒），仅 StrategyWait 生效
	// 范围：0-1000ms，0 表示使用默认值 5ms；需要零容忍时设为 NoClockBackwardTolerance
	ClockBackwardTolerance int64 `env:"CLOCK_BACKWARD_TOLERANCE_MS" validate:"gte=-1,lte=1000"`

	// EnableMetrics 是否启用性能监控
	EnableMetrics bool

	// Clock 时间源，返回 Unix 毫秒；nil 时使用系统时钟
	Clock func() int64 `validate:"-"`

	// Logger 日志记录器；nil 时不输出日志
	Logger *zap.Logger `validate:"-"`

	// ResumeAfter 同身份的上一个生成器最后签发ID的毫秒（Unix毫秒）
	// 非 0 时新生成器只在时钟越过该毫秒后才开始签发，避免重复ID
	ResumeAfter int64 `validate:"-"`
}

// configValidate 使用 env 标签作为字段名，错误信息直接对应环境变量
var configValidate = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// fieldRanges 字段的合法取值范围，用于构造 ConfigError
var fieldRanges = map[string][2]int64{
	core.FieldWorkerID:            {0, MaxWorkerID},
	core.FieldDatacenterID:        {0, MaxDatacenterID},
	"CLOCK_BACKWARD_TOLERANCE_MS": {NoClockBackwardTolerance, maxClockBackwardToleranceLimit},
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
		}
		// 只报告第一个字段错误（字段顺序：WORKER_ID、DATACENTER_ID、容忍时间）
		fe := fieldErrs[0]
		bounds := fieldRanges[fe.Field()]
		value, _ := fe.Value().(int64)
		return &core.ConfigError{Field: fe.Field(), Value: value, Min: bounds[0], Max: bounds[1]}
	}

	if !c.ClockBackwardStrategy.IsValid() {
		return fmt.Errorf("%w: unknown clock backward strategy %d",
			core.ErrInvalidConfig, c.ClockBackwardStrategy)
	}

	return nil
}

// SetDefaults 设置配置的默认值
func (c *Config) SetDefaults() {
	switch c.ClockBackwardTolerance {
	case 0:
		c.ClockBackwardTolerance = defaultClockBackwardTolerance
	case NoClockBackwardTolerance:
		c.ClockBackwardTolerance = 0
	}
	if c.Clock == nil {
		c.Clock = systemClock
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Clone 克隆配置对象
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// systemClock 系统时钟（Unix毫秒）
func systemClock() int64 {
	return time.Now().UnixMilli()
}
