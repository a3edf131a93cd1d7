package registry

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"go.uber.org/zap"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

const (
	// defaultMaxGenerators 默认最大生成器数量
	// 说明：限制注册表中可存储的生成器数量，防止内存泄漏
	defaultMaxGenerators = 100

	// absoluteMaxGenerators 绝对最大生成器数量（硬性上限）
	// 说明：(worker, datacenter) 组合只有 32*32 种，超过此数量必然冲突
	absoluteMaxGenerators = (snowflake.MaxWorkerID + 1) * (snowflake.MaxDatacenterID + 1)

	// maxKeyLength 键的最大长度
	maxKeyLength = 256
)

// keyFormatRegex 键的合法字符：字母、数字、下划线、连字符、点
var keyFormatRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// identity 生成器身份，同一进程内必须唯一
type identity struct {
	workerID     uint8
	datacenterID uint8
}

func (i identity) String() string {
	return fmt.Sprintf("worker=%d,datacenter=%d", i.workerID, i.datacenterID)
}

// Registry 生成器注册表
// 除了按key管理生成器外，还保证同一进程内不会出现两个身份相同的生成器，
// 否则二者会在同一毫秒内产出相同的ID。
// 身份被释放后会记住其最后签发的毫秒，同身份的新生成器只在该毫秒之后签发；
// 已移除的生成器实例不应继续使用
type Registry struct {
	generators    map[string]core.IGenerator // 生成器映射表
	identities    map[identity]string        // 身份 -> 占用它的key
	marks         map[identity]int64         // 已释放身份 -> 最后签发的毫秒
	maxGenerators int                        // 最大生成器数量限制
	factory       *snowflake.Factory
	logger        *zap.Logger
	mu            sync.RWMutex
}

var (
	// globalRegistry 全局生成器注册表实例（单例）
	globalRegistry *Registry

	// registryOnce 确保注册表只初始化一次
	registryOnce sync.Once
)

// GetRegistry 获取全局生成器注册表
func GetRegistry() *Registry {
	registryOnce.Do(func() {
		globalRegistry = New(nil)
	})
	return globalRegistry
}

// New 创建独立的注册表，logger 为 nil 时不输出日志
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		generators:    make(map[string]core.IGenerator),
		identities:    make(map[identity]string),
		marks:         make(map[identity]int64),
		maxGenerators: defaultMaxGenerators,
		factory:       snowflake.NewFactory(),
		logger:        logger.Named("registry"),
	}
}

// SetLogger 替换注册表的日志记录器
func (r *Registry) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.mu.Lock()
	r.logger = logger.Named("registry")
	r.mu.Unlock()
}

// Create 创建并注册一个新的生成器
func (r *Registry) Create(key string, config *snowflake.Config) (core.IGenerator, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[key]; exists {
		return nil, fmt.Errorf("%w: key '%s'", core.ErrGeneratorAlreadyExists, key)
	}
	return r.createLocked(key, config)
}

// GetOrCreate 获取生成器，如果不存在则创建
// 注意：key 已存在时直接返回已有生成器，忽略 config
func (r *Registry) GetOrCreate(key string, config *snowflake.Config) (core.IGenerator, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if generator, exists := r.generators[key]; exists {
		return generator, nil
	}
	return r.createLocked(key, config)
}

// createLocked 调用方必须持有写锁
func (r *Registry) createLocked(key string, config *snowflake.Config) (core.IGenerator, error) {
	if len(r.generators) >= r.maxGenerators {
		return nil, fmt.Errorf("%w: current %d, max %d",
			core.ErrMaxGeneratorsReached, len(r.generators), r.maxGenerators)
	}

	// 先校验配置，再检查身份冲突
	if config == nil {
		return nil, fmt.Errorf("failed to create generator: %w", core.ErrNilConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	id := identity{workerID: uint8(config.WorkerID), datacenterID: uint8(config.DatacenterID)}
	if owner, taken := r.identities[id]; taken {
		return nil, fmt.Errorf("%w: %s held by key '%s'", core.ErrIdentityInUse, id, owner)
	}

	// 接续该身份上一次签发到的毫秒
	cfg := config.Clone()
	if mark := r.marks[id]; mark > cfg.ResumeAfter {
		cfg.ResumeAfter = mark
	}

	generator, err := r.factory.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	r.generators[key] = generator
	r.identities[id] = key

	r.logger.Info("生成器创建成功",
		zap.String("key", key),
		zap.Uint8("worker_id", id.workerID),
		zap.Uint8("datacenter_id", id.datacenterID),
		zap.Int64("resume_after", cfg.ResumeAfter))

	return generator, nil
}

// Get 获取已注册的生成器
func (r *Registry) Get(key string) (core.IGenerator, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	generator, exists := r.generators[key]
	if !exists {
		return nil, fmt.Errorf("%w: key '%s'", core.ErrGeneratorNotFound, key)
	}
	return generator, nil
}

// Has 检查生成器是否存在
func (r *Registry) Has(key string) bool {
	if err := validateKey(key); err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.generators[key]
	return exists
}

// Remove 移除生成器并释放其身份
func (r *Registry) Remove(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	generator, exists := r.generators[key]
	if !exists {
		return fmt.Errorf("%w: key '%s'", core.ErrGeneratorNotFound, key)
	}

	delete(r.generators, key)
	r.releaseLocked(generator)

	r.logger.Info("生成器已移除", zap.String("key", key))
	return nil
}

// Clear 清空所有生成器
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, generator := range r.generators {
		r.releaseLocked(generator)
	}
	r.generators = make(map[string]core.IGenerator)

	r.logger.Info("注册表已清空")
}

// releaseLocked 释放生成器的身份并记录其最后签发的毫秒，调用方必须持有写锁
func (r *Registry) releaseLocked(generator core.IGenerator) {
	id := identity{workerID: generator.GetWorkerID(), datacenterID: generator.GetDatacenterID()}
	delete(r.identities, id)
	if last := generator.LastTimestamp(); last > r.marks[id] {
		r.marks[id] = last
	}
}

// Count 获取生成器数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.generators)
}

// ListKeys 列出所有生成器的键（升序）
func (r *Registry) ListKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.generators))
	for key := range r.generators {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SetMaxGenerators 设置最大生成器数量
func (r *Registry) SetMaxGenerators(max int) error {
	if max <= 0 {
		return fmt.Errorf("max generators must be positive, got %d", max)
	}
	if max > absoluteMaxGenerators {
		return fmt.Errorf("max generators cannot exceed absolute limit %d, got %d",
			absoluteMaxGenerators, max)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.generators) > max {
		return fmt.Errorf("current generator count %d exceeds new max %d",
			len(r.generators), max)
	}

	r.maxGenerators = max

	r.logger.Info("注册表容量已调整",
		zap.Int("new_max", max),
		zap.Int("current_count", len(r.generators)))
	return nil
}

// GetMaxGenerators 获取最大生成器数量
func (r *Registry) GetMaxGenerators() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.maxGenerators
}

// validateKey 验证键的有效性
func validateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: key cannot be empty", core.ErrInvalidKey)
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: key too long (max %d), got %d",
			core.ErrInvalidKey, maxKeyLength, len(key))
	}
	if !keyFormatRegex.MatchString(key) {
		return fmt.Errorf("%w: key '%s' contains invalid characters", core.ErrInvalidKey, key)
	}
	return nil
}
