// Package gormid 提供 gorm 插件：在 INSERT 之前为零值主键（以及标记了 idgen 的字段）分配 Snowflake ID
//
// 用法：
//
//	gen, _ := snowflake.New(1, 1)
//	_ = db.Use(gormid.New(gen))
//
//	type Order struct {
//		ID      domain.ID `gorm:"primaryKey"`
//		TraceID domain.ID `gorm:"idgen"`
//	}
package gormid

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"katydid-common-idgen/pkg/idgen/core"
)

const (
	// pluginName 插件名，同一个 *gorm.DB 只能注册一次
	pluginName = "idgen"

	// callbackName 注册在 gorm:create 之前的回调名
	callbackName = "idgen:assign_id"

	// tagSetting gorm 标签中标记需要分配ID的非主键字段，如 `gorm:"idgen"`
	tagSetting = "IDGEN"
)

// Plugin gorm ID分配插件
type Plugin struct {
	generator core.IIDGenerator
	logger    *zap.Logger
}

var _ gorm.Plugin = (*Plugin)(nil)

// Option 插件选项
type Option func(*Plugin)

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New 创建插件
func New(generator core.IIDGenerator, opts ...Option) *Plugin {
	p := &Plugin{
		generator: generator,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("gormid")
	return p
}

// Name 实现 gorm.Plugin
func (p *Plugin) Name() string {
	return pluginName
}

// Initialize 实现 gorm.Plugin，注册创建回调
func (p *Plugin) Initialize(db *gorm.DB) error {
	if p.generator == nil {
		return fmt.Errorf("%w: gormid plugin requires a generator", core.ErrInvalidConfig)
	}
	return db.Callback().Create().Before("gorm:create").Register(callbackName, p.assignIDs)
}

// assignIDs 为待插入记录中的零值ID字段分配新ID
func (p *Plugin) assignIDs(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}

	fields := idFields(db.Statement.Schema)
	if len(fields) == 0 {
		return
	}

	ctx := db.Statement.Context
	rv := db.Statement.ReflectValue

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			if elem.Kind() != reflect.Struct {
				continue
			}
			if err := p.assign(ctx, fields, elem); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	case reflect.Struct:
		if err := p.assign(ctx, fields, rv); err != nil {
			_ = db.AddError(err)
		}
	}
}

func (p *Plugin) assign(ctx context.Context, fields []*schema.Field, rv reflect.Value) error {
	for _, field := range fields {
		if _, isZero := field.ValueOf(ctx, rv); !isZero {
			continue
		}

		id, err := p.generator.NextID()
		if err != nil {
			p.logger.Error("分配ID失败", zap.String("field", field.Name), zap.Error(err))
			return fmt.Errorf("gormid: assign %s.%s: %w", field.Schema.Name, field.Name, err)
		}

		var value any = id
		if field.FieldType.Kind() == reflect.Int64 {
			value = int64(id)
		}
		if err := field.Set(ctx, rv, value); err != nil {
			return fmt.Errorf("gormid: set %s.%s: %w", field.Schema.Name, field.Name, err)
		}
	}
	return nil
}

// idFields 返回需要分配ID的字段：64位整数主键，以及带 idgen 标签的64位整数字段
func idFields(s *schema.Schema) []*schema.Field {
	var fields []*schema.Field
	for _, field := range s.Fields {
		if !isInt64Kind(field.FieldType) {
			continue
		}
		_, tagged := field.TagSettings[tagSetting]
		if field == s.PrioritizedPrimaryField || tagged {
			fields = append(fields, field)
		}
	}
	return fields
}

func isInt64Kind(t reflect.Type) bool {
	return t.Kind() == reflect.Uint64 || t.Kind() == reflect.Int64
}
