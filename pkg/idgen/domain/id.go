package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

const (
	// maxSafeInteger JavaScript最大安全整数 (2^53 - 1)
	// 超过此值的整数在JavaScript中会丢失精度，这也是ID以字符串形式序列化的原因
	maxSafeInteger = 9007199254740991

	// maxParseIDStringLength 解析ID字符串的最大长度
	// 66 足以容纳带 0b 前缀的64位二进制表示
	maxParseIDStringLength = 66
)

// ID Snowflake ID 值类型
// JSON 中始终序列化为十进制字符串；数据库中存储为 BIGINT
type ID uint64

// NewID 创建新的ID
func NewID(val uint64) ID {
	return ID(val)
}

// ParseID 从字符串解析ID
// 支持十进制、十六进制（0x前缀）和二进制（0b前缀）
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, fmt.Errorf("%w: ID string cannot be empty", core.ErrInvalidSnowflakeID)
	}
	if len(s) > maxParseIDStringLength {
		return 0, fmt.Errorf("%w: ID string too long: max %d characters, got %d",
			core.ErrInvalidSnowflakeID, maxParseIDStringLength, len(s))
	}

	var val uint64
	var err error

	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		val, err = strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		val, err = strconv.ParseUint(s[2:], 2, 64)
	default:
		val, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse ID: %v", core.ErrInvalidSnowflakeID, err)
	}

	return ID(val), nil
}

// Uint64 转换为uint64类型
func (id ID) Uint64() uint64 {
	return uint64(id)
}

// String 转换为十进制字符串
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Hex 转换为十六进制字符串（带0x前缀）
func (id ID) Hex() string {
	return fmt.Sprintf("0x%x", uint64(id))
}

// Binary 转换为二进制字符串（带0b前缀）
func (id ID) Binary() string {
	return fmt.Sprintf("0b%b", uint64(id))
}

// MarshalJSON 序列化为字符串，避免JavaScript精度丢失
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON 支持从字符串或数字反序列化，null 保持零值
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty JSON data", core.ErrInvalidSnowflakeID)
	}
	if len(data) > maxParseIDStringLength+2 {
		return fmt.Errorf("%w: JSON data too large: got %d bytes", core.ErrInvalidSnowflakeID, len(data))
	}
	if string(data) == "null" {
		return nil
	}

	// 优先按字符串解析
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := ParseID(str)
		if err != nil {
			return err
		}
		*id = val
		return nil
	}

	// 其次按数字解析
	var num uint64
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("%w: expected string or number, got %s", core.ErrInvalidSnowflakeID, string(data))
	}
	*id = ID(num)
	return nil
}

// MarshalText 实现 encoding.TextMarshaler（用于map键、表单绑定）
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (id *ID) UnmarshalText(text []byte) error {
	val, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = val
	return nil
}

// Value 实现 driver.Valuer，以 BIGINT 存储
func (id ID) Value() (driver.Value, error) {
	if uint64(id)>>63 != 0 {
		return nil, fmt.Errorf("%w: %d overflows BIGINT", core.ErrInvalidSnowflakeID, uint64(id))
	}
	return int64(id), nil
}

// Scan 实现 sql.Scanner
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = 0
		return nil
	case int64:
		if v < 0 {
			return fmt.Errorf("%w: negative value %d", core.ErrInvalidSnowflakeID, v)
		}
		*id = ID(v)
		return nil
	case uint64:
		*id = ID(v)
		return nil
	case []byte:
		return id.UnmarshalText(v)
	case string:
		return id.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("%w: cannot scan %T into ID", core.ErrInvalidSnowflakeID, src)
	}
}

// GormDataType 数据库列类型
func (ID) GormDataType() string {
	return "bigint"
}

// IsZero 检查ID是否为零值
func (id ID) IsZero() bool {
	return id == 0
}

// IsSafeForJavaScript 检查ID是否在JavaScript安全整数范围内
func (id ID) IsSafeForJavaScript() bool {
	return uint64(id) <= maxSafeInteger
}

// Validate 验证ID的有效性
func (id ID) Validate() error {
	return snowflake.ValidateID(uint64(id))
}

// IsValid 检查ID是否有效
func (id ID) IsValid() bool {
	return id.Validate() == nil
}

// Parse 验证后解析ID元信息
func (id ID) Parse() (*core.IDInfo, error) {
	return snowflake.NewParser().Parse(uint64(id))
}

// Time 提取生成时间（UTC）
func (id ID) Time() time.Time {
	return snowflake.ExtractTimestamp(uint64(id))
}

// DatacenterID 提取数据中心ID
func (id ID) DatacenterID() uint8 {
	return snowflake.ExtractDatacenterID(uint64(id))
}

// WorkerID 提取工作机器ID
func (id ID) WorkerID() uint8 {
	return snowflake.ExtractWorkerID(uint64(id))
}

// Sequence 提取序列号
func (id ID) Sequence() uint16 {
	return snowflake.ExtractSequence(uint64(id))
}
