package snowflake

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"katydid-common-idgen/pkg/idgen/core"
)

// Compose 按位布局组装ID，是各 Extract 函数的逆运算
// timestampMs 为 Unix 毫秒；超出位宽的部分会被截断
func Compose(timestampMs int64, datacenterID, workerID uint8, sequence uint16) uint64 {
	return (uint64(timestampMs-Epoch)&MaxTimestamp)<<TimestampShift |
		uint64(datacenterID&MaxDatacenterID)<<DatacenterIDShift |
		uint64(workerID&MaxWorkerID)<<WorkerIDShift |
		uint64(sequence&MaxSequence)
}

// ExtractTimestampMillis 提取时间戳（Unix毫秒）
func ExtractTimestampMillis(id uint64) int64 {
	return int64((id>>TimestampShift)&MaxTimestamp) + Epoch
}

// ExtractTimestamp 提取时间戳并转换为UTC时间
func ExtractTimestamp(id uint64) time.Time {
	return time.UnixMilli(ExtractTimestampMillis(id)).UTC()
}

// ExtractDatacenterID 提取数据中心ID（右移17位，取低5位）
func ExtractDatacenterID(id uint64) uint8 {
	return uint8((id >> DatacenterIDShift) & MaxDatacenterID)
}

// ExtractWorkerID 提取工作机器ID（右移12位，取低5位）
func ExtractWorkerID(id uint64) uint8 {
	return uint8((id >> WorkerIDShift) & MaxWorkerID)
}

// ExtractSequence 提取序列号（取低12位）
func ExtractSequence(id uint64) uint16 {
	return uint16(id & MaxSequence)
}

// ParseString 将十进制字符串形式的ID解析回 uint64
func ParseString(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty id string", core.ErrInvalidSnowflakeID)
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrInvalidSnowflakeID, err)
	}
	return id, nil
}

// Parser Snowflake ID解析器
type Parser struct {
	validator core.IIDValidator // 解析前验证ID有效性
}

var _ core.IIDParser = (*Parser)(nil)

// NewParser 创建新的解析器实例
func NewParser() *Parser {
	return &Parser{validator: NewValidator()}
}

// Parse 验证后解析ID，提取完整的元信息
func (p *Parser) Parse(id uint64) (*core.IDInfo, error) {
	if err := p.validator.Validate(id); err != nil {
		return nil, err
	}

	ms := ExtractTimestampMillis(id)
	return &core.IDInfo{
		ID:           id,
		Timestamp:    ms,
		Time:         time.UnixMilli(ms).UTC(),
		DatacenterID: ExtractDatacenterID(id),
		WorkerID:     ExtractWorkerID(id),
		Sequence:     ExtractSequence(id),
	}, nil
}

func (p *Parser) ExtractTimestamp(id uint64) time.Time { return ExtractTimestamp(id) }

func (p *Parser) ExtractDatacenterID(id uint64) uint8 { return ExtractDatacenterID(id) }

func (p *Parser) ExtractWorkerID(id uint64) uint8 { return ExtractWorkerID(id) }

func (p *Parser) ExtractSequence(id uint64) uint16 { return ExtractSequence(id) }
