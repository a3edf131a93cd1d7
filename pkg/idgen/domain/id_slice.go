package domain

import (
	"fmt"
	"slices"
)

// IDSlice ID切片类型
type IDSlice []ID

// NewIDSlice 从原始值创建ID切片
func NewIDSlice(vals ...uint64) IDSlice {
	result := make(IDSlice, len(vals))
	for i, v := range vals {
		result[i] = ID(v)
	}
	return result
}

// Uint64Slice 转换为uint64切片
func (ids IDSlice) Uint64Slice() []uint64 {
	result := make([]uint64, len(ids))
	for i, id := range ids {
		result[i] = id.Uint64()
	}
	return result
}

// StringSlice 转换为十进制字符串切片
func (ids IDSlice) StringSlice() []string {
	result := make([]string, len(ids))
	for i, id := range ids {
		result[i] = id.String()
	}
	return result
}

// Contains 检查是否包含指定ID（线性查找）
func (ids IDSlice) Contains(id ID) bool {
	return slices.Contains(ids, id)
}

// Sort 原地升序排序（即按生成时间排序）
func (ids IDSlice) Sort() {
	slices.Sort(ids)
}

// IsSorted 是否严格递增
func (ids IDSlice) IsSorted() bool {
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			return false
		}
	}
	return true
}

// Deduplicate 去重，返回新切片并保持首次出现顺序
func (ids IDSlice) Deduplicate() IDSlice {
	seen := make(IDSet, len(ids))
	result := make(IDSlice, 0, len(ids))
	for _, id := range ids {
		if seen.Add(id) {
			result = append(result, id)
		}
	}
	return result
}

// Filter 过滤ID，predicate为nil时返回副本
func (ids IDSlice) Filter(predicate func(ID) bool) IDSlice {
	result := make(IDSlice, 0, len(ids))
	for _, id := range ids {
		if predicate == nil || predicate(id) {
			result = append(result, id)
		}
	}
	return result
}

// ValidateAll 验证切片中所有ID的有效性
func (ids IDSlice) ValidateAll() error {
	for i, id := range ids {
		if err := id.Validate(); err != nil {
			return fmt.Errorf("invalid ID at index %d: %w", i, err)
		}
	}
	return nil
}
