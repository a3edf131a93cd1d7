package domain

// IDSet ID集合类型，自动去重，O(1)查找
type IDSet map[ID]struct{}

// NewIDSet 创建新的ID集合
func NewIDSet(ids ...ID) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add 添加ID，返回是否为新元素
func (s IDSet) Add(id ID) bool {
	if _, exists := s[id]; exists {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Contains 检查集合是否包含指定ID
func (s IDSet) Contains(id ID) bool {
	_, exists := s[id]
	return exists
}

// Size 获取集合大小
func (s IDSet) Size() int {
	return len(s)
}
