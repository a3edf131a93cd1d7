package idgen_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-idgen/pkg/idgen"
	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/registry"
)

func resetDefault(t *testing.T) {
	t.Helper()
	registry.ResetDefaultGenerator()
	t.Cleanup(registry.ResetDefaultGenerator)
}

// TestInit 测试初始化默认生成器
func TestInit(t *testing.T) {
	resetDefault(t)

	t.Run("非法身份", func(t *testing.T) {
		err := idgen.Init(32, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidWorkerID)
		assert.Contains(t, err.Error(), "WORKER_ID")
		assert.Contains(t, err.Error(), "32")
	})

	t.Run("正常初始化", func(t *testing.T) {
		require.NoError(t, idgen.Init(3, 4))

		id, err := idgen.NextID()
		require.NoError(t, err)
		assert.Equal(t, uint8(3), idgen.ExtractWorkerID(id.Uint64()))
		assert.Equal(t, uint8(4), idgen.ExtractDatacenterID(id.Uint64()))
	})

	t.Run("重复初始化", func(t *testing.T) {
		err := idgen.Init(5, 5)
		assert.ErrorIs(t, err, core.ErrGeneratorAlreadyExists)
	})
}

// TestNextID_LazyDefault 未初始化时使用 (0, 0)
func TestNextID_LazyDefault(t *testing.T) {
	resetDefault(t)

	id := idgen.MustNextID()
	assert.Equal(t, uint8(0), id.WorkerID())
	assert.Equal(t, uint8(0), id.DatacenterID())

	gen, err := idgen.Default()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), gen.GetWorkerID())
}

// TestNextIDs 测试批量生成
func TestNextIDs(t *testing.T) {
	resetDefault(t)
	require.NoError(t, idgen.Init(1, 1))

	ids, err := idgen.NextIDs(5000)
	require.NoError(t, err)
	assert.Len(t, ids, 5000)
	assert.True(t, ids.IsSorted())

	_, err = idgen.NextIDs(0)
	assert.ErrorIs(t, err, core.ErrInvalidBatchSize)
}

// TestParse 测试字符串解析
func TestParse(t *testing.T) {
	resetDefault(t)
	require.NoError(t, idgen.Init(9, 17))

	id := idgen.MustNextID()

	tests := []struct {
		name  string
		input string
	}{
		{"十进制", id.String()},
		{"十六进制", id.Hex()},
		{"二进制", id.Binary()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := idgen.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, id.Uint64(), info.ID)
			assert.Equal(t, uint8(9), info.WorkerID)
			assert.Equal(t, uint8(17), info.DatacenterID)
			assert.Equal(t, idgen.ExtractSequence(id.Uint64()), info.Sequence)
			assert.True(t, info.Time.Equal(idgen.ExtractTimestamp(id.Uint64())))
		})
	}

	t.Run("非法输入", func(t *testing.T) {
		_, err := idgen.Parse("not-a-number")
		assert.ErrorIs(t, err, core.ErrInvalidSnowflakeID)

		_, err = idgen.Parse("0")
		assert.ErrorIs(t, err, core.ErrInvalidSnowflakeID)
	})
}

// TestExtract 测试各字段提取与生成时间
func TestExtract(t *testing.T) {
	gen, err := idgen.New(31, 31)
	require.NoError(t, err)

	before := time.Now().Add(-time.Millisecond)
	raw, err := gen.NextID()
	require.NoError(t, err)
	after := time.Now().Add(time.Millisecond)

	ts := idgen.ExtractTimestamp(raw)
	assert.True(t, !ts.Before(before.Truncate(time.Millisecond)) && !ts.After(after), "时间戳应落在生成前后")
	assert.Equal(t, time.UTC, ts.Location())
	assert.Equal(t, uint8(31), idgen.ExtractWorkerID(raw))
	assert.Equal(t, uint8(31), idgen.ExtractDatacenterID(raw))
	assert.Equal(t, uint16(0), idgen.ExtractSequence(raw))
	assert.NoError(t, idgen.Validate(raw))
	assert.Error(t, idgen.Validate(0))
}
