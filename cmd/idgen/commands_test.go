package main

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-idgen/pkg/idgen/registry"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	registry.ResetDefaultGenerator()
	t.Cleanup(registry.ResetDefaultGenerator)
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestGenerateCmd 测试generate命令
func TestGenerateCmd(t *testing.T) {
	t.Run("纯文本", func(t *testing.T) {
		out, err := run(t, "generate", "-n", "3", "--worker-id", "5", "--datacenter-id", "6")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		for _, line := range lines {
			id, err := strconv.ParseUint(line, 10, 64)
			require.NoError(t, err)
			assert.Equal(t, uint8(5), snowflake.ExtractWorkerID(id))
			assert.Equal(t, uint8(6), snowflake.ExtractDatacenterID(id))
		}
	})

	t.Run("JSON", func(t *testing.T) {
		out, err := run(t, "generate", "-n", "2", "--json")
		require.NoError(t, err)

		var ids []string
		require.NoError(t, json.Unmarshal([]byte(out), &ids))
		assert.Len(t, ids, 2)
	})

	t.Run("环境变量提供身份", func(t *testing.T) {
		t.Setenv("WORKER_ID", "11")
		out, err := run(t, "generate")
		require.NoError(t, err)

		id, err := strconv.ParseUint(strings.TrimSpace(out), 10, 64)
		require.NoError(t, err)
		assert.Equal(t, uint8(11), snowflake.ExtractWorkerID(id))
	})

	t.Run("非法身份", func(t *testing.T) {
		_, err := run(t, "generate", "--worker-id", "32")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WORKER_ID")
	})

	t.Run("非法数量", func(t *testing.T) {
		_, err := run(t, "generate", "-n", "0")
		assert.Error(t, err)
	})
}

// TestDecodeCmd 测试decode命令
func TestDecodeCmd(t *testing.T) {
	id := snowflake.Compose(snowflake.Epoch+1500, 4, 9, 42)
	idStr := strconv.FormatUint(id, 10)

	t.Run("纯文本", func(t *testing.T) {
		out, err := run(t, "decode", idStr)
		require.NoError(t, err)
		assert.Equal(t, idStr+"\ttime=2024-01-01T00:00:01.500Z\tdatacenter=4\tworker=9\tsequence=42\n", out)
	})

	t.Run("JSON", func(t *testing.T) {
		out, err := run(t, "decode", "--json", idStr)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"`+idStr+`","timestamp":1704067201500,"time":"2024-01-01T00:00:01.500Z","datacenter_id":4,"worker_id":9,"sequence":42}`, out)
	})

	t.Run("非法ID", func(t *testing.T) {
		_, err := run(t, "decode", "nope")
		assert.ErrorContains(t, err, "nope")
	})

	t.Run("缺少参数", func(t *testing.T) {
		_, err := run(t, "decode")
		assert.Error(t, err)
	})
}
