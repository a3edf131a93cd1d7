package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

// TestLoad_Defaults 测试默认值
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(0), cfg.WorkerID)
	assert.Equal(t, int64(0), cfg.DatacenterID)
	assert.Equal(t, "use_last_timestamp", cfg.ClockBackwardStrategy)
	assert.Equal(t, int64(5), cfg.ClockBackwardToleranceMs)
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.AuthJWTSecret)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

// TestLoad_Env 测试环境变量覆盖
func TestLoad_Env(t *testing.T) {
	t.Setenv("WORKER_ID", "7")
	t.Setenv("DATACENTER_ID", "12")
	t.Setenv("CLOCK_BACKWARD_STRATEGY", "wait")
	t.Setenv("CLOCK_BACKWARD_TOLERANCE_MS", "20")
	t.Setenv("ENABLE_METRICS", "false")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.WorkerID)
	assert.Equal(t, int64(12), cfg.DatacenterID)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, "json", cfg.LoggerConfig().Format)

	sf, err := cfg.SnowflakeConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, core.StrategyWait, sf.ClockBackwardStrategy)
	assert.Equal(t, int64(20), sf.ClockBackwardTolerance)
	assert.Equal(t, int64(7), sf.WorkerID)
}

// TestLoad_ZeroTolerance 显式设置 0 表示零容忍，而不是回落到默认值
func TestLoad_ZeroTolerance(t *testing.T) {
	t.Setenv("CLOCK_BACKWARD_STRATEGY", "wait")
	t.Setenv("CLOCK_BACKWARD_TOLERANCE_MS", "0")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	sf, err := cfg.SnowflakeConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, snowflake.NoClockBackwardTolerance, sf.ClockBackwardTolerance)

	sf.SetDefaults()
	assert.Zero(t, sf.ClockBackwardTolerance)
}

// TestLoad_Invalid 测试非法配置在加载时被拒绝
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		target error
	}{
		{"WORKER_ID越界", "WORKER_ID", "32", core.ErrInvalidWorkerID},
		{"DATACENTER_ID为负", "DATACENTER_ID", "-1", core.ErrInvalidDatacenterID},
		{"未知回拨策略", "CLOCK_BACKWARD_STRATEGY", "ignore", core.ErrInvalidConfig},
		{"回拨容忍度过大", "CLOCK_BACKWARD_TOLERANCE_MS", "5000", core.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.key)
		})
	}

	t.Run("非法日志级别", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "chatty")
		_, err := Load("", nil)
		assert.ErrorContains(t, err, "LOG_LEVEL")
	})
}

// TestLoad_File 测试配置文件及优先级
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idgen.yaml")
	content := "worker_id: 3\ndatacenter_id: 4\nhttp_addr: \":9090\"\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cfg.WorkerID)
	assert.Equal(t, int64(4), cfg.DatacenterID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)

	t.Run("环境变量优先于文件", func(t *testing.T) {
		t.Setenv("WORKER_ID", "9")
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(9), cfg.WorkerID)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		assert.Error(t, err)
	})
}

// TestLoad_Flags 测试命令行参数优先级最高
func TestLoad_Flags(t *testing.T) {
	t.Setenv("WORKER_ID", "9")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int64("worker-id", 0, "")
	flags.Int64("datacenter-id", 0, "")
	flags.String("http-addr", ":8080", "")
	require.NoError(t, flags.Parse([]string{"--worker-id=21"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, int64(21), cfg.WorkerID)
	assert.Equal(t, int64(0), cfg.DatacenterID, "未显式设置的参数不应覆盖默认值")
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}
