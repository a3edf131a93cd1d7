package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"katydid-common-idgen/internal/config"
	httpserver "katydid-common-idgen/internal/server/http"
	"katydid-common-idgen/pkg/idgen"
	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/domain"
	"katydid-common-idgen/pkg/idgen/registry"
	"katydid-common-idgen/pkg/logger"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "idgen",
		Short:        "Snowflake ID generator",
		Long:         "idgen issues time-sortable 64-bit Snowflake IDs and decodes existing ones.",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (yaml|json|toml)")
	pf.Int64("worker-id", 0, "Worker ID 0-31 (env WORKER_ID)")
	pf.Int64("datacenter-id", 0, "Datacenter ID 0-31 (env DATACENTER_ID)")
	pf.String("clock-backward-strategy", "", "Clock regression handling: use_last_timestamp|error|wait (env CLOCK_BACKWARD_STRATEGY)")
	pf.String("log-level", "", "Log level: debug|info|warn|error (env LOG_LEVEL)")
	pf.String("log-format", "", "Log format: console|json (env LOG_FORMAT)")
	pf.String("log-file", "", "Also write logs to this file, rotated (env LOG_FILE)")

	rootCmd.AddCommand(newServeCmd(), newGenerateCmd(), newDecodeCmd())
	return rootCmd
}

// runtimeDeps 命令运行所需的配置、日志与生成器
type runtimeDeps struct {
	cfg *config.Config
	log *zap.Logger
	gen core.IGenerator
}

func setup(cmd *cobra.Command) (*runtimeDeps, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return nil, err
	}

	sfCfg, err := cfg.SnowflakeConfig(log)
	if err != nil {
		return nil, err
	}
	registry.GetRegistry().SetLogger(log)
	gen, err := registry.InitDefaultGenerator(sfCfg)
	if err != nil {
		return nil, err
	}

	return &runtimeDeps{cfg: cfg, log: log, gen: gen}, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.log.Sync() }()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			srv := httpserver.New(deps.gen, httpserver.Options{
				JWTSecret: deps.cfg.AuthJWTSecret,
				Logger:    deps.log,
			})
			deps.log.Info("idgen服务启动",
				zap.String("addr", deps.cfg.HTTPAddr),
				zap.Uint8("worker_id", deps.gen.GetWorkerID()),
				zap.Uint8("datacenter_id", deps.gen.GetDatacenterID()),
				zap.Bool("auth_enabled", deps.cfg.AuthJWTSecret != ""))

			if err := srv.ListenAndServe(ctx, deps.cfg.HTTPAddr); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("http-addr", ":8080", "HTTP listen address (env HTTP_ADDR)")
	cmd.Flags().Bool("enable-metrics", true, "Collect generator metrics (env ENABLE_METRICS)")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate IDs and print them, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("count")
			asJSON, _ := cmd.Flags().GetBool("json")

			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.log.Sync() }()

			raw, err := deps.gen.NextIDBatch(n)
			if err != nil {
				return err
			}
			ids := domain.NewIDSlice(raw...)

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(ids)
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
	cmd.Flags().IntP("count", "n", 1, "Number of IDs to generate")
	cmd.Flags().Bool("json", false, "Print a JSON array of decimal strings")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <id>...",
		Short: "Decode IDs into timestamp, datacenter, worker and sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			for _, arg := range args {
				info, err := idgen.Parse(arg)
				if err != nil {
					return fmt.Errorf("decode %q: %w", arg, err)
				}
				if asJSON {
					if err := json.NewEncoder(out).Encode(decoded{
						ID:           domain.ID(info.ID),
						Timestamp:    info.Timestamp,
						Time:         info.Time.Format(timeLayout),
						DatacenterID: info.DatacenterID,
						WorkerID:     info.WorkerID,
						Sequence:     info.Sequence,
					}); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%d\ttime=%s\tdatacenter=%d\tworker=%d\tsequence=%d\n",
					info.ID, info.Time.Format(timeLayout),
					info.DatacenterID, info.WorkerID, info.Sequence)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print one JSON object per ID")
	return cmd
}

// decoded decode --json 的输出
type decoded struct {
	ID           domain.ID `json:"id"`
	Timestamp    int64     `json:"timestamp"`
	Time         string    `json:"time"`
	DatacenterID uint8     `json:"datacenter_id"`
	WorkerID     uint8     `json:"worker_id"`
	Sequence     uint16    `json:"sequence"`
}
